package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"dzkitab/internal/announce"
)

type priceOptions struct {
	market float64
	checks []string
	skip   []string
	all    bool
	json   bool
}

func newPriceCmd() *cobra.Command {
	var opts priceOptions
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Score a condition checklist and compute the sale price",
		Long: `Scores the five condition categories of a book and derives the final
price from the market price.

Checks are named category.key, for example page.no_torn or cover.clean.

Examples:
  dzkitab price --market 1000 --all --skip page.clean
  dzkitab price --market 2500 --check page.no_missing --check binding.stable`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrice(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&opts.market, "market", 0, "market price in DA")
	f.StringSliceVar(&opts.checks, "check", nil, "check that holds (repeatable)")
	f.StringSliceVar(&opts.skip, "skip", nil, "check that fails, with --all (repeatable)")
	f.BoolVar(&opts.all, "all", false, "start from a fully checked list")
	f.BoolVar(&opts.json, "json", false, "print the assessment as JSON")
	return cmd
}

func runPrice(cmd *cobra.Command, opts priceOptions) error {
	if opts.market < 0 || math.IsNaN(opts.market) || math.IsInf(opts.market, 0) {
		return fmt.Errorf("--market must be a finite, non-negative amount")
	}
	list := announce.NewChecklist()
	if opts.all {
		list = announce.FullChecklist()
	}
	if err := applyChecks(list, opts.checks, true); err != nil {
		return err
	}
	if err := applyChecks(list, opts.skip, false); err != nil {
		return err
	}

	a := announce.Assess(list, opts.market)
	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}

	for _, spec := range announce.Rubric {
		fmt.Fprintf(out, "%-24s %3d/100\n", spec.Label, a.Categories[spec.Category])
	}
	fmt.Fprintf(out, "\nScore     %d/100 (%s)\n", a.Score, a.Label)
	fmt.Fprintf(out, "État      %s\n", a.Condition)
	fmt.Fprintf(out, "Prix      %.0f DA\n", a.Price)
	return nil
}

func applyChecks(list announce.Checklist, names []string, on bool) error {
	for _, name := range names {
		cat, key, ok := strings.Cut(strings.TrimSpace(name), ".")
		if !ok {
			return fmt.Errorf("check %q: want category.key", name)
		}
		if err := list.Set(announce.Category(cat), key, on); err != nil {
			return err
		}
	}
	return nil
}
