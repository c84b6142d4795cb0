package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dzkitab/internal/announce"
)

var errNotFound = errors.New("book not found")

func newLookupCmd(source sourceFactory) *cobra.Command {
	var (
		asJSON bool
		from   string
	)
	cmd := &cobra.Command{
		Use:   "lookup <isbn>",
		Short: "Look a book up by ISBN",
		Long: `Queries the dz-kitab backend, or Open Library with --source openlibrary,
for the bibliographic record of an ISBN. Dashes and spaces are ignored.
The backend source requires DZKITAB_API_URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			isbn, err := announce.NormalizeISBN(args[0])
			if err != nil {
				return err
			}
			c, err := source(from)
			if err != nil {
				return err
			}
			res, err := c.LookupISBN(cmd.Context(), isbn)
			if err != nil {
				return fmt.Errorf("lookup %s: %w", isbn, err)
			}
			if !res.Found || res.Book == nil {
				msg := res.Message
				if msg == "" {
					msg = "no record for " + isbn
				}
				return fmt.Errorf("%w: %s", errNotFound, msg)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Book)
			}
			b := res.Book
			fmt.Fprintf(out, "%s\n", b.Title)
			if len(b.Authors) > 0 {
				fmt.Fprintf(out, "  Auteurs     %s\n", strings.Join(b.Authors, ", "))
			}
			if b.Publisher != "" {
				fmt.Fprintf(out, "  Éditeur     %s\n", b.Publisher)
			}
			if b.PublishedDate != "" {
				fmt.Fprintf(out, "  Publication %s\n", b.PublishedDate)
			}
			if b.PageCount > 0 {
				fmt.Fprintf(out, "  Pages       %d\n", b.PageCount)
			}
			if len(b.Categories) > 0 {
				fmt.Fprintf(out, "  Catégories  %s\n", strings.Join(b.Categories, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")
	cmd.Flags().StringVar(&from, "source", "backend", "where to look: backend or openlibrary")
	return cmd
}
