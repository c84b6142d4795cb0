package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"dzkitab/internal/config"
	"dzkitab/internal/httpx"
	"dzkitab/internal/platform/apiclient"
	"dzkitab/internal/platform/openlibrary"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(defaultSource).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// isbnSource is satisfied by the dz-kitab backend client and by Open Library.
type isbnSource interface {
	LookupISBN(ctx context.Context, isbn string) (*apiclient.ISBNLookup, error)
}

// sourceFactory builds a lookup source lazily so commands that never talk
// to the backend run without DZKITAB_API_URL.
type sourceFactory func(name string) (isbnSource, error)

func defaultSource(name string) (isbnSource, error) {
	switch name {
	case "backend":
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return apiclient.New(cfg, nil), nil
	case "openlibrary":
		return openlibrary.NewClient("dzkitab-cli/1.0", 1, 2), nil
	default:
		return nil, fmt.Errorf("unknown source %q, use backend or openlibrary", name)
	}
}

func newRootCmd(source sourceFactory) *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:   "dzkitab",
		Short: "Seller tools for the dz-kitab marketplace",
		Long: `dzkitab estimates the sale price of a used book from its condition
checklist and looks books up by ISBN against the dz-kitab backend.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			httpx.InitLogger(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(newPriceCmd(), newLookupCmd(source))
	return root
}
