// Command cpq-catalog validates a catalog directory without starting the API.
//
//	cpq-catalog <data-dir>
//
// It prints the collection counts and exits 1 listing every problem found.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rafaeljc/cpq/internal/catalog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: cpq-catalog <data-dir>")
		return 2
	}

	// Loader chatter goes to stderr so stdout stays a clean report.
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store, err := catalog.Load(args[0], log)
	if err != nil {
		var dataErr *catalog.DataError
		if errors.As(err, &dataErr) && len(dataErr.Problems) > 0 {
			fmt.Fprintf(stderr, "catalog %s is invalid:\n", args[0])
			for _, p := range dataErr.Problems {
				fmt.Fprintf(stderr, "  - %s\n", p)
			}
			return 1
		}
		fmt.Fprintf(stderr, "catalog %s is invalid: %v\n", args[0], err)
		return 1
	}

	stats := store.Stats()
	fmt.Fprintf(stdout, "catalog %s is valid\n", args[0])
	fmt.Fprintf(stdout, "categories:   %d\n", stats.Categories)
	fmt.Fprintf(stdout, "options:      %d\n", stats.Options)
	fmt.Fprintf(stdout, "rules:        %d (%d active)\n", stats.Rules, stats.ActiveRules)
	fmt.Fprintf(stdout, "settings:     %d\n", stats.Settings)
	return 0
}
