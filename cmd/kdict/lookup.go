package main

import (
	"errors"
	"fmt"

	"github.com/goodtune/kdict/internal/lookup"
	"github.com/goodtune/kdict/internal/session"
	"github.com/spf13/cobra"
)

var (
	lookupLinks  bool
	lookupAccent string
	lookupText   bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup WORD...",
	Short: "Look up words and record them in your statistics",
	Long: `Look up each argument in the dictionary. Input that is not English is
handed to the translation tool instead of the dictionary.`,
	Example: `  kdict lookup serendipity
  kdict lookup --links --accent uk colour
  kdict --email me@example.com --password secret lookup ephemeral
  kdict lookup --text '"ephemeral,"'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupLinks, "links", false, "Print pronunciation, image and video links")
	lookupCmd.Flags().StringVar(&lookupAccent, "accent", "", "Pronunciation accent for --links: us or uk")
	lookupCmd.Flags().BoolVar(&lookupText, "text", false, "Strip each argument to letters first, as when picked from a definition")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	switch lookupAccent {
	case "", "us", "uk":
	default:
		return fmt.Errorf("invalid accent: %s (must be us or uk)", lookupAccent)
	}

	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	found := 0

	for i, arg := range args {
		if i > 0 {
			fmt.Fprintln(out)
		}

		search := a.session.Search
		if lookupText {
			search = a.session.SearchFromText
		}

		res, err := search(ctx, arg)
		switch {
		case errors.Is(err, session.ErrEmptyQuery):
			_, _ = warnColor.Fprintf(errOut, "Skipping empty query %q\n", arg)
			continue
		case errors.Is(err, lookup.ErrNotFound):
			_, _ = errColor.Fprintf(out, "Word not found: %s\n", res.Term)
			continue
		case err != nil:
			return err
		}

		if res.Kind == lookup.KindTranslate {
			fmt.Fprintf(out, "Not an English word, translate it here:\n  %s\n", res.RedirectURL)
			found++
			continue
		}

		renderEntry(out, *res.Entry)
		if lookupLinks {
			fmt.Fprintln(out)
			renderRedirects(out, a.session.Redirects().All(res.Entry.Word, lookupAccent))
		}
		if res.PersistErr != nil {
			_, _ = warnColor.Fprintf(errOut, "Warning: statistics were not saved remotely: %v\n", res.PersistErr)
		}
		found++
	}

	if found == 0 {
		return errors.New("no word was found")
	}
	return nil
}
