package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/mindbff/backend/internal/affirmation"
)

func addAffirmation(topLevel *cobra.Command) {
	var date string

	cmd := &cobra.Command{
		Use:   "affirmation",
		Short: "Print the affirmation of the day",
		Example: `
mindbff affirmation
mindbff affirmation --date 2026-10-17
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if date != "" {
				parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
				}
				day = parsed
			}

			faint := color.New(color.Faint)
			quote := color.New(color.FgMagenta, color.Italic)
			_, _ = faint.Fprintln(cmd.OutOrStdout(), day.Format(affirmation.DateLayout))
			_, _ = quote.Fprintln(cmd.OutOrStdout(), affirmation.Pick(day))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to pick for, as YYYY-MM-DD (default today)")

	topLevel.AddCommand(cmd)
}
