package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/mindbff/backend/internal/app"
	"github.com/zhouzirui/mindbff/backend/internal/service/progress"
)

func addProgress(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Summarize the last seven days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				report, err := a.Progress.Build(context.Background(), time.Now())
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func printReport(w io.Writer, r progress.Report) {
	title := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)

	_, _ = title.Fprintln(w, "Your Progress")
	_, _ = faint.Fprintf(w, "%s - %s\n\n", r.From.Format("Jan 2"), r.To.Format("Jan 2"))
	if r.Empty {
		_, _ = fmt.Fprintln(w, r.Headline)
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("Journal entries", r.JournalEntries)
	tbl.AddRow("Moods logged", r.MoodsLogged)
	if r.AverageMood != nil && r.AverageLevel != nil {
		tbl.AddRow("Average mood", fmt.Sprintf("%.1f %s %s", *r.AverageMood, r.AverageLevel.Emoji, r.AverageLevel.Label))
	}
	if r.TopTone != "" {
		tbl.AddRow("Common tone", r.TopTone)
	}
	_, _ = fmt.Fprintln(w, tbl)
	_, _ = fmt.Fprintf(w, "\n%s\n", r.Headline)
	if !r.Durable {
		_, _ = faint.Fprintln(w, "Set MINDBFF_DB_PATH to keep history between runs.")
	}
}
