package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/mindbff/backend/internal/app"
	"github.com/zhouzirui/mindbff/backend/internal/model/mood"
	moodService "github.com/zhouzirui/mindbff/backend/internal/service/mood"
)

func addMood(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "mood [level]",
		Short: "Log today's mood or show this week",
		Long: `Log a mood on the five-step scale, by number (0-4) or by name
(sad, down, neutral, good, great). Without an argument the current
week is shown.`,
		Example: `
mindbff mood good
mindbff mood 4
mindbff mood
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				ctx := context.Background()
				now := time.Now()
				if len(args) == 1 {
					level, err := parseLevel(args[0])
					if err != nil {
						return err
					}
					if err := a.Mood.Select(level); err != nil {
						return err
					}
					record, err := a.Mood.Submit(ctx, now)
					if err != nil {
						return err
					}
					_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Logged %s %s\n", record.Level.Info().Emoji, record.Level)
					if !a.History.Durable() {
						_, _ = color.New(color.Faint).Fprintln(cmd.OutOrStdout(), "Set MINDBFF_DB_PATH to keep moods between runs.")
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}

				samples, err := a.Mood.Week(ctx, now)
				if err != nil {
					return err
				}
				printWeek(cmd.OutOrStdout(), samples)
				return nil
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func parseLevel(arg string) (mood.Level, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		level := mood.Level(n)
		if !level.Valid() {
			return 0, fmt.Errorf("%w: %d", moodService.ErrInvalidLevel, n)
		}
		return level, nil
	}
	for _, info := range mood.Levels() {
		if strings.EqualFold(info.Label, arg) {
			return info.Value, nil
		}
	}
	return 0, fmt.Errorf("unknown mood %q", arg)
}

func printWeek(w io.Writer, samples []mood.Sample) {
	title := color.New(color.Bold, color.Underline)
	bar := color.New(color.FgMagenta)
	faint := color.New(color.Faint, color.Italic)

	_, _ = title.Fprintln(w, "This week")
	for _, s := range samples {
		_, _ = fmt.Fprintf(w, "%-4s ", s.Day)
		if s.Level == nil {
			_, _ = faint.Fprintln(w, "none")
			continue
		}
		blocks := moodService.BarHeightPercent(*s.Level) / 20
		_, _ = bar.Fprint(w, strings.Repeat("█", blocks*2))
		_, _ = fmt.Fprintf(w, " %s %s\n", s.Level.Info().Emoji, s.Level)
	}
}
