package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mindwell/internal/service"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print routine progress and mood statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			writeReport(cmd.OutOrStdout(), a.routines(), a.moods(), time.Now())
			return nil
		},
	}
}

func writeReport(w io.Writer, routines *service.TaskRegistry, moods *service.MoodJournal, now time.Time) {
	progress := routines.CompletionRatio()

	fmt.Fprintln(w, "MindWell Report")
	fmt.Fprintln(w, strings.Repeat("=", 40))

	fmt.Fprintln(w, "\nRoutine:")
	fmt.Fprintf(w, "  Completed: %d/%d (%d%%)\n", progress.Completed, progress.Total, progress.Percent)
	for _, category := range service.TaskCategories {
		tasks := routines.ByCategory(category)
		if len(tasks) == 0 {
			continue
		}
		done := 0
		for _, task := range tasks {
			if task.Done {
				done++
			}
		}
		fmt.Fprintf(w, "  %-10s %d/%d\n", category, done, len(tasks))
	}

	stats := moods.Stats(now)
	fmt.Fprintln(w, "\nMood:")
	fmt.Fprintf(w, "  Entries:   %d\n", stats.Entries)
	fmt.Fprintf(w, "  Average:   %.1f\n", stats.Average)
	fmt.Fprintf(w, "  Streak:    %d day(s)\n", stats.Streak)
}
