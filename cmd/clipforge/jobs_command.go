package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/queue"
)

func newJobsCommand(cctx *commandContext) *cobra.Command {
	var (
		limit       int
		statusFlags []string
	)

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recorded export jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]queue.Status, 0, len(statusFlags))
			for _, raw := range statusFlags {
				status, ok := queue.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q (valid: %s)", raw, statusList())
				}
				statuses = append(statuses, status)
			}

			return cctx.withStore(func(store *queue.Store) error {
				var (
					jobs []*queue.Job
					err  error
				)
				if len(statuses) > 0 {
					jobs, err = store.List(cmd.Context(), statuses...)
				} else {
					jobs, err = store.Recent(cmd.Context(), limit)
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(jobs) == 0 {
					fmt.Fprintln(out, "No export jobs recorded")
					return nil
				}
				columns := []tableColumn{
					{name: "ID", right: true},
					{name: "Source"},
					{name: "Mode"},
					{name: "Status"},
					{name: "Progress", right: true},
					{name: "Updated"},
				}
				fmt.Fprintln(out, renderTable(columns, buildJobRows(jobs)))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of jobs to show")
	cmd.Flags().StringSliceVar(&statusFlags, "status", nil, "Only show jobs with these statuses (repeatable)")

	return cmd
}

func statusList() string {
	names := make([]string, 0, len(queue.AllStatuses()))
	for _, status := range queue.AllStatuses() {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}

func buildJobRows(jobs []*queue.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		progress := fmt.Sprintf("%.0f%%", job.ProgressPercent)
		if job.Status == queue.StatusFailed || job.Status == queue.StatusCancelled {
			progress = "-"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", job.ID),
			filepath.Base(job.SourcePath),
			string(job.Mode),
			string(job.Status),
			progress,
			job.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return rows
}
