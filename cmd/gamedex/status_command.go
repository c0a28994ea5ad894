package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and scan status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ctx.client().Status(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Running", yesNo(status.Running)},
				{"PID", fmt.Sprintf("%d", status.PID)},
				{"Catalog entries", fmt.Sprintf("%d", status.CatalogEntries)},
				{"Scan state", string(status.Scan.State)},
				{"Scan progress", fmt.Sprintf("%d%%", status.Scan.Percentage)},
				{"Library DB", status.LibraryDBPath},
				{"Cache dir", status.CacheDir},
				{"Cached covers", fmt.Sprintf("%d (%d MiB)", status.CachedCovers, status.CacheUsedMiB)},
				{"Cache free", fmt.Sprintf("%d MiB", status.CacheFreeMiB)},
			}
			if status.Scan.Phase != "" {
				rows = append(rows, []string{"Scan phase", status.Scan.Phase})
			}
			if status.Scan.Reason != "" {
				rows = append(rows, []string{"Scan error", status.Scan.Reason})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
