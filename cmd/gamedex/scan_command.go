package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Trigger a library scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			sessionID, err := client.Scan(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scan started (session %s)\n", sessionID)
			if !wait {
				return nil
			}

			lastPhase := ""
			for {
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(500 * time.Millisecond):
				}

				status, err := client.Status(cmd.Context())
				if err != nil {
					return err
				}
				scan := status.Scan
				if scan.Phase != "" && scan.Phase != lastPhase {
					fmt.Fprintf(out, "%3d%% %s (%d games)\n", scan.Percentage, scan.Phase, scan.Merged)
					lastPhase = scan.Phase
				}
				if scan.State.Terminal() {
					if scan.Reason != "" {
						return fmt.Errorf("scan %s: %s", scan.State, scan.Reason)
					}
					fmt.Fprintf(out, "Scan %s: %d games in catalog\n", scan.State, status.CatalogEntries)
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for the scan to finish, reporting progress")
	return cmd
}
