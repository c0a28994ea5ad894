package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newFavoriteCommand(ctx *commandContext) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "favorite <name>",
		Short: "Pin or unpin a game as a favorite",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			name := strings.Join(args, " ")
			entry, err := findEntry(cmd.Context(), client, name)
			if err != nil {
				return err
			}

			if err := client.SetFavorite(cmd.Context(), entry, !remove); err != nil {
				return err
			}
			if remove {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites\n", entry.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to favorites\n", entry.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the favorite instead of adding it")
	return cmd
}
