package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gamedex/internal/catalog"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var query catalogQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the game catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := ctx.client().Catalog(cmd.Context(), query)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No games in catalog. Run `gamedex scan` first.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Name,
					catalog.PlatformDisplayName(entry.Platform),
					entry.Identity,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Platform", "ID"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%d games\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringVarP(&query.Platform, "platform", "p", "", "Only show one platform (steam, epic, gog, ...)")
	cmd.Flags().StringVarP(&query.Search, "search", "s", "", "Case-insensitive name substring filter")
	cmd.Flags().BoolVar(&query.Favorites, "favorites", false, "Only show favorites")
	cmd.Flags().BoolVar(&query.Descending, "desc", false, "Sort descending")
	return cmd
}
