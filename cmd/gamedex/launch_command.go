package main

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"gamedex/internal/catalog"
)

func newLaunchCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "launch <name>",
		Short: "Launch a game through its store protocol or executable",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			name := strings.Join(args, " ")
			entry, err := findEntry(cmd.Context(), client, name)
			if err != nil {
				return err
			}

			target, err := entry.LaunchTarget()
			if err != nil {
				return fmt.Errorf("launch %s: %w", entry.Name, err)
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, target)
				return nil
			}

			if err := openTarget(target); err != nil {
				return fmt.Errorf("launch %s: %w", entry.Name, err)
			}
			if err := client.RecordLaunch(cmd.Context(), entry); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warn: record launch: %v\n", err)
			}
			fmt.Fprintf(out, "Launched %s (%s)\n", entry.Name, catalog.PlatformDisplayName(entry.Platform))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the launch target without launching")
	return cmd
}

// findEntry resolves a user-supplied name against the catalog: an
// exact case-insensitive match wins, a single substring match is
// accepted, anything else is ambiguous.
func findEntry(ctx context.Context, client *apiClient, name string) (catalog.Entry, error) {
	entries, err := client.Catalog(ctx, catalogQuery{Search: name})
	if err != nil {
		return catalog.Entry{}, err
	}
	if len(entries) == 0 {
		return catalog.Entry{}, fmt.Errorf("no game matches %q", name)
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.Name, name) {
			return entry, nil
		}
	}
	if len(entries) == 1 {
		return entries[0], nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return catalog.Entry{}, fmt.Errorf("%q is ambiguous, matches: %s", name, strings.Join(names, ", "))
}

// openTarget hands a store protocol URL to the desktop opener, or runs
// a bare executable path directly.
func openTarget(target string) error {
	var cmd *exec.Cmd
	if strings.Contains(target, "://") {
		cmd = exec.Command("xdg-open", target)
	} else {
		cmd = exec.Command(target)
	}
	return cmd.Start()
}
