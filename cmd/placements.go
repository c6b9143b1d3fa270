package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPlacementsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "placements",
		Short: "List and curate saved placements",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved placements",
			RunE: func(cmd *cobra.Command, args []string) error {
				placements := a.session(cmd.Context()).Placements()
				if len(placements) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No placements yet")
					return nil
				}
				printPlacements(cmd.OutOrStdout(), placements)
				return nil
			},
		},
		&cobra.Command{
			Use:   "like <id>",
			Short: "Toggle the liked flag of a placement",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				session := a.session(cmd.Context())
				if !session.ToggleLiked(cmd.Context(), args[0]) {
					fmt.Fprintf(cmd.OutOrStdout(), "No placement %s\n", args[0])
					return nil
				}
				for _, p := range session.Placements() {
					if p.ID == args[0] {
						fmt.Fprintf(cmd.OutOrStdout(), "%s liked: %t\n", p.ID, p.Liked)
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Remove a placement",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !a.session(cmd.Context()).Remove(cmd.Context(), args[0]) {
					fmt.Fprintf(cmd.OutOrStdout(), "No placement %s\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every placement and the writing context",
			RunE: func(cmd *cobra.Command, args []string) error {
				a.session(cmd.Context()).ClearAll(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared")
				return nil
			},
		},
	)
	return cmd
}

func newContextCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Show or change the writing context",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := a.session(cmd.Context()).WritingContext()
			if text == "" {
				text = "(empty)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <text>",
		Short: "Replace the writing context",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session(cmd.Context()).SetWritingContext(cmd.Context(), strings.Join(args, " "))
			return nil
		},
	})
	return cmd
}
