package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"placement_studio/src/model"
	"placement_studio/src/snapshot"
)

// snapshotInput is what snapshot and session saves read from flags
type snapshotInput struct {
	id         string
	name       string
	configSlug string
	statePath  string
}

func (in *snapshotInput) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.id, "id", "", "overwrite the entry with this id")
	cmd.Flags().StringVar(&in.name, "name", "", "display name (defaults to the config name)")
	cmd.Flags().StringVar(&in.configSlug, "config", "", "slug of the saved config to include")
	cmd.Flags().StringVar(&in.statePath, "state", "", "JSON file holding the canvas state")
}

func (in *snapshotInput) resolve(ctx context.Context, a *app) (model.Config, model.CanvasState, error) {
	var cfg model.Config
	if in.configSlug != "" {
		entry := a.registry().GetConfig(ctx, in.configSlug)
		if entry == nil {
			return cfg, model.CanvasState{}, fmt.Errorf("no config with slug %q", in.configSlug)
		}
		cfg = entry.Config
	}

	var state model.CanvasState
	if in.statePath != "" {
		if err := readJSON(in.statePath, &state); err != nil {
			return cfg, state, err
		}
	}
	return cfg, state, nil
}

func printMeta(w io.Writer, list []model.SnapshotMeta, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCONFIG\tCARDS\tSAVED")
	for _, m := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			m.ID, m.Name, m.ConfigName, m.CardCount, snapshot.FormatTimestamp(m.Timestamp, now))
	}
	return tw.Flush()
}

func newSnapshotsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Save and restore named canvas snapshots",
	}

	var in snapshotInput
	save := &cobra.Command{
		Use:   "save",
		Short: "Save a snapshot of a config and canvas state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, state, err := in.resolve(cmd.Context(), a)
			if err != nil {
				return err
			}
			snap, err := a.snapshots().SaveSnapshot(cmd.Context(), in.name, cfg, state, in.id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s (%s)\n", snap.ID, snap.Name)
			return nil
		},
	}
	in.bind(save)

	cmd.AddCommand(
		save,
		&cobra.Command{
			Use:   "list",
			Short: "List snapshots, newest first",
			RunE: func(cmd *cobra.Command, args []string) error {
				return printMeta(cmd.OutOrStdout(), a.snapshots().ListSnapshots(cmd.Context()), a.clock.Now())
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Print a snapshot",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				snap := a.snapshots().LoadSnapshot(cmd.Context(), args[0])
				if snap == nil {
					return fmt.Errorf("no snapshot %q", args[0])
				}
				return printJSON(cmd.OutOrStdout(), snap)
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a snapshot",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.snapshots().DeleteSnapshot(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}

func newSessionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Track generation spend per session",
	}

	var in snapshotInput
	save := &cobra.Command{
		Use:   "save",
		Short: "Save a session; existing cost totals are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, state, err := in.resolve(cmd.Context(), a)
			if err != nil {
				return err
			}
			session, err := a.snapshots().SaveSession(cmd.Context(), in.name, cfg, state, in.id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved session %s (%s)\n", session.ID, session.Name)
			return nil
		},
	}
	in.bind(save)

	cmd.AddCommand(
		save,
		&cobra.Command{
			Use:   "list",
			Short: "List sessions, newest first",
			RunE: func(cmd *cobra.Command, args []string) error {
				return printMeta(cmd.OutOrStdout(), a.snapshots().ListSessions(cmd.Context()), a.clock.Now())
			},
		},
		&cobra.Command{
			Use:   "cost <id>",
			Short: "Show the accumulated cost of a session",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cost := a.snapshots().GetSessionCost(cmd.Context(), args[0])
				if cost == nil {
					return fmt.Errorf("no session %q", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "$%.4f over %d generations\n", cost.TotalCostUSD, cost.GenerationCount)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a session",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.snapshots().DeleteSession(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}
