package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "studio",
		Short: "Generate and curate product placements for a writing context",
		Long: `Studio drives the placement generation pipeline and keeps its results.

Generated placements, the writing context, saved configs, snapshots and session
costs are stored locally and survive restarts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.init(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	cmd.PersistentFlags().BoolVar(&a.ephemeral, "ephemeral", false, "keep everything in memory for this run")
	cmd.PersistentFlags().StringVar(&a.sessionID, "session", "", "session id to charge generation costs to")

	cmd.AddCommand(
		newGenerateCmd(a),
		newProductsCmd(a),
		newPlacementsCmd(a),
		newContextCmd(a),
		newConfigsCmd(a),
		newSnapshotsCmd(a),
		newSessionsCmd(a),
	)

	return cmd
}
