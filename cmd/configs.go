package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"placement_studio/src/model"
)

func newConfigsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "Save and look up generation configs by slug",
	}
	cmd.AddCommand(newConfigsSaveCmd(a))

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved configs, newest first",
			RunE: func(cmd *cobra.Command, args []string) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "SLUG\tNAME\tCREATED")
				for _, e := range a.registry().ListConfigs(cmd.Context()) {
					created := time.UnixMilli(e.CreatedAt).Format(time.DateTime)
					fmt.Fprintf(w, "%s\t%s\t%s\n", e.Slug, e.Config.Name, created)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "show <slug>",
			Short: "Print a saved config",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				entry := a.registry().GetConfig(cmd.Context(), args[0])
				if entry == nil {
					return fmt.Errorf("no config with slug %q", args[0])
				}
				return printJSON(cmd.OutOrStdout(), entry)
			},
		},
		&cobra.Command{
			Use:   "delete <slug>",
			Short: "Delete a saved config",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.registry().DeleteConfig(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}

func newConfigsSaveCmd(a *app) *cobra.Command {
	var slug, name string

	cmd := &cobra.Command{
		Use:   "save <config.json>",
		Short: "Save a config, minting a slug from its name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg model.Config
			if err := readJSON(args[0], &cfg); err != nil {
				return err
			}
			if name != "" {
				cfg.Name = name
			}

			entry, err := a.registry().SaveConfig(cmd.Context(), cfg, slug)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %q as %s\n", entry.Config.Name, entry.Slug)
			return nil
		},
	}
	cmd.Flags().StringVar(&slug, "slug", "", "overwrite the config saved under this slug")
	cmd.Flags().StringVar(&name, "name", "", "override the config name")
	return cmd
}
