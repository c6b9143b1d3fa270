package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"placement_studio/src/model"
)

func newGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [context]",
		Short: "Generate one batch of placements",
		Long: `Generate asks the pipeline for one batch of placements and saves them.

The optional context overrides the saved writing context for this batch only.
Recently liked placements are sent as continuation seeds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session := a.session(ctx)

			created, err := session.GenerateBatch(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %d placements\n", len(created))
			printPlacements(out, created)
			return nil
		},
	}
}

func printPlacements(w io.Writer, placements []model.Placement) {
	for _, p := range placements {
		heart := " "
		if p.Liked {
			heart = "♥"
		}
		price := ""
		if p.Product.Price > 0 {
			price = fmt.Sprintf(" %.2f %s", p.Product.Price, p.Product.Currency)
		}
		fmt.Fprintf(w, "%s %-8s %-12s %s (%s%s) %s\n",
			heart, p.ID, p.SceneType, p.Product.Name, p.Product.Brand, price, p.Description)
	}
}
