package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"placement_studio/internal/services"
)

func newProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products [query]",
		Short: "Search the product catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.catalog(cmd)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBRAND\tPRICE")
			for _, p := range catalog.SearchProducts(cmd.Context(), strings.Join(args, " ")) {
				price := "-"
				if pricing, ok := catalog.PriceOf(p.ID); ok {
					price = fmt.Sprintf("%.2f %s", pricing.Price, pricing.Currency)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Brand, price)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print one catalog product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.catalog(cmd)
			if err != nil {
				return err
			}
			product, err := catalog.Lookup(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), product)
		},
	})
	return cmd
}

func (a *app) catalog(cmd *cobra.Command) (*services.ProductService, error) {
	catalog := services.NewProductService()
	if err := catalog.Load(cmd.Context(), a.rules.CatalogPath); err != nil {
		return nil, err
	}
	return catalog, nil
}
