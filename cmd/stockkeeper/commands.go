package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"StockKeeper/internal/inventory"
	"StockKeeper/internal/menu"
	"StockKeeper/internal/tableview"
	"StockKeeper/pkg/kit"
)

func newMenuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Run the interactive text menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMenu(cmd.Context())
		},
	}
}

func (a *app) runMenu(ctx context.Context) error {
	c, closeStore, err := a.openCatalog(ctx, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	rl, err := menu.NewReadline()
	if err != nil {
		return err
	}
	defer rl.Close()

	m := &menu.Menu{
		Catalog: c,
		In:      rl,
		Out:     rl.Stdout(),
		Log:     a.log,
	}
	return m.Run(ctx)
}

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog table and JSON API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.HTTPAddr
			}

			reg := prometheus.NewRegistry()
			c, closeStore, err := a.openCatalog(cmd.Context(), reg)
			if err != nil {
				return err
			}
			defer closeStore()

			a.log.Info("catalog ready",
				zap.String("store", a.cfg.Driver),
				zap.Int("products", c.Len()),
			)

			s := &inventory.Server{
				Catalog:           c,
				Log:               a.log,
				LowStockThreshold: a.cfg.LowStockThreshold,
			}
			h := inventory.NewHandler(s, inventory.HTTPDeps{
				Log:            a.log,
				Service:        service,
				Registry:       reg,
				MetricsEnabled: a.cfg.MetricsEnabled,
				MetricsToken:   a.cfg.MetricsToken,
			})

			if err := kit.RunHTTPServer(cmd.Context(), addr, h, a.log); err != nil {
				a.log.Error("http server stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (env HTTP_ADDR)")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var (
		sortBy   string
		reverse  bool
		name     string
		category string
		html     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print products as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, closeStore, err := a.openCatalog(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeStore()

			var products []inventory.Product
			switch {
			case cmd.Flags().Changed("name"):
				products = c.FindByName(name)
			case cmd.Flags().Changed("category"):
				products = c.FilterByCategory(category)
			default:
				products = c.ListAll(inventory.SortNone, false)
			}
			field, _ := inventory.ParseSortField(sortBy)
			inventory.SortProducts(products, field, reverse)

			if html {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), tableview.HTMLTable(products))
				return err
			}
			return tableview.Products(cmd.OutOrStdout(), products)
		},
	}

	f := cmd.Flags()
	f.StringVar(&sortBy, "sort", "", "sort by sku, name, category, quantity or price")
	f.BoolVar(&reverse, "reverse", false, "reverse the sort order")
	f.StringVar(&name, "name", "", "only products whose name contains this text")
	f.StringVar(&category, "category", "", "only products in this category")
	f.BoolVar(&html, "html", false, "render an HTML table instead of text")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var threshold int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the total stock value and low-stock products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.LowStockThreshold
			}

			c, closeStore, err := a.openCatalog(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeStore()

			out := cmd.OutOrStdout()
			if err := tableview.TotalValue(out, c.TotalValue()); err != nil {
				return err
			}
			return tableview.LowStock(out, c.LowStock(threshold), threshold)
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", inventory.DefaultLowStockThreshold, "low stock threshold (env LOW_STOCK_THRESHOLD)")
	return cmd
}

