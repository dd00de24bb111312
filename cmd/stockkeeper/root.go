package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"StockKeeper/internal/config"
	"StockKeeper/internal/inventory"
	"StockKeeper/pkg/kit"
)

const service = "stockkeeper"

type app struct {
	cfg config.Config
	log *zap.Logger
}

type globalFlags struct {
	file     string
	driver   string
	dbURL    string
	logLevel string
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	var gf globalFlags

	root := &cobra.Command{
		Use:           service,
		Short:         "Single-user inventory keeper",
		Long:          "Keeps a catalog of products keyed by SKU with quantities and prices.\nRuns the interactive menu when no command is given.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd, gf)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMenu(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&gf.file, "file", "", "catalog file (env INVENTORY_FILE, default data.json)")
	pf.StringVar(&gf.driver, "store", "", "store backend: file, postgres or memory (env STORE_DRIVER)")
	pf.StringVar(&gf.dbURL, "database-url", "", "postgres connection string (env DATABASE_URL)")
	pf.StringVar(&gf.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")

	root.AddCommand(
		newMenuCmd(a),
		newServeCmd(a),
		newListCmd(a),
		newReportCmd(a),
	)
	return root
}

func (a *app) configure(cmd *cobra.Command, gf globalFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.File = gf.file
	}
	if flags.Changed("store") {
		cfg.Driver = gf.driver
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = gf.dbURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = gf.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = kit.NewLogger(service, cfg.LogLevel)
	return nil
}

// openCatalog builds the configured store and loads the catalog from it. The
// returned close func releases the store's resources.
func (a *app) openCatalog(ctx context.Context, reg prometheus.Registerer) (*inventory.Catalog, func(), error) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := []inventory.Option{inventory.WithLogger(a.log)}
	if reg != nil {
		opts = append(opts, inventory.WithMetrics(inventory.NewMetrics(reg)))
	}

	c, err := inventory.Open(ctx, store, opts...)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}

	a.log.Debug("catalog opened",
		zap.String("store", a.cfg.Driver),
		zap.Int("products", c.Len()),
	)
	return c, closeStore, nil
}

func (a *app) openStore(ctx context.Context) (inventory.Store, func(), error) {
	switch a.cfg.Driver {
	case config.DriverPostgres:
		db, err := inventory.OpenPostgres(a.cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		pg := inventory.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return pg, func() { _ = db.Close() }, nil
	case config.DriverMemory:
		return inventory.NewMemStore(), func() {}, nil
	default:
		return inventory.NewFileStore(a.cfg.File), func() {}, nil
	}
}
