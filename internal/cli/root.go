// Package cli implements zonectl, the operator tool for the zone store.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"vendzone/internal/config"
	"vendzone/internal/engine"
	"vendzone/internal/logging"
	"vendzone/internal/model"
	"vendzone/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"
	Verbose    bool

	// OpenStore connects to the record store; tests swap it for a memory store.
	OpenStore func(ctx context.Context, opts *RootOptions) (store.Store, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for zonectl.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(&RootOptions{OpenStore: openConfiguredStore})
}

// NewRootCommandWith builds the command tree around caller-supplied options.
func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	if opts.OpenStore == nil {
		opts.OpenStore = openConfiguredStore
	}
	cmd := &cobra.Command{
		Use:   "zonectl",
		Short: "Inspect and maintain vending zones, vendors and hygiene reports",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default $VENDZONE_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewLocateCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func openConfiguredStore(ctx context.Context, opts *RootOptions) (store.Store, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set; zonectl works against the shared store")
	}
	pg, err := store.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate {
		if err := pg.MigrateDir(cfg.MigrateDir); err != nil {
			_ = pg.Close()
			return nil, err
		}
	}
	return pg, nil
}

func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	return logging.NewWriter(cmd.ErrOrStderr(), level, "text")
}

// snapshot is the store contents loaded into a fresh engine.
type snapshot struct {
	eng     *engine.Engine
	stale   engine.Changes
	ids     map[string]bool
	zones   map[string]model.Zone
	vendors map[string]model.Vendor
}

func loadSnapshot(ctx context.Context, st store.Store, log *slog.Logger) (*snapshot, error) {
	zones, err := st.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	vendors, err := st.ListVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	reports, err := st.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	snap := &snapshot{
		ids:     map[string]bool{},
		zones:   map[string]model.Zone{},
		vendors: map[string]model.Vendor{},
	}
	for _, z := range zones {
		snap.ids[z.ID] = true
		snap.zones[z.ID] = z
	}
	for _, v := range vendors {
		snap.ids[v.ID] = true
		snap.vendors[v.ID] = v
	}
	for _, r := range reports {
		snap.ids[r.ID] = true
	}
	snap.eng = engine.New(engine.WithLogger(log))
	snap.stale = snap.eng.Load(zones, vendors, reports)
	return snap, nil
}

// withStore opens the store for one command run.
func (o *RootOptions) withStore(cmd *cobra.Command, fn func(ctx context.Context, st store.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := o.OpenStore(ctx, o)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return fn(ctx, st)
}
