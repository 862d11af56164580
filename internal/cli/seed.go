package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vendzone/internal/engine"
	"vendzone/internal/fixture"
	"vendzone/internal/model"
	"vendzone/internal/store"
)

type SeedResult struct {
	File    string `json:"file"`
	Zones   int    `json:"zones"`
	Vendors int    `json:"vendors"`
	Reports int    `json:"reports"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	DryRun  bool   `json:"dry_run"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "seed --file <fixture.yaml|vendors.csv>",
		Short: "Load zones, vendors and reports from a fixture through the compliance engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := fixture.ReadFile(file)
			if err != nil {
				return err
			}
			return rootOpts.withStore(cmd, func(ctx context.Context, st store.Store) error {
				log := rootOpts.logger(cmd)
				snap, err := loadSnapshot(ctx, st, log)
				if err != nil {
					return err
				}
				w := newWriteLog()
				w.add(snap.stale)
				if err := applyBatch(snap.eng, batch, w); err != nil {
					return err
				}
				res := SeedResult{File: file, Zones: len(batch.Zones), Vendors: len(batch.Vendors), Reports: len(batch.Reports), DryRun: dryRun}
				if !dryRun {
					res.Created, res.Updated, err = w.flush(ctx, st, snap.ids)
					if err != nil {
						return err
					}
					log.Info("seed applied", "file", file, "created", res.Created, "updated", res.Updated)
				}
				return rootOpts.printer(cmd.OutOrStdout()).emit(res, func(w io.Writer) {
					fmt.Fprintf(w, "%s\t%d zone(s), %d vendor(s), %d report(s)\n", res.File, res.Zones, res.Vendors, res.Reports)
					if res.DryRun {
						fmt.Fprintln(w, "dry run: nothing written")
						return
					}
					fmt.Fprintf(w, "created\t%d\n", res.Created)
					fmt.Fprintf(w, "updated\t%d\n", res.Updated)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file (.yaml, .yml or .csv)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and derive without writing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// applyBatch runs every record through the engine in order: zones first so
// vendors derive against them, then vendors, then reports.
func applyBatch(eng *engine.Engine, b fixture.Batch, w *writeLog) error {
	for i, z := range b.Zones {
		_, ch, err := eng.UpsertZone(z)
		if err != nil {
			return fmt.Errorf("zone %d (%s): %w", i+1, z.Name, err)
		}
		w.add(ch)
	}
	for i, v := range b.Vendors {
		_, ch, err := eng.RegisterVendor(v)
		if err != nil {
			return fmt.Errorf("vendor %d (%s): %w", i+1, v.Phone, err)
		}
		w.add(ch)
	}
	for i, r := range b.Reports {
		rep := r.HygieneReport
		if r.VendorPhone != "" {
			v, err := eng.LookupByPhone(r.VendorPhone)
			if err != nil {
				return fmt.Errorf("report %d: vendor %s: %w", i+1, r.VendorPhone, err)
			}
			rep.VendorID = v.ID
		}
		_, ch, err := eng.Submit(rep)
		if err != nil {
			return fmt.Errorf("report %d: %w", i+1, err)
		}
		w.add(ch)
	}
	return nil
}

// writeLog keeps the latest version of every touched record in first-touch
// order.
type writeLog struct {
	zones   ordered[model.Zone]
	vendors ordered[model.Vendor]
	reports ordered[model.HygieneReport]
}

type ordered[T any] struct {
	ids  []string
	recs map[string]T
}

func (o *ordered[T]) put(id string, rec T) {
	if o.recs == nil {
		o.recs = map[string]T{}
	}
	if _, ok := o.recs[id]; !ok {
		o.ids = append(o.ids, id)
	}
	o.recs[id] = rec
}

func newWriteLog() *writeLog { return &writeLog{} }

func (w *writeLog) add(ch engine.Changes) {
	for _, z := range ch.Zones {
		w.zones.put(z.ID, z)
	}
	for _, v := range ch.Vendors {
		w.vendors.put(v.ID, v)
	}
	for _, r := range ch.Reports {
		w.reports.put(r.ID, r)
	}
}

// flush creates records the store has never seen and saves the rest.
func (w *writeLog) flush(ctx context.Context, st store.Store, known map[string]bool) (created, updated int, err error) {
	count := func(id string) {
		if known[id] {
			updated++
		} else {
			created++
		}
	}
	for _, id := range w.zones.ids {
		z := w.zones.recs[id]
		if known[id] {
			err = st.SaveZone(ctx, z)
		} else {
			_, err = st.CreateZone(ctx, z)
		}
		if err != nil {
			return created, updated, fmt.Errorf("write zone %s: %w", id, err)
		}
		count(id)
	}
	for _, id := range w.vendors.ids {
		v := w.vendors.recs[id]
		if known[id] {
			err = st.SaveVendor(ctx, v)
		} else {
			_, err = st.CreateVendor(ctx, v)
		}
		if err != nil {
			return created, updated, fmt.Errorf("write vendor %s: %w", id, err)
		}
		count(id)
	}
	for _, id := range w.reports.ids {
		r := w.reports.recs[id]
		if known[id] {
			err = st.SaveReport(ctx, r)
		} else {
			_, err = st.CreateReport(ctx, r)
		}
		if err != nil {
			return created, updated, fmt.Errorf("write report %s: %w", id, err)
		}
		count(id)
	}
	return created, updated, nil
}
