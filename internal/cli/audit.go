package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vendzone/internal/store"
)

// ErrDrift is returned by audit when stored derived fields disagree with a
// fresh derivation and --fix was not given.
var ErrDrift = errors.New("stored derived fields are stale")

// Drift is one stale derived field.
type Drift struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Field   string `json:"field"`
	Stored  string `json:"stored"`
	Derived string `json:"derived"`
}

type AuditResult struct {
	Drift []Drift `json:"drift"`
	Fixed bool    `json:"fixed"`
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare stored vendor status and zone counters with a fresh derivation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(ctx context.Context, st store.Store) error {
				log := rootOpts.logger(cmd)
				snap, err := loadSnapshot(ctx, st, log)
				if err != nil {
					return err
				}
				res := AuditResult{Drift: snap.drift()}
				if fix && len(res.Drift) > 0 {
					if err := snap.writeBack(ctx, st); err != nil {
						return err
					}
					res.Fixed = true
					log.Info("audit repaired records", "zones", len(snap.stale.Zones), "vendors", len(snap.stale.Vendors))
				}
				if err := rootOpts.printer(cmd.OutOrStdout()).emit(res, func(w io.Writer) {
					if len(res.Drift) == 0 {
						fmt.Fprintln(w, "no drift")
						return
					}
					fmt.Fprintln(w, "KIND\tID\tNAME\tFIELD\tSTORED\tDERIVED")
					for _, d := range res.Drift {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", d.Kind, d.ID, d.Name, d.Field, d.Stored, d.Derived)
					}
					if res.Fixed {
						fmt.Fprintf(w, "\nrepaired %d zone(s) and %d vendor(s)\n", len(snap.stale.Zones), len(snap.stale.Vendors))
					}
				}); err != nil {
					return err
				}
				if len(res.Drift) > 0 && !res.Fixed {
					return ErrDrift
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "write the derived values back to the store")
	return cmd
}

func (s *snapshot) drift() []Drift {
	out := []Drift{}
	for _, z := range s.stale.Zones {
		old := s.zones[z.ID]
		if old.CurrentVendors != z.CurrentVendors {
			out = append(out, Drift{"zone", z.ID, z.Name, "current_vendors", fmt.Sprint(old.CurrentVendors), fmt.Sprint(z.CurrentVendors)})
		}
		if a, b := avgText(old.HygieneAvg), avgText(z.HygieneAvg); a != b {
			out = append(out, Drift{"zone", z.ID, z.Name, "hygiene_avg", a, b})
		}
	}
	for _, v := range s.stale.Vendors {
		old := s.vendors[v.ID]
		if old.ZoneStatus != v.ZoneStatus {
			out = append(out, Drift{"vendor", v.ID, v.Name, "zone_status", string(old.ZoneStatus), string(v.ZoneStatus)})
		}
		if old.ZoneID != v.ZoneID {
			out = append(out, Drift{"vendor", v.ID, v.Name, "zone_id", orNone(old.ZoneID), orNone(v.ZoneID)})
		}
	}
	return out
}

// writeBack patches only the derived fields so concurrent edits to other
// fields survive.
func (s *snapshot) writeBack(ctx context.Context, st store.Store) error {
	for _, z := range s.stale.Zones {
		fields, err := store.Fields(z, "current_vendors", "hygiene_avg", "updated_date")
		if err != nil {
			return err
		}
		if _, err := st.UpdateZone(ctx, z.ID, fields); err != nil {
			return fmt.Errorf("update zone %s: %w", z.ID, err)
		}
	}
	for _, v := range s.stale.Vendors {
		fields, err := store.Fields(v, "zone_status", "zone_id", "updated_date")
		if err != nil {
			return err
		}
		if _, err := st.UpdateVendor(ctx, v.ID, fields); err != nil {
			return fmt.Errorf("update vendor %s: %w", v.ID, err)
		}
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
