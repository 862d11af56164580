package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vendzone/internal/engine"
	"vendzone/internal/model"
	"vendzone/internal/store"
)

type StatsResult struct {
	engine.Stats
	Occupancy []engine.ZoneFill `json:"occupancy"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard counters and zone occupancy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(ctx context.Context, st store.Store) error {
				snap, err := loadSnapshot(ctx, st, rootOpts.logger(cmd))
				if err != nil {
					return err
				}
				res := StatsResult{Stats: snap.eng.Stats(), Occupancy: snap.eng.ZoneOccupancy()}
				return rootOpts.printer(cmd.OutOrStdout()).emit(res, func(w io.Writer) {
					fmt.Fprintf(w, "vendors\t%d\n", res.TotalVendors)
					for _, s := range model.VendorZoneStatuses() {
						fmt.Fprintf(w, "  %s\t%d\n", s, res.VendorsByStatus[s])
					}
					fmt.Fprintf(w, "zones\t%d\t(%d full)\n", res.TotalZones, res.FullZones)
					fmt.Fprintf(w, "reports\t%d\n", res.TotalReports)
					fmt.Fprintf(w, "  open\t%d\t(%d critical)\n", res.OpenReports, res.CriticalOpenReports)
					fmt.Fprintf(w, "  investigating\t%d\n", res.InvestigatingReports)
					if len(res.Occupancy) > 0 {
						fmt.Fprintln(w)
						fmt.Fprintln(w, "ZONE\tSTATUS\tVENDORS\tHYGIENE")
					}
					for _, f := range res.Occupancy {
						fill := fmt.Sprintf("%d (uncapped)", f.Current)
						if f.Capped {
							fill = fmt.Sprintf("%d/%d", f.Current, f.Max)
							if f.Full {
								fill += " FULL"
							}
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, f.Status, fill, avgText(f.HygieneAvg))
					}
				})
			})
		},
	}
}
