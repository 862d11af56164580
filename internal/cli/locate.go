package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vendzone/internal/engine"
	"vendzone/internal/geo"
	"vendzone/internal/model"
	"vendzone/internal/store"
)

type LocateResult struct {
	Lat        float64                `json:"lat"`
	Lng        float64                `json:"lng"`
	Zone       *model.Zone            `json:"zone,omitempty"`
	ZoneStatus model.VendorZoneStatus `json:"zone_status"`
	Containing []model.Zone           `json:"containing"`
}

// NewLocateCommand creates the locate command.
func NewLocateCommand(rootOpts *RootOptions) *cobra.Command {
	var lat, lng float64
	cmd := &cobra.Command{
		Use:   "locate --lat <lat> --lng <lng>",
		Short: "Show which zone governs a point and the status a vendor there gets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pt := geo.Point{Lat: lat, Lng: lng}
			if !pt.Valid() {
				return fmt.Errorf("coordinates out of range: %v,%v", lat, lng)
			}
			return rootOpts.withStore(cmd, func(ctx context.Context, st store.Store) error {
				snap, err := loadSnapshot(ctx, st, rootOpts.logger(cmd))
				if err != nil {
					return err
				}
				res := LocateResult{Lat: lat, Lng: lng, ZoneStatus: engine.UnzonedVendorStatus, Containing: snap.eng.ZonesAt(pt)}
				if res.Containing == nil {
					res.Containing = []model.Zone{}
				}
				if z, ok := snap.eng.MatchZone(pt); ok {
					res.Zone = &z
					res.ZoneStatus = engine.DeriveVendorStatus(z.Status)
				}
				return rootOpts.printer(cmd.OutOrStdout()).emit(res, func(w io.Writer) {
					if res.Zone == nil {
						fmt.Fprintf(w, "no zone contains %v,%v\tvendor status: %s\n", lat, lng, res.ZoneStatus)
						return
					}
					fmt.Fprintf(w, "zone:\t%s (%s)\n", res.Zone.Name, res.Zone.ID)
					fmt.Fprintf(w, "zone status:\t%s\n", res.Zone.Status)
					fmt.Fprintf(w, "vendor status:\t%s\n", res.ZoneStatus)
					fmt.Fprintf(w, "vendors:\t%d/%d\n", res.Zone.CurrentVendors, res.Zone.MaxVendors)
					fmt.Fprintf(w, "hygiene avg:\t%s\n", avgText(res.Zone.HygieneAvg))
					if len(res.Containing) > 1 {
						fmt.Fprintf(w, "also inside:\t%d more zone(s)\n", len(res.Containing)-1)
					}
				})
			})
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}
