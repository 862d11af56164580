package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vendzone/internal/buildinfo"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.printer(cmd.OutOrStdout()).emit(buildinfo.Info(), func(w io.Writer) {
				fmt.Fprintln(w, buildinfo.String())
			})
		},
	}
}
