package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// printer writes either indented JSON or a text rendering.
type printer struct {
	format string
	w      io.Writer
}

func (o *RootOptions) printer(w io.Writer) printer { return printer{format: o.Format, w: w} }

func (p printer) emit(v any, text func(w io.Writer)) error {
	if p.format == "json" {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func avgText(avg *float64) string {
	if avg == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *avg)
}
