package assetclean

import (
	"io"

	"github.com/yacobolo/assetclean/internal/report"
)

// WriteJSON writes the report document, the same one saved to the report
// file, to w.
func WriteJSON(w io.Writer, result *Result) error {
	rep := result.Report
	if rep == nil {
		rep = report.New()
	}
	return rep.Encode(w)
}
