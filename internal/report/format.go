package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Count formats a subject count with thousands separators.
func Count(n int64) string {
	return printer.Sprintf("%d", n)
}

// Number formats a real value with thousands separators and the given
// number of decimals.
func Number(v float64, decimals int) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "-"
	}
	return printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

// Percent formats a fraction as a percentage.
func Percent(v float64, decimals int) string {
	return printer.Sprintf(fmt.Sprintf("%%.%df%%%%", decimals), v*100)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}
