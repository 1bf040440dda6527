package render

import (
	"fmt"
	"math"

	"github.com/mattn/go-runewidth"

	"github.com/hniksic/openmeteo-cli/internal/forecast"
)

// FormatTemp renders a temperature rounded to whole degrees, "-" if absent.
func FormatTemp(temp *float64) string {
	if temp == nil {
		return "-"
	}
	// int conversion so -0.1 doesn't show up as -0
	return fmt.Sprintf("%d°", int(math.Round(*temp)))
}

// FormatPrecip renders a precipitation amount: blank for zero, one decimal
// under 5mm, whole millimeters above, "-" if absent.
func FormatPrecip(precip *float64) string {
	switch {
	case precip == nil:
		return "-"
	case *precip == 0:
		return ""
	case *precip < 5:
		return fmt.Sprintf("%.1fmm", *precip)
	default:
		return fmt.Sprintf("%.0fmm", *precip)
	}
}

// FormatSymbol renders a weather code as an emoji for the given hour of day,
// "-" if absent. Narrow (width 1) emoji get a trailing space so every symbol
// occupies two cells; the space must immediately follow the emoji, which is
// why this is done here and not by generic column padding.
func FormatSymbol(code *forecast.WmoCode, hour int) string {
	if code == nil {
		return "-"
	}
	sym := code.Symbol(hour)
	if runewidth.StringWidth(sym) == 1 {
		return sym + " "
	}
	return sym
}

// Dedup blanks out consecutive repeats, keeping only the first occurrence of
// each run: ["a", "a", "b", "b", "c"] becomes ["a", "", "b", "", "c"].
func Dedup(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		if i == 0 || s != items[i-1] {
			out[i] = s
		}
	}
	return out
}
