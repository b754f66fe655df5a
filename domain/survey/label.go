package survey

import (
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
)

// PercentLabel renders a proportion as a percentage rounded to two
// decimals, always keeping one fractional digit: 0.4567 → "45.67%", 1 → "100.0%".
func PercentLabel(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "n/a"
	}
	pct, err := stats.Round(p*100, 2)
	if err != nil {
		return "n/a"
	}
	s := strconv.FormatFloat(pct, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}
