package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatNumber rounds to an integer and groups thousands with dots: 1234567 -> "1.234.567".
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	digits := strconv.FormatFloat(math.Abs(v), 'f', 0, 64)
	var b strings.Builder
	if v < 0 && digits != "0" {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatCurrency renders Rupiah: "Rp 1.234.567".
func FormatCurrency(v float64) string {
	return "Rp " + FormatNumber(v)
}

func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
