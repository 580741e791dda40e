package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pivolan/ecommerce_analyzer/domain/models"
)

// FormatOrderID returns the synthesized identifier of the 0-based row.
func FormatOrderID(row int) string {
	return fmt.Sprintf("ORD_%07d", row+1)
}

func present(c models.Cell) (string, bool) {
	if !c.Valid {
		return "", false
	}
	text := strings.TrimSpace(c.Text)
	return text, text != ""
}

// ParseNumber reads a cell as float64. NaN counts as unparsable.
func ParseNumber(c models.Cell) (float64, bool) {
	text, ok := present(c)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// CoerceNumeric parses every cell, substituting def for missing or unparsable values.
func CoerceNumeric(cells []models.Cell, def float64) []float64 {
	out := make([]float64, len(cells))
	for i, c := range cells {
		if v, ok := ParseNumber(c); ok {
			out[i] = v
		} else {
			out[i] = def
		}
	}
	return out
}

// FillCategorical trims present values and substitutes def for missing ones.
func FillCategorical(cells []models.Cell, def string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if text, ok := present(c); ok {
			out[i] = text
		} else {
			out[i] = def
		}
	}
	return out
}

// FillIdentifiers keeps present ids and synthesizes one for each missing row.
func FillIdentifiers(cells []models.Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if text, ok := present(c); ok {
			out[i] = text
		} else {
			out[i] = FormatOrderID(i)
		}
	}
	return out
}
