package transform

import (
	"strings"
	"time"

	"github.com/pivolan/ecommerce_analyzer/domain/models"
)

// timeLayouts are tried in order; the first match wins. Layouts with seconds
// also accept a fractional part.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"02-01-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// ParseTimestamp tries every known layout against the trimmed text.
func ParseTimestamp(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type calendar struct {
	times   []time.Time
	null    []bool
	date    []string
	month   []string
	weekday []string
	year    []int
}

// deriveCalendar parses timestamps and derives the calendar fields of each row.
// Rows that do not parse are null in every derived column.
func deriveCalendar(cells []models.Cell, rows int) calendar {
	c := calendar{
		times:   make([]time.Time, rows),
		null:    make([]bool, rows),
		date:    make([]string, rows),
		month:   make([]string, rows),
		weekday: make([]string, rows),
		year:    make([]int, rows),
	}
	for i := 0; i < rows; i++ {
		var t time.Time
		ok := false
		if i < len(cells) {
			if text, has := present(cells[i]); has {
				t, ok = ParseTimestamp(text)
			}
		}
		if !ok {
			c.null[i] = true
			continue
		}
		c.times[i] = t
		c.date[i] = t.Format("2006-01-02")
		c.month[i] = t.Format("2006-01")
		c.weekday[i] = t.Weekday().String()
		c.year[i] = t.Year()
	}
	return c
}
