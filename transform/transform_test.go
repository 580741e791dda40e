package transform

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pivolan/ecommerce_analyzer/domain/models"
	"github.com/pivolan/ecommerce_analyzer/parser"
	"github.com/pivolan/ecommerce_analyzer/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cells(values ...string) []models.Cell {
	out := make([]models.Cell, len(values))
	for i, v := range values {
		out[i] = models.Cell{Text: v, Valid: v != ""}
	}
	return out
}

func rawFrame(cols map[string][]string, order ...string) *models.RawFrame {
	raw := make([]models.RawColumn, 0, len(order))
	for _, name := range order {
		raw = append(raw, models.RawColumn{Name: name, Cells: cells(cols[name]...)})
	}
	return models.NewRawFrame(raw)
}

func TestCoerceNumeric(t *testing.T) {
	got := CoerceNumeric(cells("10", "abc", "", "5"), 0)
	assert.Equal(t, []float64{10, 0, 0, 5}, got)

	sum := 0.0
	for _, v := range got {
		sum += v
	}
	assert.Equal(t, 15.0, sum)

	assert.Equal(t, []float64{1, 2.5, 1}, CoerceNumeric(cells("", " 2.5 ", "x"), 1))
	nan := []models.Cell{{Text: "NaN", Valid: true}}
	assert.Equal(t, []float64{0}, CoerceNumeric(nan, 0))
}

func TestFillIdentifiers(t *testing.T) {
	assert.Equal(t, []string{"A1", "ORD_0000002", "A3"}, FillIdentifiers(cells("A1", "", "A3")))
	assert.Equal(t, "ORD_0000001", FormatOrderID(0))
	assert.Equal(t, "ORD_1234567", FormatOrderID(1234566))
}

func TestSynthesizedIdentifiersUnique(t *testing.T) {
	const n = 25
	qty := make([]string, n)
	for i := range qty {
		qty[i] = "1"
	}
	frame := Transform(rawFrame(map[string][]string{schema.TotalQty: qty}, schema.TotalQty))

	ids := frame.Strings(schema.OrderID)
	require.Len(t, ids, n)
	seen := map[string]bool{}
	for i, id := range ids {
		assert.Equal(t, fmt.Sprintf("ORD_%07d", i+1), id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input  string
		expect time.Time
	}{
		{"2023-01-15", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2023-01-15 10:30:00", time.Date(2023, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2023-01-15 10:30:00.250", time.Date(2023, 1, 15, 10, 30, 0, 250000000, time.UTC)},
		{"2023-01-15T10:30:00", time.Date(2023, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2023-01-15T10:30:00Z", time.Date(2023, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2023-01-15 10:30", time.Date(2023, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2023/01/15", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"01/15/2023 08:00", time.Date(2023, 1, 15, 8, 0, 0, 0, time.UTC)},
		{"1/5/2023", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"15.01.2023", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
		{" 2023-01-15 ", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2023-01-15 10:30:00+07:00", time.Date(2023, 1, 15, 3, 30, 0, 0, time.UTC)},
		{"2023-01-15 10:30:00 +0700", time.Date(2023, 1, 15, 3, 30, 0, 0, time.UTC)},
		{"2023-1-5", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"Jan 15, 2023", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"January 5, 2023", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"15 Jan 2023", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			require.True(t, ok)
			assert.True(t, tt.expect.Equal(got), "got %s", got)
		})
	}

	for _, bad := range []string{"", "not-a-date", "2023-13-45", "yesterday"} {
		_, ok := ParseTimestamp(bad)
		assert.False(t, ok, bad)
	}
}

func TestTransformColumns(t *testing.T) {
	raw := rawFrame(map[string][]string{
		schema.TotalQty:       {"2", "x"},
		schema.TotalPayment:   {"50000", ""},
		schema.OrderTimestamp: {"2023-01-15", "not-a-date"},
		schema.City:           {" Bandung ", ""},
		"notes":               {"hello", ""},
	}, "notes", schema.TotalQty, schema.TotalPayment, schema.OrderTimestamp, schema.City)

	frame := Transform(raw)
	require.Equal(t, 2, frame.NumRows())

	for _, name := range append(append([]string{}, schema.Required...), schema.Optional...) {
		assert.True(t, frame.HasColumn(name), name)
	}
	for _, name := range []string{schema.OrderDate, schema.OrderMonth, schema.OrderYear, schema.OrderWeekday} {
		assert.True(t, frame.HasColumn(name), name)
	}

	assert.Equal(t, []string{"notes", schema.TotalQty, schema.TotalPayment, schema.OrderTimestamp, schema.City, schema.OrderID}, frame.Names()[:6])

	assert.Equal(t, []float64{2, 0}, frame.Floats(schema.TotalQty))
	assert.Equal(t, []float64{50000, 0}, frame.Floats(schema.TotalPayment))
	assert.Equal(t, []float64{0, 0}, frame.Floats(schema.TotalWeightGr))
	assert.Equal(t, []float64{1, 1}, frame.Floats(schema.NumProductCategories))
	assert.Equal(t, []string{"Bandung", schema.Unknown}, frame.Strings(schema.City))
	assert.Equal(t, []string{schema.Unknown, schema.Unknown}, frame.Strings(schema.Province))

	month, _ := frame.Column(schema.OrderMonth)
	v, ok := month.Format(0)
	assert.True(t, ok)
	assert.Equal(t, "2023-01", v)
	_, ok = month.Format(1)
	assert.False(t, ok)

	weekday, _ := frame.Column(schema.OrderWeekday)
	assert.Equal(t, "Sunday", weekday.Strings[0])
	year, _ := frame.Column(schema.OrderYear)
	assert.Equal(t, 2023, year.Ints[0])
	assert.True(t, year.IsNull(1))

	notes, _ := frame.Column("notes")
	assert.Equal(t, models.KindText, notes.Kind)
	assert.True(t, notes.IsNull(1))
}

func TestTransformIdempotent(t *testing.T) {
	var b strings.Builder
	b.WriteString("Waktu Pesanan Dibuat;total_qty;Total Pembayaran;Total Diskon;Provinsi;num_product_categories;catatan\n")
	for i := 0; i < 12; i++ {
		ts := fmt.Sprintf("2023-0%d-1%d 1%d:05:00", i%9+1, i%10, i%10)
		if i == 3 {
			ts = "not-a-date"
		}
		if i == 5 {
			ts = "2024-02-01T08:00:00+07:00"
		}
		fmt.Fprintf(&b, "%s;%d;%d.5;;%s;abc;NA\n", ts, i, i*1000, []string{"Jawa Barat", "", "Bali"}[i%3])
	}

	raw, _, err := parser.Parse([]byte(b.String()))
	require.NoError(t, err)

	first := Transform(raw)
	second := Transform(first.Raw())

	assert.Equal(t, first.Names(), second.Names())
	if diff := cmp.Diff(first.Columns(), second.Columns()); diff != "" {
		t.Errorf("second pass changed the frame (-first +second):\n%s", diff)
	}
}

func TestTransformEmpty(t *testing.T) {
	frame := Transform(nil)
	assert.Equal(t, 0, frame.NumRows())
	assert.True(t, frame.HasColumn(schema.OrderID))
	assert.Empty(t, frame.Floats(schema.TotalPayment))
}
