package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pivolan/ecommerce_analyzer/domain/models"
	"github.com/pivolan/ecommerce_analyzer/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCSV(header string, row string, n int) []byte {
	var b strings.Builder
	b.WriteString(header + "\n")
	for i := 0; i < n; i++ {
		b.WriteString(row + "\n")
	}
	return []byte(b.String())
}

func TestParseStrategies(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		strategy   string
		attempt    int
		permissive bool
		city       string
	}{
		{
			name:     "utf-8",
			data:     buildCSV("total_qty,total_payment,order_timestamp,city", "2,50000,2023-01-15,Jakarta Selatan", 10),
			strategy: "utf-8",
			attempt:  1,
			city:     "Jakarta Selatan",
		},
		{
			name:     "utf-8 with bom",
			data:     append([]byte("\xef\xbb\xbf"), buildCSV("total_qty,total_payment,order_timestamp,city", "2,50000,2023-01-15,Bogor", 10)...),
			strategy: "utf-8",
			attempt:  1,
			city:     "Bogor",
		},
		{
			name:     "latin-1",
			data:     buildCSV("total_qty,total_payment,order_timestamp,city", "2,50000,2023-01-15,Jos\xe9", 10),
			strategy: "latin-1",
			attempt:  2,
			city:     "José",
		},
		{
			name:     "cp1252 only",
			data:     buildCSV("total_qty,total_payment,order_timestamp,city", "2,50000,2023-01-15,\x93Caf\xe9\x94", 10),
			strategy: "cp1252",
			attempt:  4,
			city:     "“Café”",
		},
		{
			name:       "permissive",
			data:       buildCSV("total_qty,total_payment,order_timestamp,city", "2,50000,2023-01-15,Ba\x81ndung", 10),
			strategy:   "utf-8 (ignore errors)",
			attempt:    5,
			permissive: true,
			city:       "Bandung",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, report, err := Parse(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, report.Strategy)
			assert.Equal(t, tt.attempt, report.Attempt)
			assert.Equal(t, tt.permissive, report.Permissive)
			assert.Equal(t, 10, frame.NumRows())
			assert.Equal(t, 10, report.Rows)
			assert.Len(t, report.Failures, tt.attempt-1)

			assert.Equal(t, []string{schema.TotalQty, schema.TotalPayment, schema.OrderTimestamp, schema.City}, frame.Names())
			city, ok := frame.Column(schema.City)
			require.True(t, ok)
			assert.Equal(t, tt.city, city.Cells[0].Text)
		})
	}
}

func TestParseDelimiters(t *testing.T) {
	for _, d := range []string{",", ";", "\t", "|"} {
		t.Run(fmt.Sprintf("%q", d), func(t *testing.T) {
			header := strings.Join([]string{"total_qty", "total_payment", "order_timestamp"}, d)
			row := strings.Join([]string{"2", "50000", "2023-01-15"}, d)
			frame, report, err := Parse(buildCSV(header, row, 12))
			require.NoError(t, err)
			assert.Equal(t, d, report.Delimiter)
			assert.Equal(t, 12, frame.NumRows())
			assert.Len(t, frame.Names(), 3)
		})
	}
}

func TestParseQuotedDelimiter(t *testing.T) {
	data := "product_categories;total_qty\n\"Fashion; Pria\";2\n\"a,b\";3\n"
	frame, report, err := Parse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, ";", report.Delimiter)
	col, _ := frame.Column(schema.ProductCategories)
	assert.Equal(t, "Fashion; Pria", col.Cells[0].Text)
	assert.Equal(t, "a,b", col.Cells[1].Text)
}

func TestParseIndonesianHeaders(t *testing.T) {
	data := "Total Pembayaran,total_qty,Waktu Pesanan Dibuat,Kota/Kabupaten,Provinsi,Ongkos Kirim Dibayar oleh Pembeli\n" +
		"50000,2,2023-01-15 10:00:00,Bandung,Jawa Barat,9000\n"
	frame, report, err := Parse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, []string{
		schema.TotalPayment, schema.TotalQty, schema.OrderTimestamp,
		schema.City, schema.Province, schema.ShippingCostBuyer,
	}, frame.Names())
	assert.Equal(t, "Total Pembayaran", report.OriginalHeaders[0])
	assert.Empty(t, schema.Validate(frame).MissingRequired)
}

func TestParseRowShapes(t *testing.T) {
	data := "a,b,c\n1,2,3\n4,5\n6,7,8,9\n\n10,NA,\n"
	frame, report, err := Parse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, 3, frame.NumRows())
	assert.Equal(t, 1, report.SkippedRows)

	b, _ := frame.Column("b")
	c, _ := frame.Column("c")
	assert.Equal(t, []models.Cell{{Text: "2", Valid: true}, {Text: "5", Valid: true}, {Text: "NA"}}, b.Cells)
	assert.False(t, c.Cells[1].Valid)
	assert.False(t, c.Cells[2].Valid)
}

func TestParseMissingTokens(t *testing.T) {
	for _, token := range []string{"", " ", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "#N/A", "<NA>", "-NaN"} {
		assert.False(t, toCell(token).Valid, "%q", token)
	}
	for _, token := range []string{"0", "abc", "Tidak Diketahui", "none"} {
		assert.True(t, toCell(token).Valid, "%q", token)
	}
}

func TestParseUnparseable(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"header only", []byte("total_qty,total_payment,order_timestamp\n")},
		{"blank lines", []byte("\n\n\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, report, err := Parse(tt.data)
			assert.Nil(t, frame)
			assert.Nil(t, report)
			var pe *models.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, models.Unparseable, pe.Kind)
			assert.Len(t, pe.Attempts, len(DefaultStrategies()))
		})
	}
}

func TestNormalizeHeaders(t *testing.T) {
	tests := []struct {
		name   string
		input  []string
		expect []string
	}{
		{
			name:   "duplicates",
			input:  []string{"name", "Name", "NAME"},
			expect: []string{"name", "name_1", "name_2"},
		},
		{
			name:   "blank headers",
			input:  []string{"id", "", "  ", "***"},
			expect: []string{"id", "column_2", "column_3", "column_4"},
		},
		{
			name:   "transliteration",
			input:  []string{"Ünïcödé Name", "Цена (руб.)"},
			expect: []string{"unicode_name", "tsena_rub"},
		},
		{
			name:   "aliases collide",
			input:  []string{"total_payment", "Total Pembayaran"},
			expect: []string{"total_payment", "total_payment_1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, NormalizeHeaders(tt.input, schema.DefaultAliases()))
		})
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		text   string
		expect rune
	}{
		{"a,b,c\n1,2,3\n", ','},
		{"a;b;c\n1,5;2;3\n", ';'},
		{"single\n1\n2\n", ','},
		{"", ','},
		{"a|b\n1|2\n", '|'},
		{"\"x;y\",b\n\"1;2\",3\n", ','},
	}
	for _, tt := range tests {
		assert.Equal(t, string(tt.expect), string(sniffDelimiter(tt.text)), "%q", tt.text)
	}
}
