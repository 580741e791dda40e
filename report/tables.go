package report

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pivolan/ecommerce_analyzer/domain/models"
)

func newTable(title string, header table.Row) table.Writer {
	t := table.NewWriter()
	if title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(header)
	t.SetStyle(table.StyleDefault)
	return t
}

// OverviewTable renders the headline metrics.
func OverviewTable(m models.MetricsSnapshot) string {
	t := newTable("Ringkasan", table.Row{"Metrik", "Nilai"})
	t.AppendRows([]table.Row{
		{"Total Pesanan", FormatNumber(float64(m.TotalOrders))},
		{"Total Pendapatan", FormatCurrency(m.TotalRevenue)},
		{"Rata-rata Nilai Pesanan", FormatCurrency(m.AvgOrderValue)},
		{"Total Produk Terjual", FormatNumber(m.TotalQtySold)},
		{"Total Diskon", FormatCurrency(m.TotalDiscount)},
		{"Total Retur", FormatNumber(m.TotalReturned)},
		{"Tingkat Retur", FormatPercent(m.ReturnRate)},
		{"Rata-rata Ongkir", FormatCurrency(m.AvgShippingCost)},
	})
	return t.Render()
}

// InfoTable describes the loaded file: how it was parsed and what columns survived.
func InfoTable(f *models.CleanedFrame, r models.ParseReport) string {
	from, to := DateRange(f)
	t := newTable("Info Dataset", table.Row{"Parameter", "Nilai"})
	t.AppendRows([]table.Row{
		{"Baris", FormatNumber(float64(f.NumRows()))},
		{"Kolom", f.NumColumns()},
		{"Encoding", fmt.Sprintf("%s (percobaan %d)", r.Strategy, r.Attempt)},
		{"Delimiter", strconv.Quote(r.Delimiter)},
		{"Baris dilewati", r.SkippedRows},
		{"Periode", from + " - " + to},
	})
	if r.Permissive {
		t.AppendRow(table.Row{"Peringatan", "karakter rusak diabaikan"})
	}
	return t.Render()
}

// GroupTable renders grouped rows under a key column called label.
func GroupTable(title, label string, rows []GroupRow) string {
	t := newTable(title, table.Row{label, "Pesanan", "Pendapatan", "Qty", "Rata-rata"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Key, r.Orders, FormatCurrency(r.Revenue), FormatNumber(r.Qty), FormatCurrency(r.AvgValue)})
	}
	return t.Render()
}

func BucketTable(title string, buckets []Bucket) string {
	t := newTable(title, table.Row{"Kelompok", "Pesanan", "Pendapatan", "Rata-rata Bayar", "Rata-rata Qty"})
	for _, b := range buckets {
		t.AppendRow(table.Row{b.Label, b.Orders, FormatCurrency(b.Revenue), FormatCurrency(b.AvgPayment), strconv.FormatFloat(b.AvgQty, 'f', 2, 64)})
	}
	return t.Render()
}

func RegionTable(rows []RegionRow) string {
	t := newTable("Wilayah", table.Row{"Wilayah", "Provinsi", "Pesanan", "Pendapatan", "Rata-rata"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Key, r.Provinces, r.Orders, FormatCurrency(r.Revenue), FormatCurrency(r.AvgValue)})
	}
	return t.Render()
}

// ShippingTable renders the shipping cost summary followed by the per-option averages.
func ShippingTable(s ShippingSummary) string {
	summary := newTable("Biaya Pengiriman", table.Row{"Metrik", "Nilai"})
	summary.AppendRows([]table.Row{
		{"Rata-rata Ongkir", FormatCurrency(s.AvgBuyer)},
		{"Total Ongkir", FormatCurrency(s.TotalBuyer)},
		{"Rata-rata Estimasi", FormatCurrency(s.AvgEstimate)},
		{"Rata-rata Potongan", FormatCurrency(s.AvgDiscountEstimate)},
		{"Selisih Estimasi - Aktual", FormatCurrency(s.Difference)},
	})
	out := summary.Render()
	if len(s.ByOption) == 0 {
		return out
	}

	options := newTable("Per Opsi Pengiriman", table.Row{"Opsi", "Pesanan", "Rata-rata Ongkir", "Rata-rata Estimasi"})
	for _, r := range s.ByOption {
		options.AppendRow(table.Row{r.Option, r.Orders, FormatCurrency(r.AvgBuyer), FormatCurrency(r.AvgEstimate)})
	}
	return out + "\n" + options.Render()
}

func ReturnTable(s ReturnSummary) string {
	summary := newTable("Retur", table.Row{"Metrik", "Nilai"})
	summary.AppendRows([]table.Row{
		{"Pesanan dengan Retur", FormatNumber(float64(s.Orders))},
		{"Total Qty Dikembalikan", FormatNumber(s.Returned)},
		{"Tingkat Retur Pesanan", FormatPercent(s.Rate)},
	})
	out := summary.Render()
	if len(s.Categories) == 0 {
		return out
	}

	categories := newTable("Retur per Kategori", table.Row{"Kategori", "Pesanan", "Total Dikembalikan"})
	for _, r := range s.Categories {
		categories.AppendRow(table.Row{r.Category, r.Orders, FormatNumber(r.Returned)})
	}
	return out + "\n" + categories.Render()
}

// DescribeTable renders column statistics one column per row.
func DescribeTable(stats []ColumnStats) string {
	t := newTable("Statistik", table.Row{"Kolom", "count", "mean", "std", "min", "25%", "50%", "75%", "max", "outliers"})
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	for _, s := range stats {
		t.AppendRow(table.Row{s.Column, s.Count, f(s.Mean), f(s.Std), f(s.Min), f(s.Q25), f(s.Median), f(s.Q75), f(s.Max), s.Outliers})
	}
	return t.Render()
}

func PageTable(v PageView) string {
	header := table.Row{"#"}
	for _, c := range v.Columns {
		header = append(header, c)
	}
	t := newTable(fmt.Sprintf("Halaman %d/%d (%d baris)", v.Page, v.Pages, v.Total), header)
	for i, r := range v.Rows {
		row := table.Row{v.From + i}
		for _, cell := range r {
			row = append(row, cell)
		}
		t.AppendRow(row)
	}
	return t.Render()
}
