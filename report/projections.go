package report

import (
	"math"
	"sort"
	"time"

	"github.com/pivolan/ecommerce_analyzer/domain/models"
	"github.com/pivolan/ecommerce_analyzer/schema"
)

// GroupRow aggregates the orders sharing one key.
type GroupRow struct {
	Key      string
	Orders   int
	Revenue  float64
	Qty      float64
	AvgValue float64
}

type accumulator struct {
	keys []string
	rows map[string]*GroupRow
}

func newAccumulator() *accumulator {
	return &accumulator{rows: map[string]*GroupRow{}}
}

func (a *accumulator) add(key string, revenue, qty float64) {
	r, ok := a.rows[key]
	if !ok {
		r = &GroupRow{Key: key}
		a.rows[key] = r
		a.keys = append(a.keys, key)
	}
	r.Orders++
	r.Revenue += revenue
	r.Qty += qty
}

func (a *accumulator) result() []GroupRow {
	out := make([]GroupRow, 0, len(a.keys))
	for _, k := range a.keys {
		r := *a.rows[k]
		if r.Orders > 0 {
			r.AvgValue = r.Revenue / float64(r.Orders)
		}
		out = append(out, r)
	}
	return out
}

// GroupBy aggregates orders per value of a text column, highest revenue first.
// Null cells are skipped. An absent column yields nil.
func GroupBy(f *models.CleanedFrame, column string) []GroupRow {
	col, ok := f.Column(column)
	if !ok {
		return nil
	}
	revenue := f.Floats(schema.TotalPayment)
	qty := f.Floats(schema.TotalQty)

	acc := newAccumulator()
	for i := 0; i < f.NumRows(); i++ {
		key, ok := col.Format(i)
		if !ok {
			continue
		}
		acc.add(key, at(revenue, i), at(qty, i))
	}
	rows := acc.result()
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Revenue != rows[j].Revenue {
			return rows[i].Revenue > rows[j].Revenue
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// Top returns at most n rows.
func Top(rows []GroupRow, n int) []GroupRow {
	if n >= 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

// Monthly aggregates per order_month in chronological order.
func Monthly(f *models.CleanedFrame) []GroupRow {
	return byPeriod(f, schema.OrderMonth)
}

// Yearly aggregates per order_year in chronological order.
func Yearly(f *models.CleanedFrame) []GroupRow {
	return byPeriod(f, schema.OrderYear)
}

func byPeriod(f *models.CleanedFrame, column string) []GroupRow {
	rows := GroupBy(f, column)
	sort.SliceStable(rows, func(i, j int) bool {
		if len(rows[i].Key) != len(rows[j].Key) {
			return len(rows[i].Key) < len(rows[j].Key)
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Senin",
	time.Tuesday:   "Selasa",
	time.Wednesday: "Rabu",
	time.Thursday:  "Kamis",
	time.Friday:    "Jumat",
	time.Saturday:  "Sabtu",
	time.Sunday:    "Minggu",
}

var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// Weekday returns all seven days Monday first, labelled in Indonesian.
func Weekday(f *models.CleanedFrame) []GroupRow {
	byDay := map[string]GroupRow{}
	for _, r := range GroupBy(f, schema.OrderWeekday) {
		byDay[r.Key] = r
	}
	out := make([]GroupRow, 0, len(weekOrder))
	for _, d := range weekOrder {
		r := byDay[d.String()]
		r.Key = weekdayNames[d]
		out = append(out, r)
	}
	return out
}

// Bucket is one interval of a binned numeric column.
type Bucket struct {
	Label      string
	Orders     int
	Revenue    float64
	AvgPayment float64
	AvgQty     float64
}

type interval struct {
	label    string
	low, top float64 // (low, top]
}

var discountIntervals = []interval{
	{"Tanpa Diskon", -1, 0},
	{"Diskon Kecil (< 10rb)", 0, 10000},
	{"Diskon Sedang (10-50rb)", 10000, 50000},
	{"Diskon Besar (50-100rb)", 50000, 100000},
	{"Diskon Sangat Besar (> 100rb)", 100000, math.Inf(1)},
}

var weightIntervals = []interval{
	{"Sangat Ringan (< 1kg)", 0, 1},
	{"Ringan (1-5kg)", 1, 5},
	{"Sedang (5-10kg)", 5, 10},
	{"Berat (10-20kg)", 10, 20},
	{"Sangat Berat (> 20kg)", 20, math.Inf(1)},
}

// DiscountBuckets bins orders by total_discount.
func DiscountBuckets(f *models.CleanedFrame) []Bucket {
	return binned(f, discountIntervals, f.Floats(schema.TotalDiscount), 1)
}

// WeightBuckets bins orders by weight in kilograms. Weightless orders fall outside every bin.
func WeightBuckets(f *models.CleanedFrame) []Bucket {
	return binned(f, weightIntervals, f.Floats(schema.TotalWeightGr), 1000)
}

func binned(f *models.CleanedFrame, intervals []interval, values []float64, divisor float64) []Bucket {
	out := make([]Bucket, len(intervals))
	qtySum := make([]float64, len(intervals))
	for i, iv := range intervals {
		out[i].Label = iv.label
	}
	revenue := f.Floats(schema.TotalPayment)
	qty := f.Floats(schema.TotalQty)
	for row, v := range values {
		v /= divisor
		for i, iv := range intervals {
			if v > iv.low && v <= iv.top {
				out[i].Orders++
				out[i].Revenue += at(revenue, row)
				qtySum[i] += at(qty, row)
				break
			}
		}
	}
	for i := range out {
		if out[i].Orders > 0 {
			out[i].AvgPayment = out[i].Revenue / float64(out[i].Orders)
			out[i].AvgQty = qtySum[i] / float64(out[i].Orders)
		}
	}
	return out
}

const (
	RegionJawa       = "Jawa"
	RegionSumatera   = "Sumatera"
	RegionKalimantan = "Kalimantan"
	RegionSulawesi   = "Sulawesi"
	RegionOther      = "Lainnya"
)

var provinceRegions = map[string]string{}

func init() {
	for region, provinces := range map[string][]string{
		RegionJawa:       {"DKI Jakarta", "Jawa Barat", "Jawa Tengah", "Jawa Timur", "Banten", "DI Yogyakarta"},
		RegionSumatera:   {"Sumatera Utara", "Sumatera Barat", "Sumatera Selatan", "Riau", "Jambi", "Bengkulu", "Lampung", "Aceh", "Kepulauan Riau", "Bangka Belitung"},
		RegionKalimantan: {"Kalimantan Barat", "Kalimantan Tengah", "Kalimantan Selatan", "Kalimantan Timur", "Kalimantan Utara"},
		RegionSulawesi:   {"Sulawesi Utara", "Sulawesi Tengah", "Sulawesi Selatan", "Sulawesi Tenggara", "Gorontalo", "Sulawesi Barat"},
	} {
		for _, p := range provinces {
			provinceRegions[p] = region
		}
	}
}

// RegionOf maps a province to its island group.
func RegionOf(province string) string {
	if r, ok := provinceRegions[province]; ok {
		return r
	}
	return RegionOther
}

type RegionRow struct {
	GroupRow
	Provinces int
}

// Regions aggregates provinces into island groups, highest revenue first.
func Regions(f *models.CleanedFrame) []RegionRow {
	provinces := f.Strings(schema.Province)
	if provinces == nil {
		return nil
	}
	revenue := f.Floats(schema.TotalPayment)
	qty := f.Floats(schema.TotalQty)

	acc := newAccumulator()
	seen := map[string]map[string]bool{}
	for i, p := range provinces {
		region := RegionOf(p)
		acc.add(region, at(revenue, i), at(qty, i))
		if seen[region] == nil {
			seen[region] = map[string]bool{}
		}
		seen[region][p] = true
	}

	var out []RegionRow
	for _, r := range acc.result() {
		out = append(out, RegionRow{GroupRow: r, Provinces: len(seen[r.Key])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue > out[j].Revenue
	})
	return out
}

// DateRange returns the first and last order day, or "N/A" twice.
func DateRange(f *models.CleanedFrame) (string, string) {
	col, ok := f.Column(schema.OrderTimestamp)
	if !ok || col.Kind != models.KindTimestamp {
		return "N/A", "N/A"
	}
	var first, last time.Time
	found := false
	for i, t := range col.Times {
		if col.IsNull(i) {
			continue
		}
		if !found || t.Before(first) {
			first = t
		}
		if !found || t.After(last) {
			last = t
		}
		found = true
	}
	if !found {
		return "N/A", "N/A"
	}
	return first.Format("02 January 2006"), last.Format("02 January 2006")
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}
