package models

import "time"

// Cell is one unvalidated value of a RawFrame. Valid is false for missing values.
type Cell struct {
	Text  string
	Valid bool
}

// RawColumn is a named column of a RawFrame.
type RawColumn struct {
	Name  string
	Cells []Cell
}

// RawFrame is tabular data exactly as parsed from source bytes.
type RawFrame struct {
	columns []RawColumn
	index   map[string]int
	rows    int
}

// NewRawFrame builds a frame from equally sized columns. Later duplicates of a
// column name shadow nothing: lookups return the first occurrence.
func NewRawFrame(columns []RawColumn) *RawFrame {
	f := &RawFrame{columns: columns, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if _, ok := f.index[c.Name]; !ok {
			f.index[c.Name] = i
		}
		if i == 0 || len(c.Cells) > f.rows {
			f.rows = len(c.Cells)
		}
	}
	return f
}

func (f *RawFrame) NumRows() int {
	if f == nil {
		return 0
	}
	return f.rows
}

func (f *RawFrame) Names() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}
	return names
}

func (f *RawFrame) Columns() []RawColumn {
	return f.columns
}

func (f *RawFrame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

func (f *RawFrame) Column(name string) (RawColumn, bool) {
	i, ok := f.index[name]
	if !ok {
		return RawColumn{}, false
	}
	return f.columns[i], true
}

// ParseReport describes which decode strategy produced a RawFrame.
type ParseReport struct {
	Strategy        string
	Attempt         int  // 1-based position in the strategy chain
	Permissive      bool // undecodable bytes were dropped
	Delimiter       string
	Rows            int
	SkippedRows     int
	Headers         []string // canonical names
	OriginalHeaders []string // header text as found in the file
	Failures        []string // "strategy: reason" for every failed attempt
}

// ValidationVerdict is the pass/fail result of schema validation.
type ValidationVerdict struct {
	Valid           bool
	Message         string
	MissingRequired []string
	MissingOptional []string
	Rows            int
}

// MetricsSnapshot holds the scalar summary of a CleanedFrame.
type MetricsSnapshot struct {
	TotalOrders     int
	TotalRevenue    float64
	AvgOrderValue   float64
	TotalQtySold    float64
	TotalDiscount   float64
	TotalReturned   float64
	ReturnRate      float64 // percent
	AvgShippingCost float64
}

const (
	MetricTotalOrders     = "total_orders"
	MetricTotalRevenue    = "total_revenue"
	MetricAvgOrderValue   = "avg_order_value"
	MetricTotalQtySold    = "total_qty_sold"
	MetricTotalDiscount   = "total_discount"
	MetricTotalReturned   = "total_returned"
	MetricReturnRate      = "return_rate"
	MetricAvgShippingCost = "avg_shipping_cost"
)

// MetricKeys lists metric names in display order.
var MetricKeys = []string{
	MetricTotalOrders,
	MetricTotalRevenue,
	MetricAvgOrderValue,
	MetricTotalQtySold,
	MetricTotalDiscount,
	MetricTotalReturned,
	MetricReturnRate,
	MetricAvgShippingCost,
}

func (m MetricsSnapshot) Map() map[string]float64 {
	return map[string]float64{
		MetricTotalOrders:     float64(m.TotalOrders),
		MetricTotalRevenue:    m.TotalRevenue,
		MetricAvgOrderValue:   m.AvgOrderValue,
		MetricTotalQtySold:    m.TotalQtySold,
		MetricTotalDiscount:   m.TotalDiscount,
		MetricTotalReturned:   m.TotalReturned,
		MetricReturnRate:      m.ReturnRate,
		MetricAvgShippingCost: m.AvgShippingCost,
	}
}

func (m MetricsSnapshot) Get(key string) (float64, bool) {
	v, ok := m.Map()[key]
	return v, ok
}

// TimestampLayout is the textual form used when a cleaned timestamp is written back out.
const TimestampLayout = time.RFC3339Nano
