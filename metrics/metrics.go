package metrics

import (
	"github.com/pivolan/ecommerce_analyzer/domain/models"
	"github.com/pivolan/ecommerce_analyzer/schema"
)

// Aggregate computes the scalar summary of a cleaned frame. Every ratio is
// guarded, so an empty frame yields zeros.
func Aggregate(f *models.CleanedFrame) models.MetricsSnapshot {
	m := models.MetricsSnapshot{TotalOrders: f.NumRows()}
	if f == nil {
		return m
	}

	m.TotalRevenue = Sum(f.Floats(schema.TotalPayment))
	m.TotalQtySold = Sum(f.Floats(schema.TotalQty))
	m.TotalDiscount = Sum(f.Floats(schema.TotalDiscount))
	m.TotalReturned = Sum(f.Floats(schema.TotalReturnedQty))
	m.AvgOrderValue = Mean(f.Floats(schema.TotalPayment))
	m.AvgShippingCost = Mean(f.Floats(schema.ShippingCostBuyer))

	if m.TotalQtySold > 0 {
		m.ReturnRate = m.TotalReturned / m.TotalQtySold * 100
	}
	return m
}

func Sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// Mean returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}
