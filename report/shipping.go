package report

import (
	"sort"

	"github.com/pivolan/ecommerce_analyzer/domain/models"
	"github.com/pivolan/ecommerce_analyzer/metrics"
	"github.com/pivolan/ecommerce_analyzer/schema"
)

// ShippingOptionRow averages shipping costs for one shipping option.
type ShippingOptionRow struct {
	Option      string
	Orders      int
	AvgBuyer    float64
	AvgEstimate float64
}

// ShippingSummary сводка по стоимости доставки
type ShippingSummary struct {
	AvgBuyer            float64
	TotalBuyer          float64
	AvgEstimate         float64
	AvgDiscountEstimate float64
	// Difference средняя оценка минус фактически оплаченное покупателем
	Difference float64
	ByOption   []ShippingOptionRow
}

// ShippingCosts summarizes what buyers paid for shipping against the estimate.
// Options are ordered by average buyer cost, cheapest first.
func ShippingCosts(f *models.CleanedFrame) ShippingSummary {
	buyer := f.Floats(schema.ShippingCostBuyer)
	estimate := f.Floats(schema.ShippingCostEstimate)

	s := ShippingSummary{
		AvgBuyer:            metrics.Mean(buyer),
		TotalBuyer:          metrics.Sum(buyer),
		AvgEstimate:         metrics.Mean(estimate),
		AvgDiscountEstimate: metrics.Mean(f.Floats(schema.ShippingDiscountEstimate)),
	}
	s.Difference = s.AvgEstimate - s.AvgBuyer

	col, ok := f.Column(schema.ShippingOption)
	if !ok {
		return s
	}
	type sums struct {
		orders          int
		buyer, estimate float64
	}
	var keys []string
	byKey := map[string]*sums{}
	for i := 0; i < f.NumRows(); i++ {
		key, ok := col.Format(i)
		if !ok {
			continue
		}
		acc, seen := byKey[key]
		if !seen {
			acc = &sums{}
			byKey[key] = acc
			keys = append(keys, key)
		}
		acc.orders++
		acc.buyer += at(buyer, i)
		acc.estimate += at(estimate, i)
	}
	for _, k := range keys {
		acc := byKey[k]
		s.ByOption = append(s.ByOption, ShippingOptionRow{
			Option:      k,
			Orders:      acc.orders,
			AvgBuyer:    acc.buyer / float64(acc.orders),
			AvgEstimate: acc.estimate / float64(acc.orders),
		})
	}
	sort.SliceStable(s.ByOption, func(i, j int) bool {
		a, b := s.ByOption[i], s.ByOption[j]
		if a.AvgBuyer != b.AvgBuyer {
			return a.AvgBuyer < b.AvgBuyer
		}
		return a.Option < b.Option
	})
	return s
}

// ReturnRow is the returned quantity of one product category.
type ReturnRow struct {
	Category string
	Orders   int
	Returned float64
}

// ReturnSummary сводка по возвратам
type ReturnSummary struct {
	Orders     int     // заказы с возвратом
	Returned   float64 // возвращено единиц
	Rate       float64 // доля заказов с возвратом, %
	Categories []ReturnRow
}

// Returns summarizes orders with a positive returned quantity and lists at
// most n categories by returned quantity, largest first. Negative n keeps all.
func Returns(f *models.CleanedFrame, n int) ReturnSummary {
	var s ReturnSummary
	returned := f.Floats(schema.TotalReturnedQty)
	category, hasCategory := f.Column(schema.ProductCategories)

	var keys []string
	byKey := map[string]*ReturnRow{}
	for i := 0; i < f.NumRows(); i++ {
		qty := at(returned, i)
		if qty <= 0 {
			continue
		}
		s.Orders++
		s.Returned += qty
		if !hasCategory {
			continue
		}
		key, ok := category.Format(i)
		if !ok {
			continue
		}
		r, seen := byKey[key]
		if !seen {
			r = &ReturnRow{Category: key}
			byKey[key] = r
			keys = append(keys, key)
		}
		r.Orders++
		r.Returned += qty
	}
	if f.NumRows() > 0 {
		s.Rate = float64(s.Orders) / float64(f.NumRows()) * 100
	}

	for _, k := range keys {
		s.Categories = append(s.Categories, *byKey[k])
	}
	sort.SliceStable(s.Categories, func(i, j int) bool {
		a, b := s.Categories[i], s.Categories[j]
		if a.Returned != b.Returned {
			return a.Returned > b.Returned
		}
		return a.Category < b.Category
	})
	if n >= 0 && len(s.Categories) > n {
		s.Categories = s.Categories[:n]
	}
	return s
}
