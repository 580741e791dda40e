package report

import (
	"math"
	"sort"

	"github.com/pivolan/ecommerce_analyzer/domain/models"
)

// ColumnStats описательная статистика числовой колонки
type ColumnStats struct {
	Column   string
	Count    int
	Mean     float64
	Std      float64
	Min      float64
	Q25      float64
	Median   float64
	Q75      float64
	Max      float64
	Outliers int // вне 1.5 IQR от квартилей
}

// calculateQuantile вычисляет квантиль уровня p с линейной интерполяцией
func calculateQuantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	pos := p * float64(len(sorted)-1)
	floor := math.Floor(pos)
	ceil := math.Ceil(pos)

	if floor == ceil {
		return sorted[int(pos)]
	}

	lower := sorted[int(floor)]
	upper := sorted[int(ceil)]
	return lower + (pos-floor)*(upper-lower)
}

// countOutliers считает выбросы на основе межквартильного размаха
func countOutliers(numbers []float64, q1, q3 float64) int {
	iqr := q3 - q1
	lowerBound := q1 - 1.5*iqr
	upperBound := q3 + 1.5*iqr

	n := 0
	for _, num := range numbers {
		if num < lowerBound || num > upperBound {
			n++
		}
	}
	return n
}

// analyzeNumbers считает статистику по массиву чисел; для пустого массива nil
func analyzeNumbers(name string, numbers []float64) *ColumnStats {
	if len(numbers) == 0 {
		return nil
	}

	sorted := make([]float64, len(numbers))
	copy(sorted, numbers)
	sort.Float64s(sorted)

	sum := 0.0
	for _, num := range numbers {
		sum += num
	}
	avg := sum / float64(len(numbers))

	// выборочное стандартное отклонение (n-1)
	std := 0.0
	if len(numbers) > 1 {
		sq := 0.0
		for _, num := range numbers {
			sq += (num - avg) * (num - avg)
		}
		std = math.Sqrt(sq / float64(len(numbers)-1))
	}

	q1 := calculateQuantile(sorted, 0.25)
	q3 := calculateQuantile(sorted, 0.75)
	return &ColumnStats{
		Column:   name,
		Count:    len(numbers),
		Mean:     avg,
		Std:      std,
		Min:      sorted[0],
		Q25:      q1,
		Median:   calculateQuantile(sorted, 0.5),
		Q75:      q3,
		Max:      sorted[len(sorted)-1],
		Outliers: countOutliers(numbers, q1, q3),
	}
}

// Describe возвращает статистику по указанным числовым колонкам,
// или по всем числовым колонкам, если список пуст
func Describe(f *models.CleanedFrame, columns []string) []ColumnStats {
	if len(columns) == 0 {
		for _, c := range f.Columns() {
			if c.Kind == models.KindNumeric {
				columns = append(columns, c.Name)
			}
		}
	}

	var out []ColumnStats
	for _, name := range columns {
		if s := analyzeNumbers(name, f.Floats(name)); s != nil {
			out = append(out, *s)
		}
	}
	return out
}
