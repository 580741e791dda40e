package transform

import (
	"github.com/pivolan/ecommerce_analyzer/domain/models"
	"github.com/pivolan/ecommerce_analyzer/schema"
	"go.uber.org/zap"
)

// Transformer applies the column-spec table to a RawFrame. It never fails:
// anything that cannot be coerced takes the column default.
type Transformer struct {
	specs  []schema.ColumnSpec
	logger *zap.Logger
}

func New(logger *zap.Logger) *Transformer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transformer{specs: schema.Columns, logger: logger}
}

// Transform cleans raw with the default column table.
func Transform(raw *models.RawFrame) *models.CleanedFrame {
	return New(nil).Transform(raw)
}

// builder keeps column order: a column set twice stays at its first position.
type builder struct {
	cols  []models.Column
	index map[string]int
}

func (b *builder) set(c models.Column) {
	if i, ok := b.index[c.Name]; ok {
		b.cols[i] = c
		return
	}
	b.index[c.Name] = len(b.cols)
	b.cols = append(b.cols, c)
}

func (t *Transformer) Transform(raw *models.RawFrame) *models.CleanedFrame {
	rows := raw.NumRows()
	b := &builder{index: map[string]int{}}

	if raw != nil {
		for _, c := range raw.Columns() {
			if _, dup := b.index[c.Name]; dup {
				continue
			}
			b.set(textColumn(c.Name, pad(c.Cells, rows)))
		}
	}

	for _, spec := range t.specs {
		var cells []models.Cell
		found := false
		if raw != nil {
			var c models.RawColumn
			c, found = raw.Column(spec.Name)
			cells = c.Cells
		}
		if !found {
			t.logger.Debug("column filled with defaults", zap.String("column", spec.Name))
		}
		cells = pad(cells, rows)

		switch spec.Kind {
		case models.KindIdentifier:
			b.set(models.NewStringColumn(spec.Name, models.KindIdentifier, FillIdentifiers(cells), nil))
		case models.KindTimestamp:
			cal := deriveCalendar(cells, rows)
			b.set(models.NewTimestampColumn(spec.Name, cal.times, cal.null))
			b.set(models.NewStringColumn(schema.OrderDate, models.KindText, cal.date, cal.null))
			b.set(models.NewStringColumn(schema.OrderMonth, models.KindText, cal.month, cal.null))
			b.set(models.NewIntegerColumn(schema.OrderYear, cal.year, cal.null))
			b.set(models.NewStringColumn(schema.OrderWeekday, models.KindText, cal.weekday, cal.null))
		case models.KindNumeric:
			b.set(models.NewNumericColumn(spec.Name, CoerceNumeric(cells, spec.Number)))
		case models.KindCategorical:
			b.set(models.NewStringColumn(spec.Name, models.KindCategorical, FillCategorical(cells, spec.Default), nil))
		}
	}

	return models.NewCleanedFrame(rows, b.cols)
}

// textColumn carries a column that is not in schema.Columns through unchanged.
func textColumn(name string, cells []models.Cell) models.Column {
	values := make([]string, len(cells))
	null := make([]bool, len(cells))
	for i, c := range cells {
		if c.Valid {
			values[i] = c.Text
		} else {
			null[i] = true
		}
	}
	return models.NewStringColumn(name, models.KindText, values, null)
}

func pad(cells []models.Cell, rows int) []models.Cell {
	if len(cells) >= rows {
		return cells[:rows]
	}
	out := make([]models.Cell, rows)
	copy(out, cells)
	return out
}
