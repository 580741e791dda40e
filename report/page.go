package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/pivolan/ecommerce_analyzer/domain/models"
)

const DefaultPerPage = 20

// PageView is one page of raw rows rendered as text.
type PageView struct {
	Columns []string
	Rows    [][]string
	Page    int
	Pages   int
	Total   int
	From    int // 1-based, inclusive
	To      int
}

func selectColumns(f *models.CleanedFrame, names []string) ([]models.Column, error) {
	if len(names) == 0 {
		return f.Columns(), nil
	}
	out := make([]models.Column, 0, len(names))
	for _, name := range names {
		c, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		out = append(out, c)
	}
	return out, nil
}

// Page slices the frame for browsing. page is clamped into range.
func Page(f *models.CleanedFrame, columns []string, page, perPage int) (PageView, error) {
	cols, err := selectColumns(f, columns)
	if err != nil {
		return PageView{}, err
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	total := f.NumRows()
	pages := (total + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}
	page = max(1, min(page, pages))

	view := PageView{Page: page, Pages: pages, Total: total}
	for _, c := range cols {
		view.Columns = append(view.Columns, c.Name)
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	for row := start; row < end; row++ {
		view.Rows = append(view.Rows, formatRow(cols, row))
	}
	if end > start {
		view.From, view.To = start+1, end
	}
	return view, nil
}

// ExportCSV writes the selected columns as comma separated UTF-8 with a header row.
// Null cells are written empty.
func ExportCSV(f *models.CleanedFrame, columns []string) ([]byte, error) {
	cols, err := selectColumns(f, columns)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for row := 0; row < f.NumRows(); row++ {
		if err := w.Write(formatRow(cols, row)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatRow(cols []models.Column, row int) []string {
	record := make([]string, len(cols))
	for i, c := range cols {
		record[i], _ = c.Format(row)
	}
	return record
}
