package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pivolan/ecommerce_analyzer/domain/models"
	"github.com/pivolan/ecommerce_analyzer/schema"
	"go.uber.org/zap"
)

// naTokens are read as missing values.
var naTokens = map[string]bool{
	"NA": true, "N/A": true, "n/a": true, "NaN": true, "nan": true, "-NaN": true,
	"null": true, "NULL": true, "None": true, "#N/A": true, "<NA>": true,
}

var errNoRows = errors.New("no data rows")

type Parser struct {
	aliases    schema.Aliases
	strategies []Strategy
	logger     *zap.Logger
}

type Option func(*Parser)

func WithAliases(a schema.Aliases) Option {
	return func(p *Parser) { p.aliases = a }
}

func WithStrategies(s []Strategy) Option {
	return func(p *Parser) { p.strategies = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

func New(opts ...Option) *Parser {
	p := &Parser{
		aliases:    schema.DefaultAliases(),
		strategies: DefaultStrategies(),
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Parse runs the decode chain over data and returns the first frame that has
// at least one row.
func Parse(data []byte) (*models.RawFrame, *models.ParseReport, error) {
	return New().Parse(data)
}

func (p *Parser) Parse(data []byte) (*models.RawFrame, *models.ParseReport, error) {
	var failures []string
	for i, s := range p.strategies {
		text, err := s.Decode(data)
		if err == nil {
			var frame *models.RawFrame
			var report *models.ParseReport
			frame, report, err = p.read(text)
			if err == nil {
				report.Strategy = s.Name
				report.Attempt = i + 1
				report.Permissive = s.Permissive
				report.Failures = failures
				p.logger.Info("csv parsed",
					zap.String("strategy", s.Name),
					zap.Int("attempt", i+1),
					zap.String("delimiter", report.Delimiter),
					zap.Int("rows", report.Rows),
					zap.Int("skipped_rows", report.SkippedRows))
				if report.SkippedRows > 0 {
					p.logger.Warn("malformed rows skipped", zap.Int("count", report.SkippedRows))
				}
				return frame, report, nil
			}
		}
		p.logger.Debug("decode strategy failed", zap.String("strategy", s.Name), zap.Error(err))
		failures = append(failures, fmt.Sprintf("%s: %v", s.Name, err))
	}
	return nil, nil, &models.ParseError{Kind: models.Unparseable, Attempts: failures}
}

func (p *Parser) read(text string) (*models.RawFrame, *models.ParseReport, error) {
	delim := sniffDelimiter(text)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, errNoRows
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	names := NormalizeHeaders(header, p.aliases)
	columns := make([][]models.Cell, len(names))
	skipped := 0

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skipped++
				continue
			}
			return nil, nil, err
		}
		if isBlank(record) {
			continue
		}
		if len(record) > len(names) {
			skipped++
			continue
		}
		for i := range names {
			cell := models.Cell{}
			if i < len(record) {
				cell = toCell(record[i])
			}
			columns[i] = append(columns[i], cell)
		}
	}

	rows := 0
	if len(columns) > 0 {
		rows = len(columns[0])
	}
	if rows == 0 {
		return nil, nil, errNoRows
	}

	raw := make([]models.RawColumn, len(names))
	for i, name := range names {
		raw[i] = models.RawColumn{Name: name, Cells: columns[i]}
	}
	report := &models.ParseReport{
		Delimiter:       string(delim),
		Rows:            rows,
		SkippedRows:     skipped,
		Headers:         names,
		OriginalHeaders: header,
	}
	return models.NewRawFrame(raw), report, nil
}

func toCell(text string) models.Cell {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || naTokens[trimmed] {
		return models.Cell{Text: text}
	}
	return models.Cell{Text: text, Valid: true}
}

// isBlank reports a whitespace-only line. Rows of empty fields are kept.
func isBlank(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}
