package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pivolan/ecommerce_analyzer/domain/models"
	"github.com/pivolan/ecommerce_analyzer/ingest"
	"github.com/pivolan/ecommerce_analyzer/metrics"
	"github.com/pivolan/ecommerce_analyzer/parser"
	"github.com/pivolan/ecommerce_analyzer/schema"
	"github.com/pivolan/ecommerce_analyzer/transform"
	"go.uber.org/zap"
)

// Result is everything one successful load produces.
type Result struct {
	FileName string
	Source   string
	Report   *models.ParseReport
	Verdict  models.ValidationVerdict
	Frame    *models.CleanedFrame
	Metrics  models.MetricsSnapshot
}

// ValidationFailed stops the pipeline before transformation.
type ValidationFailed struct {
	Verdict models.ValidationVerdict
	Report  *models.ParseReport
}

func (e *ValidationFailed) Error() string {
	return "validation failed: " + e.Verdict.Message
}

// Pipeline runs ingest, parse, validate, transform and aggregate in order.
type Pipeline struct {
	parser      *parser.Parser
	transformer *transform.Transformer
	logger      *zap.Logger
}

func New(logger *zap.Logger, aliases schema.Aliases) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if aliases == nil {
		aliases = schema.DefaultAliases()
	}
	return &Pipeline{
		parser:      parser.New(parser.WithAliases(aliases), parser.WithLogger(logger.Named("parser"))),
		transformer: transform.New(logger.Named("transform")),
		logger:      logger,
	}
}

// Run loads src to completion. Nothing partial is returned on error.
func (p *Pipeline) Run(ctx context.Context, src ingest.Source) (*Result, error) {
	logger := p.logger.With(zap.String("source", src.Describe()))

	payload, err := src.Fetch(ctx)
	if err != nil {
		logger.Warn("ingestion failed", zap.Error(err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, report, err := p.parser.Parse(payload.Data)
	if err != nil {
		logger.Warn("parse failed", zap.Error(err))
		return nil, err
	}

	verdict := schema.Validate(raw)
	if len(verdict.MissingOptional) > 0 {
		logger.Info("optional columns missing", zap.Strings("columns", verdict.MissingOptional))
	}
	if !verdict.Valid {
		logger.Warn("validation failed", zap.String("message", verdict.Message), zap.Int("rows", verdict.Rows))
		return nil, &ValidationFailed{Verdict: verdict, Report: report}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame := p.transformer.Transform(raw)
	m := metrics.Aggregate(frame)
	logger.Info("dataset loaded",
		zap.String("file", payload.Name),
		zap.Int("rows", frame.NumRows()),
		zap.Float64("revenue", m.TotalRevenue))

	return &Result{
		FileName: payload.Name,
		Source:   payload.Source,
		Report:   report,
		Verdict:  verdict,
		Frame:    frame,
		Metrics:  m,
	}, nil
}

// UserMessage turns any pipeline error into one line fit for an end user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var vf *ValidationFailed
	var ie *models.IngestionError
	var pe *models.ParseError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "❌ Pemuatan data dibatalkan"
	case errors.As(err, &vf):
		return "❌ " + vf.Verdict.Message
	case errors.As(err, &ie):
		switch ie.Kind {
		case models.NoTabularFileFound:
			return "❌ Tidak ditemukan file CSV di dataset"
		case models.EmptyResult:
			return "❌ File kosong, tidak ada data untuk dimuat"
		default:
			if ie.Err != nil {
				return fmt.Sprintf("❌ Gagal memuat data: %v. 💡 Coba mode upload file CSV sebagai alternatif", ie.Err)
			}
			return "❌ Gagal memuat data. 💡 Coba mode upload file CSV sebagai alternatif"
		}
	case errors.As(err, &pe):
		return "❌ Gagal membaca file CSV. 💡 Pastikan file CSV memiliki format yang konsisten dan gunakan delimiter standar (koma atau semicolon)"
	default:
		return "❌ " + strings.TrimSpace(err.Error())
	}
}
