package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pivolan/ecommerce_analyzer/domain/models"
	"go.uber.org/zap"
)

// Payload is the raw CSV content handed to the parser.
type Payload struct {
	Name   string // file name of the CSV
	Source string // human readable origin
	Data   []byte
}

// Source produces CSV bytes. Fetch fails with *models.IngestionError.
type Source interface {
	Fetch(ctx context.Context) (*Payload, error)
	Describe() string
}

// UploadSource wraps a user supplied stream.
type UploadSource struct {
	FileName string
	Reader   io.Reader
}

func (u UploadSource) Describe() string {
	return "upload:" + u.FileName
}

func (u UploadSource) Fetch(ctx context.Context) (*Payload, error) {
	if !strings.EqualFold(filepath.Ext(u.FileName), ".csv") {
		return nil, &models.IngestionError{
			Kind:   models.SourceUnavailable,
			Source: u.Describe(),
			Err:    fmt.Errorf("expected a .csv file, got %q", u.FileName),
		}
	}
	if u.Reader == nil {
		return nil, &models.IngestionError{Kind: models.SourceUnavailable, Source: u.Describe(), Err: fmt.Errorf("no data stream")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &models.IngestionError{Kind: models.SourceUnavailable, Source: u.Describe(), Err: err}
	}
	data, err := io.ReadAll(u.Reader)
	if err != nil {
		return nil, &models.IngestionError{Kind: models.SourceUnavailable, Source: u.Describe(), Err: err}
	}
	if len(data) == 0 {
		return nil, &models.IngestionError{Kind: models.EmptyResult, Source: u.Describe()}
	}
	return &Payload{Name: filepath.Base(u.FileName), Source: u.Describe(), Data: data}, nil
}

// BundleResolver turns a dataset identifier into a local directory.
type BundleResolver interface {
	Resolve(ctx context.Context, datasetID string) (string, error)
}

// RemoteSource loads the best CSV of a resolved dataset bundle.
type RemoteSource struct {
	Resolver  BundleResolver
	DatasetID string
	Logger    *zap.Logger
}

func (r RemoteSource) Describe() string {
	return "remote:" + r.DatasetID
}

func (r RemoteSource) Fetch(ctx context.Context) (*Payload, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if r.Resolver == nil {
		return nil, &models.IngestionError{Kind: models.SourceUnavailable, Source: r.Describe(), Err: fmt.Errorf("no bundle resolver configured")}
	}

	dir, err := r.Resolver.Resolve(ctx, r.DatasetID)
	if err != nil {
		return nil, &models.IngestionError{Kind: models.SourceUnavailable, Source: r.Describe(), Err: err}
	}

	path, err := SelectCSV(dir)
	if err != nil {
		return nil, err
	}
	logger.Info("loading bundle file", zap.String("dataset", r.DatasetID), zap.String("file", filepath.Base(path)))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.IngestionError{Kind: models.SourceUnavailable, Source: r.Describe(), Err: err}
	}
	if len(data) == 0 {
		return nil, &models.IngestionError{Kind: models.EmptyResult, Source: r.Describe(), Err: fmt.Errorf("%s is empty", filepath.Base(path))}
	}
	return &Payload{Name: filepath.Base(path), Source: r.Describe(), Data: data}, nil
}

// SelectCSV returns the largest .csv file directly inside dir. Equal sizes
// resolve to the lexically first name.
func SelectCSV(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &models.IngestionError{Kind: models.SourceUnavailable, Source: dir, Err: err}
	}

	var best string
	var bestSize int64 = -1
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best, bestSize = e.Name(), info.Size()
		}
	}
	if best == "" {
		return "", &models.IngestionError{Kind: models.NoTabularFileFound, Source: dir}
	}
	return filepath.Join(dir, best), nil
}
