package session

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pivolan/ecommerce_analyzer/domain/models"
	"github.com/pivolan/ecommerce_analyzer/history"
	"github.com/pivolan/ecommerce_analyzer/ingest"
	"github.com/pivolan/ecommerce_analyzer/pipeline"
	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"
)

// Snapshot is one fully loaded dataset. It is immutable once published.
type Snapshot struct {
	ID       string
	Source   string
	FileName string
	LoadedAt time.Time
	Report   *models.ParseReport
	Verdict  models.ValidationVerdict
	Frame    *models.CleanedFrame
	Metrics  models.MetricsSnapshot
}

// Loader runs the pipeline for one source.
type Loader interface {
	Run(ctx context.Context, src ingest.Source) (*pipeline.Result, error)
}

// Store holds the current snapshot of one user session. A failed load never
// replaces what is already there.
type Store struct {
	key      string
	loader   Loader
	recorder history.Recorder
	logger   *zap.Logger
	now      func() time.Time

	loadMu sync.Mutex

	mu       sync.RWMutex
	current  *Snapshot
	lastUsed time.Time
}

func NewStore(key string, loader Loader, recorder history.Recorder, logger *zap.Logger) *Store {
	if recorder == nil {
		recorder = history.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		key:      key,
		loader:   loader,
		recorder: recorder,
		logger:   logger.With(zap.String("session", key)),
		now:      time.Now,
		lastUsed: time.Now(),
	}
}

func (s *Store) Key() string {
	return s.key
}

// Load runs the pipeline and publishes the result. Loads on one store are serialized.
func (s *Store) Load(ctx context.Context, src ingest.Source) (*Snapshot, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	s.touch()

	res, err := s.loader.Run(ctx, src)
	s.record(ctx, src, res, err)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ID:       uuid.NewV4().String(),
		Source:   res.Source,
		FileName: res.FileName,
		LoadedAt: s.now(),
		Report:   res.Report,
		Verdict:  res.Verdict,
		Frame:    res.Frame,
		Metrics:  res.Metrics,
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	return snap, nil
}

// Current returns the published snapshot, if any.
func (s *Store) Current() (*Snapshot, bool) {
	s.touch()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

func (s *Store) Reset() {
	s.touch()
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// History returns the latest recorded load attempts of this session.
func (s *Store) History(ctx context.Context, limit int) ([]history.LoadRecord, error) {
	return s.recorder.Recent(ctx, s.key, limit)
}

func (s *Store) LastUsed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUsed
}

func (s *Store) touch() {
	s.mu.Lock()
	s.lastUsed = s.now()
	s.mu.Unlock()
}

func (s *Store) record(ctx context.Context, src ingest.Source, res *pipeline.Result, err error) {
	rec := history.LoadRecord{SessionKey: s.key, Source: src.Describe(), CreatedAt: s.now()}
	switch {
	case err == nil:
		rec.FileName = res.FileName
		rec.Strategy = res.Report.Strategy
		rec.Attempt = res.Report.Attempt
		rec.Rows = res.Report.Rows
		rec.SkippedRows = res.Report.SkippedRows
		rec.Valid = true
		rec.Message = res.Verdict.Message
		rec.Revenue = res.Metrics.TotalRevenue
	default:
		rec.Message = pipeline.UserMessage(err)
		var vf *pipeline.ValidationFailed
		if errors.As(err, &vf) && vf.Report != nil {
			rec.Strategy = vf.Report.Strategy
			rec.Attempt = vf.Report.Attempt
			rec.Rows = vf.Report.Rows
			rec.SkippedRows = vf.Report.SkippedRows
		}
	}
	rec.Message = truncateUTF8(rec.Message, maxMessageBytes)
	if rerr := s.recorder.Record(context.WithoutCancel(ctx), rec); rerr != nil {
		s.logger.Warn("cannot record load attempt", zap.Error(rerr))
	}
}

// maxMessageBytes matches the size of history.LoadRecord.Message.
const maxMessageBytes = 1024

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := limit
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
