package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pivolan/ecommerce_analyzer/history"
	"github.com/pivolan/ecommerce_analyzer/ingest"
	"github.com/pivolan/ecommerce_analyzer/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRecorder struct {
	mu      sync.Mutex
	records []history.LoadRecord
}

func (m *memoryRecorder) Record(_ context.Context, rec history.LoadRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryRecorder) Recent(_ context.Context, key string, limit int) ([]history.LoadRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []history.LoadRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].SessionKey == key {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func csvUpload(rows int) ingest.Source {
	var b strings.Builder
	b.WriteString("total_qty,total_payment,order_timestamp\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "1,%d,2023-02-0%d\n", (i+1)*1000, i%9+1)
	}
	return ingest.UploadSource{FileName: "orders.csv", Reader: strings.NewReader(b.String())}
}

func TestStoreLoadAndReset(t *testing.T) {
	rec := &memoryRecorder{}
	s := NewStore("chat-1", pipeline.New(nil, nil), rec, nil)

	_, ok := s.Current()
	assert.False(t, ok)

	snap, err := s.Load(context.Background(), csvUpload(10))
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Frame.NumRows())
	assert.Equal(t, 55000.0, snap.Metrics.TotalRevenue)
	assert.Equal(t, "orders.csv", snap.FileName)
	assert.NotEmpty(t, snap.ID)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Same(t, snap, cur)

	// a failed reload keeps the previous dataset
	_, err = s.Load(context.Background(), csvUpload(3))
	require.Error(t, err)
	cur, ok = s.Current()
	require.True(t, ok)
	assert.Same(t, snap, cur)

	_, err = s.Load(context.Background(), ingest.UploadSource{FileName: "x.txt"})
	require.Error(t, err)
	cur, _ = s.Current()
	assert.Same(t, snap, cur)

	s.Reset()
	_, ok = s.Current()
	assert.False(t, ok)

	records, err := s.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.False(t, records[0].Valid)
	assert.False(t, records[1].Valid)
	assert.Equal(t, 3, records[1].Rows)
	assert.Equal(t, "utf-8", records[1].Strategy)
	assert.True(t, records[2].Valid)
	assert.Equal(t, 55000.0, records[2].Revenue)
}

type failingLoader struct{ err error }

func (l failingLoader) Run(context.Context, ingest.Source) (*pipeline.Result, error) {
	return nil, l.err
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"héllo", 2, "h"},
		{"héllo", 3, "hé"},
		{"❌ x", 2, ""},
		{"", 0, ""},
	}
	for _, tt := range tests {
		got := truncateUTF8(tt.in, tt.limit)
		assert.Equal(t, tt.want, got, "%q/%d", tt.in, tt.limit)
		assert.True(t, utf8.ValidString(got))
	}
}

func TestStoreRecordsLongMessage(t *testing.T) {
	rec := &memoryRecorder{}
	// "❌ x" is 5 bytes, so the cut at 1024 falls inside a two-byte rune
	s := NewStore("chat-1", failingLoader{err: errors.New("x" + strings.Repeat("é", 700))}, rec, nil)

	_, err := s.Load(context.Background(), csvUpload(10))
	require.Error(t, err)

	require.Len(t, rec.records, 1)
	msg := rec.records[0].Message
	assert.False(t, rec.records[0].Valid)
	assert.True(t, utf8.ValidString(msg))
	assert.LessOrEqual(t, len(msg), maxMessageBytes)
	assert.Equal(t, maxMessageBytes-1, len(msg))
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore("chat-2", pipeline.New(nil, nil), nil, nil)
	_, err := s.Load(context.Background(), csvUpload(10))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = s.Load(context.Background(), csvUpload(10+i))
				return
			}
			snap, ok := s.Current()
			if assert.True(t, ok) {
				assert.Equal(t, snap.Frame.NumRows(), snap.Metrics.TotalOrders)
			}
		}(i)
	}
	wg.Wait()
}

func TestRegistrySweep(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	r := NewRegistry(time.Hour, func(key string) *Store {
		return NewStore(key, pipeline.New(nil, nil), nil, nil)
	})
	r.now = now

	a := r.Get("a")
	assert.Same(t, a, r.Get("a"))
	clock = clock.Add(45 * time.Minute)
	r.Get("b")
	assert.Equal(t, 2, r.Len())

	clock = clock.Add(30 * time.Minute)
	assert.Equal(t, []string{"a"}, r.Sweep())
	_, ok := r.Lookup("a")
	assert.False(t, ok)
	_, ok = r.Lookup("b")
	assert.True(t, ok)
}

func TestLinks(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLinks(time.Hour)
	l.now = func() time.Time { return clock }

	token := l.Issue(777)
	assert.Len(t, token, 36)
	chat, ok := l.Resolve(token)
	assert.True(t, ok)
	assert.Equal(t, int64(777), chat)

	_, ok = l.Resolve("unknown")
	assert.False(t, ok)

	clock = clock.Add(2 * time.Hour)
	_, ok = l.Resolve(token)
	assert.False(t, ok)
	assert.Equal(t, 1, l.Sweep())
}

func TestRunSweeper(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := make(chan struct{}, 10)
	done := make(chan struct{})
	go func() {
		RunSweeper(ctx, time.Millisecond, func() {
			select {
			case calls <- struct{}{}:
			default:
			}
		})
		close(done)
	}()
	<-calls
	cancel()
	<-done
}
