package session

import (
	"context"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"
)

// Registry keeps one Store per user and forgets idle ones.
type Registry struct {
	mu      sync.Mutex
	stores  map[string]*Store
	ttl     time.Duration
	factory func(key string) *Store
	now     func() time.Time
}

func NewRegistry(ttl time.Duration, factory func(key string) *Store) *Registry {
	return &Registry{
		stores:  map[string]*Store{},
		ttl:     ttl,
		factory: factory,
		now:     time.Now,
	}
}

// Get returns the store for key, creating it on first use.
func (r *Registry) Get(key string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[key]
	if !ok {
		s = r.factory(key)
		s.now = r.now
		r.stores[key] = s
	}
	s.touch()
	return s
}

func (r *Registry) Lookup(key string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[key]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep drops stores idle for longer than the ttl and returns their keys.
func (r *Registry) Sweep() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	deadline := r.now().Add(-r.ttl)
	var removed []string
	for key, s := range r.stores {
		if s.LastUsed().Before(deadline) {
			delete(r.stores, key)
			removed = append(removed, key)
		}
	}
	return removed
}

type link struct {
	chatID int64
	issued time.Time
}

// Links maps one-off web upload tokens to the chat that asked for them.
type Links struct {
	mu     sync.Mutex
	tokens map[string]link
	ttl    time.Duration
	now    func() time.Time
}

func NewLinks(ttl time.Duration) *Links {
	return &Links{tokens: map[string]link{}, ttl: ttl, now: time.Now}
}

func (l *Links) Issue(chatID int64) string {
	token := uuid.NewV4().String()
	l.mu.Lock()
	l.tokens[token] = link{chatID: chatID, issued: l.now()}
	l.mu.Unlock()
	return token
}

func (l *Links) Resolve(token string) (int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk, ok := l.tokens[token]
	if !ok || l.now().After(lk.issued.Add(l.ttl)) {
		return 0, false
	}
	return lk.chatID, true
}

func (l *Links) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for token, lk := range l.tokens {
		if l.now().After(lk.issued.Add(l.ttl)) {
			delete(l.tokens, token)
			n++
		}
	}
	return n
}

// RunSweeper calls sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, interval time.Duration, sweep func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
