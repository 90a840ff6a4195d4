package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skufu/heartform/internal/dropdown"
	"github.com/Skufu/heartform/internal/form"
	"github.com/Skufu/heartform/internal/metrics"
	"github.com/Skufu/heartform/internal/pointer"
	"github.com/Skufu/heartform/internal/predict"
)

// Session is one open form page: its request controller, a dropdown per
// enumerated field and the pointer bus those dropdowns listen on.
type Session struct {
	ID      string
	Form    *predict.Controller
	Pointer *pointer.Bus

	selects []*dropdown.Controller
	byField map[string]*dropdown.Controller

	mu       sync.Mutex
	lastSeen time.Time
}

func New(id string, waker *predict.Waker, timeout time.Duration, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	s := &Session{
		ID:       id,
		Form:     predict.NewController(waker, timeout, logger),
		Pointer:  pointer.NewBus(),
		byField:  make(map[string]*dropdown.Controller),
		lastSeen: time.Now(),
	}

	onChange := func(field, code string) {
		if err := s.Form.UpdateField(field, code); err != nil {
			logger.Printf("session %s: %v", id, err)
		}
	}
	for _, f := range form.SelectFields() {
		name := f.Name
		opts := make([]dropdown.Option, len(f.Options))
		for i, o := range f.Options {
			opts[i] = dropdown.Option{Value: o.Value, Label: o.Label}
		}
		dd := dropdown.New(name, opts, func() string { return s.Form.Field(name) }, onChange)
		dd.Mount(s.Pointer)
		s.selects = append(s.selects, dd)
		s.byField[name] = dd
	}
	return s
}

// Select returns the dropdown of an enumerated field.
func (s *Session) Select(field string) (*dropdown.Controller, bool) {
	dd, ok := s.byField[field]
	return dd, ok
}

func (s *Session) Selects() []*dropdown.Controller {
	return s.selects
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Close unmounts every dropdown and disposes the controller.
func (s *Session) Close() {
	for _, dd := range s.selects {
		dd.Unmount()
	}
	s.Form.Close()
}

// Store keeps live sessions by id and evicts idle ones.
type Store struct {
	ttl     time.Duration
	factory func(id string) *Session

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(ttl time.Duration, factory func(id string) *Session) *Store {
	return &Store{
		ttl:      ttl,
		factory:  factory,
		sessions: make(map[string]*Session),
	}
}

// Get returns a live session and marks it as used.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if ok {
		s.touch(time.Now())
	}
	return s, ok
}

func (st *Store) Create() *Session {
	s := st.factory(uuid.NewString())

	st.mu.Lock()
	st.sessions[s.ID] = s
	n := len(st.sessions)
	st.mu.Unlock()

	metrics.RecordSessions(n)
	return s
}

// Sweep disposes sessions idle for longer than the TTL and returns how many
// were removed.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	metrics.RecordSessions(n)
	return len(expired)
}

// Run sweeps on every tick until ctx is done, then disposes all sessions.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			st.Close()
			return
		case now := <-ticker.C:
			st.Sweep(now)
		}
	}
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) Close() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	metrics.RecordSessions(0)
}
