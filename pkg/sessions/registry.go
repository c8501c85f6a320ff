package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/arnavshah/autohours-api-go/pkg/grid"
	"github.com/arnavshah/autohours-api-go/pkg/metrics"
	"github.com/arnavshah/autohours-api-go/pkg/models"
)

var ErrSessionNotFound = errors.New("grid session not found")

// Registry holds the open grid sessions
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	log      logrus.FieldLogger
	observer grid.Observer
}

// NewRegistry returns an empty registry expiring sessions idle for ttl
func NewRegistry(ttl time.Duration, log logrus.FieldLogger, observer grid.Observer) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		log:      log,
		observer: observer,
	}
}

// Open mounts a new engine over rows and registers it
func (r *Registry) Open(owner string, scope models.Scope, rows []models.AutoHoursRow, weeks []string) *Session {
	id := uuid.NewString()
	store := grid.NewRowStore(rows)
	engine := grid.New(store, store.Keys(), weeks,
		grid.WithLogger(r.log.WithField("session", id)),
		grid.WithObserver(r.observer),
	)

	s := &Session{
		ID:       id,
		Owner:    owner,
		Scope:    scope,
		Weeks:    weeks,
		store:    store,
		engine:   engine,
		release:  engine.Mount(),
		lastSeen: r.now(),
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	metrics.SessionOpened()
	r.log.WithFields(logrus.Fields{
		"session": id,
		"owner":   owner,
		"scope":   scope.Kind,
		"rows":    len(rows),
		"weeks":   len(weeks),
	}).Info("grid session opened")
	return s
}

// Get returns a session and marks it as used
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.Wrap(ErrSessionNotFound, id)
	}
	s.lastSeen = r.now()
	return s, nil
}

// Close unmounts a session and forgets it
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return errors.Wrap(ErrSessionNotFound, id)
	}
	s.close()
	metrics.SessionClosed()
	r.log.WithField("session", id).Info("grid session closed")
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many it closed
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var idle []string
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			idle = append(idle, id)
		}
	}
	r.mu.Unlock()

	closed := 0
	for _, id := range idle {
		if r.Close(id) == nil {
			closed++
		}
	}
	return closed
}

// Run sweeps idle sessions every interval until ctx is done, then closes the rest
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.log.WithField("closed", n).Info("expired idle grid sessions")
			}
		}
	}
}

// CloseAll unmounts and forgets every open session
func (r *Registry) CloseAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		_ = r.Close(id)
	}
}
