// Package session keeps per-user response sets in memory until a report is
// generated or the session sits idle past its TTL.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Circularity/internal/metrics"
	"github.com/MikeSquared-Agency/Circularity/internal/scoring"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrCapacity = errors.New("too many active sessions")
)

// Session is a snapshot of one user's answers.
type Session struct {
	ID        uuid.UUID         `json:"session_id"`
	Responses scoring.Responses `json:"responses"`
	Progress  scoring.Progress  `json:"progress"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type entry struct {
	responses scoring.Responses
	createdAt time.Time
	updatedAt time.Time
}

type Options struct {
	TTL           time.Duration
	SweepInterval time.Duration
	MaxSessions   int
}

type Manager struct {
	scorer  *scoring.Scorer
	opts    Options
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*entry

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewManager(s *scoring.Scorer, opts Options, m *metrics.Metrics, logger *slog.Logger) *Manager {
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	return &Manager{
		scorer:   s,
		opts:     opts,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*entry),
		stopCh:   make(chan struct{}),
	}
}

func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.sweepLoop(ctx)
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

func (m *Manager) sweepLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Info("expired idle sessions", "count", n)
			}
		}
	}
}

// Sweep evicts sessions idle past the TTL and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var n int
	for id, e := range m.sessions {
		if m.expired(e, now) {
			delete(m.sessions, id)
			n++
		}
	}
	m.metrics.SessionsExpired(n)
	m.metrics.SetSessionsActive(len(m.sessions))
	return n
}

func (m *Manager) expired(e *entry, now time.Time) bool {
	return m.opts.TTL > 0 && now.Sub(e.updatedAt) > m.opts.TTL
}

// Create opens an empty session.
func (m *Manager) Create() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.opts.MaxSessions > 0 && len(m.sessions) >= m.opts.MaxSessions {
		return Session{}, ErrCapacity
	}
	now := m.now()
	id := uuid.New()
	e := &entry{responses: make(scoring.Responses), createdAt: now, updatedAt: now}
	m.sessions[id] = e
	m.metrics.SetSessionsActive(len(m.sessions))
	return m.snapshot(id, e), nil
}

// Get returns the current state of a session.
func (m *Manager) Get(id uuid.UUID) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookup(id)
	if err != nil {
		return Session{}, err
	}
	return m.snapshot(id, e), nil
}

// Submit records a rating in a session.
func (m *Manager) Submit(id uuid.UUID, factor string, rating int) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookup(id)
	if err != nil {
		return Session{}, err
	}
	if err := e.responses.Submit(m.scorer.Catalog(), factor, rating); err != nil {
		return Session{}, err
	}
	e.updatedAt = m.now()
	return m.snapshot(id, e), nil
}

// Clear marks a factor unanswered in a session.
func (m *Manager) Clear(id uuid.UUID, factor string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookup(id)
	if err != nil {
		return Session{}, err
	}
	if err := e.responses.Clear(m.scorer.Catalog(), factor); err != nil {
		return Session{}, err
	}
	e.updatedAt = m.now()
	return m.snapshot(id, e), nil
}

// Report computes the session's report and discards the session. A session
// whose report fails is kept so the user can keep answering.
func (m *Manager) Report(id uuid.UUID) (*scoring.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	report, err := m.scorer.ComputeReport(e.responses)
	if err != nil {
		return nil, err
	}
	delete(m.sessions, id)
	m.metrics.SetSessionsActive(len(m.sessions))
	return report, nil
}

// Delete discards a session without computing a report.
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.lookup(id); err != nil {
		return err
	}
	delete(m.sessions, id)
	m.metrics.SetSessionsActive(len(m.sessions))
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// lookup must be called with mu held. Expired sessions are evicted on access.
func (m *Manager) lookup(id uuid.UUID) (*entry, error) {
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.expired(e, m.now()) {
		delete(m.sessions, id)
		m.metrics.SessionsExpired(1)
		m.metrics.SetSessionsActive(len(m.sessions))
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *Manager) snapshot(id uuid.UUID, e *entry) Session {
	return Session{
		ID:        id,
		Responses: e.responses.Clone(),
		Progress:  scoring.ProgressOf(m.scorer.Catalog(), e.responses),
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}
}
