package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/example/wordbot/internal/logging"
	"github.com/example/wordbot/internal/metrics"
	"github.com/example/wordbot/pkg/models"
)

// DefaultCallTimeout bounds every collaborator call made by a Session.
const DefaultCallTimeout = 10 * time.Second

// Collaborator owns storage and the scheduling formula.
type Collaborator interface {
	Rater
	LoadDueItems(ctx context.Context) ([]models.ReviewItem, error)
	GenerateNewItems(ctx context.Context, limit int) (int, error)
	DashboardStats(ctx context.Context) (models.DashboardStats, error)
}

// LimitSource supplies the number of new words a session start may introduce.
type LimitSource interface {
	DailyLimit(ctx context.Context) int
}

// Options tune a Session.
type Options struct {
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Session is the review surface used by the presentation layer.
type Session struct {
	collab  Collaborator
	limits  LimitSource
	queue   *Queue
	tracker *Tracker
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics

	// mu orders StartSession calls; the latest token wins.
	mu    sync.Mutex
	token uuid.UUID
	id    atomic.Value // string

	loaded     atomic.Bool
	loadFailed atomic.Bool
}

// NewSession wires a session to its collaborator and settings.
func NewSession(collab Collaborator, limits LimitSource, opts Options) *Session {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	s := &Session{
		collab:  collab,
		limits:  limits,
		queue:   NewQueue(collab),
		tracker: &Tracker{},
		timeout: timeout,
		logger:  logging.Component(opts.Logger, "review"),
		metrics: opts.Metrics,
	}
	s.id.Store("")
	s.queue.Subscribe(func(items []models.ReviewItem) {
		s.metrics.SetQueueLength(len(items))
	})
	return s
}

// ID identifies the currently loaded session, empty before the first load.
func (s *Session) ID() string {
	return s.id.Load().(string)
}

// StartSession introduces up to the daily limit of new words, then loads
// every due item into the queue and resets progress.
//
// On failure the previous queue is kept and a *LoadError is returned. If a
// newer StartSession began while this one was waiting on the collaborator,
// the result is dropped and ErrSuperseded is returned.
func (s *Session) StartSession(ctx context.Context) error {
	token := uuid.New()
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	limit := s.limits.DailyLimit(ctx)
	logger := s.logger.With(slog.String("request", token.String()))

	created, err := s.generate(ctx, limit)
	if err != nil {
		return s.failLoad(token, &LoadError{Op: "generate new items", Err: err})
	}

	items, err := s.loadDue(ctx)
	if err != nil {
		return s.failLoad(token, &LoadError{Op: "load due items", Err: err})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		logger.Debug("dropping superseded session load", slog.Int("items", len(items)))
		s.metrics.RecordSessionLoad("superseded")
		return ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		s.metrics.RecordSessionLoad("cancelled")
		return &LoadError{Op: "load due items", Err: err}
	}

	s.queue.Load(items)
	s.tracker.Reset()
	s.tracker.OnSessionStart(s.queue.Len())
	s.id.Store(token.String())
	s.loadFailed.Store(false)
	s.loaded.Store(true)

	s.metrics.RecordSessionLoad("ok")
	logger.Info("review session started",
		slog.Int("new_items", created),
		slog.Int("due_items", s.queue.Len()),
		slog.Int("daily_limit", limit),
	)
	return nil
}

func (s *Session) generate(ctx context.Context, limit int) (int, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	created, err := s.collab.GenerateNewItems(callCtx, limit)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrScheduleUnavailable, err)
	}
	return created, nil
}

func (s *Session) loadDue(ctx context.Context) ([]models.ReviewItem, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	items, err := s.collab.LoadDueItems(callCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScheduleUnavailable, err)
	}
	return items, nil
}

func (s *Session) failLoad(token uuid.UUID, err *LoadError) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		s.metrics.RecordSessionLoad("superseded")
		return ErrSuperseded
	}
	s.loadFailed.Store(true)
	s.metrics.RecordSessionLoad("error")
	s.logger.Error("review session failed to start", slog.String("op", err.Op), slog.Any("error", err.Err))
	return err
}

// SubmitRating applies a rating to a queued item.
//
// A submission for an item that already left the queue returns OutcomeStale
// and no error. ErrScheduleUnavailable (also on timeout) leaves the item in
// place for a retry.
func (s *Session) SubmitRating(ctx context.Context, itemID int64, rating models.Rating) (Outcome, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome, err := s.queue.ApplyRating(callCtx, itemID, rating)
	switch {
	case errors.Is(err, ErrStaleSubmission):
		s.metrics.RecordStale()
		s.logger.Debug("ignoring stale rating", slog.Int64("item", itemID), slog.String("rating", rating.String()))
		return OutcomeStale, nil
	case errors.Is(err, ErrScheduleUnavailable):
		s.metrics.RecordScheduleFailure()
		s.logger.Warn("rating not applied", slog.Int64("item", itemID), slog.Any("error", err))
		return 0, err
	case err != nil:
		return 0, err
	}

	s.tracker.OnOutcome(rating)
	s.metrics.RecordRating(rating.String(), outcome.String())
	if s.SessionComplete() {
		completed, _ := s.tracker.Progress()
		s.metrics.RecordSessionCompleted()
		s.logger.Info("review session complete", slog.String("session", s.ID()), slog.Int("completed", completed))
	}
	return outcome, nil
}

// CurrentHead returns the item to show next.
func (s *Session) CurrentHead() (models.ReviewItem, bool) {
	return s.queue.PeekHead()
}

// Progress returns the completed count and the session total.
func (s *Session) Progress() (completed, total int) {
	return s.tracker.Progress()
}

// SessionComplete reports whether a loaded session has an empty queue.
func (s *Session) SessionComplete() bool {
	return s.loaded.Load() && s.queue.Len() == 0
}

// LoadFailed reports whether the latest StartSession failed, which callers
// should show differently from "nothing due".
func (s *Session) LoadFailed() bool {
	return s.loadFailed.Load()
}

// Remaining returns how many items are still queued.
func (s *Session) Remaining() int {
	return s.queue.Len()
}

// Items returns a copy of the queue.
func (s *Session) Items() []models.ReviewItem {
	return s.queue.Items()
}

// Subscribe forwards queue changes to fn.
func (s *Session) Subscribe(fn func([]models.ReviewItem)) func() {
	return s.queue.Subscribe(fn)
}

// Stats passes through the collaborator's dashboard counts.
func (s *Session) Stats(ctx context.Context) (models.DashboardStats, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	stats, err := s.collab.DashboardStats(callCtx)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("%w: %w", ErrScheduleUnavailable, err)
	}
	return stats, nil
}
