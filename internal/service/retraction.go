package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/glebk/relay-bot/internal/domain"
)

type timer interface {
	Stop() bool
}

type retractionKey struct {
	chatID    int64
	messageID int
}

// RetractionHandle is the owned handle of one scheduled retraction
type RetractionHandle struct {
	job       domain.RetractionJob
	scheduler *RetractionScheduler
	timer     timer
}

// Job returns the scheduled retraction
func (h *RetractionHandle) Job() domain.RetractionJob {
	return h.job
}

// Cancel withdraws the retraction. It reports false if the job already fired
// or was cancelled.
func (h *RetractionHandle) Cancel() bool {
	return h.scheduler.cancel(h)
}

// RetractionScheduler deletes delivered messages after a fixed delay. Each job
// fires at most once and a failed delete is logged, never retried.
//
// With a job log attached, jobs are persisted until they fire so Restore can
// re-arm them after a restart. Without one, pending jobs are lost on exit.
type RetractionScheduler struct {
	messenger Messenger
	delay     time.Duration
	jobLog    domain.RetractionRepository
	logger    *logrus.Logger

	now       func() time.Time
	afterFunc func(time.Duration, func()) timer

	mu      sync.Mutex
	pending map[retractionKey]*RetractionHandle
	stopped bool
}

// SchedulerOption configures a RetractionScheduler
type SchedulerOption func(*RetractionScheduler)

// WithJobLog persists pending jobs in repo
func WithJobLog(repo domain.RetractionRepository) SchedulerOption {
	return func(s *RetractionScheduler) { s.jobLog = repo }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *RetractionScheduler) { s.now = now }
}

// NewRetractionScheduler creates a scheduler; a non-positive delay falls back
// to domain.DefaultRetractionDelay.
func NewRetractionScheduler(messenger Messenger, delay time.Duration, logger *logrus.Logger, opts ...SchedulerOption) *RetractionScheduler {
	if delay <= 0 {
		delay = domain.DefaultRetractionDelay
	}

	s := &RetractionScheduler{
		messenger: messenger,
		delay:     delay,
		logger:    logger,
		now:       time.Now,
		afterFunc: func(d time.Duration, f func()) timer { return time.AfterFunc(d, f) },
		pending:   make(map[retractionKey]*RetractionHandle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delay returns the configured retraction delay
func (s *RetractionScheduler) Delay() time.Duration {
	return s.delay
}

// Schedule arranges for (chatID, messageID) to be deleted after the delay.
// Scheduling the same message twice replaces the earlier job.
func (s *RetractionScheduler) Schedule(ctx context.Context, chatID int64, messageID int) *RetractionHandle {
	job := domain.RetractionJob{
		ChatID:    chatID,
		MessageID: messageID,
		FireAt:    s.now().Add(s.delay),
	}

	if s.jobLog != nil {
		if err := s.jobLog.Save(ctx, job); err != nil {
			s.logger.WithError(err).WithFields(jobFields(job)).Warn("Failed to persist retraction; it will not survive a restart")
		}
	}

	return s.arm(job, s.delay)
}

// Restore re-arms jobs left in the job log by a previous run. Overdue jobs fire
// immediately. It returns the number of jobs restored.
func (s *RetractionScheduler) Restore(ctx context.Context) (int, error) {
	if s.jobLog == nil {
		return 0, nil
	}

	jobs, err := s.jobLog.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	for _, job := range jobs {
		wait := job.FireAt.Sub(now)
		if wait < 0 {
			wait = 0
		}
		s.arm(job, wait)
	}

	if len(jobs) > 0 {
		s.logger.WithField("count", len(jobs)).Info("Restored pending retractions")
	}
	return len(jobs), nil
}

// Pending returns the jobs that have not fired yet, soonest first
func (s *RetractionScheduler) Pending() []domain.RetractionJob {
	s.mu.Lock()
	jobs := make([]domain.RetractionJob, 0, len(s.pending))
	for _, h := range s.pending {
		jobs = append(jobs, h.job)
	}
	s.mu.Unlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].FireAt.Before(jobs[j].FireAt)
	})
	return jobs
}

// Stop disarms every in-memory timer. Persisted jobs stay in the job log.
func (s *RetractionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key, h := range s.pending {
		h.timer.Stop()
		delete(s.pending, key)
	}
}

func (s *RetractionScheduler) arm(job domain.RetractionJob, wait time.Duration) *RetractionHandle {
	key := retractionKey{chatID: job.ChatID, messageID: job.MessageID}
	h := &RetractionHandle{job: job, scheduler: s}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		h.timer = stoppedTimer{}
		return h
	}

	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
	}
	h.timer = s.afterFunc(wait, func() { s.fire(h) })
	s.pending[key] = h

	s.logger.WithFields(jobFields(job)).Debug("Retraction scheduled")
	return h
}

func (s *RetractionScheduler) fire(h *RetractionHandle) {
	key := retractionKey{chatID: h.job.ChatID, messageID: h.job.MessageID}

	s.mu.Lock()
	if s.pending[key] != h {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	ctx := context.Background()
	log := s.logger.WithFields(jobFields(h.job))

	if err := s.messenger.Delete(ctx, h.job.ChatID, h.job.MessageID); err != nil {
		log.WithError(err).Error("Failed to delete message")
	} else {
		log.Info("Message deleted")
	}

	s.forget(ctx, h.job)
}

func (s *RetractionScheduler) cancel(h *RetractionHandle) bool {
	key := retractionKey{chatID: h.job.ChatID, messageID: h.job.MessageID}

	s.mu.Lock()
	if s.pending[key] != h {
		s.mu.Unlock()
		return false
	}
	delete(s.pending, key)
	h.timer.Stop()
	s.mu.Unlock()

	s.forget(context.Background(), h.job)
	s.logger.WithFields(jobFields(h.job)).Debug("Retraction cancelled")
	return true
}

func (s *RetractionScheduler) forget(ctx context.Context, job domain.RetractionJob) {
	if s.jobLog == nil {
		return
	}
	if err := s.jobLog.Delete(ctx, job.ChatID, job.MessageID); err != nil {
		s.logger.WithError(err).WithFields(jobFields(job)).Warn("Failed to remove retraction from job log")
	}
}

func jobFields(job domain.RetractionJob) logrus.Fields {
	return logrus.Fields{
		"chat_id":    job.ChatID,
		"message_id": job.MessageID,
		"fire_at":    job.FireAt,
	}
}

type stoppedTimer struct{}

func (stoppedTimer) Stop() bool { return false }
