package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/glebk/relay-bot/internal/domain"
	"github.com/glebk/relay-bot/internal/logging"
)

// memoryRecipients is an in-memory domain.RecipientRepository
type memoryRecipients struct {
	mu   sync.Mutex
	rows []*domain.Recipient

	getAllErr error
	writeErr  error

	getAllCalls int
	mutations   int
}

func newMemoryRecipients(rows ...*domain.Recipient) *memoryRecipients {
	return &memoryRecipients{rows: rows}
}

func (m *memoryRecipients) GetAll(ctx context.Context) ([]*domain.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getAllCalls++
	if m.getAllErr != nil {
		return nil, m.getAllErr
	}
	out := make([]*domain.Recipient, len(m.rows))
	for i, r := range m.rows {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}

func (m *memoryRecipients) Create(ctx context.Context, recipient *domain.Recipient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	for _, r := range m.rows {
		if r.UserID == recipient.UserID {
			return errors.New("duplicate user_id")
		}
	}
	cp := *recipient
	m.rows = append(m.rows, &cp)
	m.mutations++
	return nil
}

func (m *memoryRecipients) UpdateStatus(ctx context.Context, userID int64, status bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	for _, r := range m.rows {
		if r.UserID == userID {
			r.Status = status
		}
	}
	m.mutations++
	return nil
}

func (m *memoryRecipients) Delete(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	m.mutations++
	return nil
}

func (m *memoryRecipients) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// memoryJobLog is an in-memory domain.RetractionRepository
type memoryJobLog struct {
	mu   sync.Mutex
	jobs map[retractionKey]domain.RetractionJob
}

func newMemoryJobLog(jobs ...domain.RetractionJob) *memoryJobLog {
	l := &memoryJobLog{jobs: make(map[retractionKey]domain.RetractionJob)}
	for _, j := range jobs {
		l.jobs[retractionKey{j.ChatID, j.MessageID}] = j
	}
	return l
}

func (l *memoryJobLog) Save(ctx context.Context, job domain.RetractionJob) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jobs[retractionKey{job.ChatID, job.MessageID}] = job
	return nil
}

func (l *memoryJobLog) Delete(ctx context.Context, chatID int64, messageID int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.jobs, retractionKey{chatID, messageID})
	return nil
}

func (l *memoryJobLog) GetAll(ctx context.Context) ([]domain.RetractionJob, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.RetractionJob, 0, len(l.jobs))
	for _, j := range l.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (l *memoryJobLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.jobs)
}

// Mock messenger
type mockMessenger struct {
	mock.Mock
}

func (m *mockMessenger) Send(ctx context.Context, chatID int64, text string) (int, error) {
	args := m.Called(ctx, chatID, text)
	return args.Int(0), args.Error(1)
}

func (m *mockMessenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

// fakeTimers captures scheduled callbacks so tests fire them by hand
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	wait    time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (f *fakeTimers) afterFunc(d time.Duration, fn func()) timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{wait: d, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// fireAll runs every timer that has not been stopped
func (f *fakeTimers) fireAll() {
	f.mu.Lock()
	timers := append([]*fakeTimer(nil), f.timers...)
	f.mu.Unlock()
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestScheduler(messenger Messenger, opts ...SchedulerOption) (*RetractionScheduler, *fakeTimers) {
	timers := &fakeTimers{}
	opts = append([]SchedulerOption{WithClock(func() time.Time { return testNow })}, opts...)
	s := NewRetractionScheduler(messenger, 0, logging.Discard(), opts...)
	s.afterFunc = timers.afterFunc
	return s, timers
}

const (
	adminA int64 = 6119547076
	adminB int64 = 7127199179
)

type testRelay struct {
	svc       *RelayService
	repo      *memoryRecipients
	messenger *mockMessenger
	scheduler *RetractionScheduler
	timers    *fakeTimers
}

func newTestRelay(rows ...*domain.Recipient) *testRelay {
	repo := newMemoryRecipients(rows...)
	messenger := &mockMessenger{}
	scheduler, timers := newTestScheduler(messenger)
	logger := logging.Discard()
	svc := NewRelayService(
		NewAccessPolicy([]int64{adminA, adminB}),
		NewRegistry(repo, logger),
		messenger,
		scheduler,
		logger,
	)
	return &testRelay{svc: svc, repo: repo, messenger: messenger, scheduler: scheduler, timers: timers}
}
