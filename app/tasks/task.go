package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lysyi3m/oscar-feed/app/portal"
)

type TaskType string

const (
	TaskTypeSyncUser TaskType = "sync_user"
)

// DefaultMaxRetries bounds how often one failed user sync is queued again.
const DefaultMaxRetries = 3

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetUserName() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	RecordFailure(err error)
	LastError() error
	Start()
	GetDuration() time.Duration
}

// Task carries the bookkeeping shared by every queued user job. A task keeps
// its id across retries so log lines of all attempts can be correlated.
type Task struct {
	ID         string
	Type       TaskType
	UserName   string
	RetryCount int
	MaxRetries int

	startedAt time.Time
	lastErr   error
}

func NewTask(taskType TaskType, userName string) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		UserName:   userName,
		MaxRetries: DefaultMaxRetries,
	}
}

func (t *Task) GetID() string         { return t.ID }
func (t *Task) GetType() TaskType     { return t.Type }
func (t *Task) GetUserName() string   { return t.UserName }
func (t *Task) GetRetryCount() int    { return t.RetryCount }
func (t *Task) GetMaxRetries() int    { return t.MaxRetries }
func (t *Task) IncrementRetryCount()  { t.RetryCount++ }
func (t *Task) CanRetry() bool        { return t.RetryCount < t.MaxRetries }
func (t *Task) RecordFailure(e error) { t.lastErr = e }
func (t *Task) LastError() error      { return t.lastErr }

// Start stamps the beginning of the current attempt.
func (t *Task) Start() {
	t.startedAt = time.Now()
}

// GetDuration is the time spent in the current attempt, zero before Start.
func (t *Task) GetDuration() time.Duration {
	if t.startedAt.IsZero() {
		return 0
	}
	return time.Since(t.startedAt)
}

// IsRetryable reports whether a failed task may succeed when run again.
// Rejected credentials and cancellation never do.
func IsRetryable(err error) bool {
	return err != nil &&
		!errors.Is(err, portal.ErrLoginFailed) &&
		!errors.Is(err, context.Canceled)
}
