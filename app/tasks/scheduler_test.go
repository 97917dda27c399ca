package tasks

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lysyi3m/oscar-feed/app/config"
	"github.com/lysyi3m/oscar-feed/app/portal"
)

func newTestScheduler() *Scheduler {
	s := NewScheduler(nil, nil, time.Hour, 1)
	s.retryDelay = 10 * time.Millisecond
	return s
}

func waitForRuns(task *mockTask, want int32, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if task.runs.Load() >= want {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestSchedulerRetriesTransientFailure(t *testing.T) {
	s := newTestScheduler()
	s.Start()
	defer s.Stop()

	task := newMockTask("alice", errors.New("connection reset"), 1)
	if err := s.EnqueueTask(task); err != nil {
		t.Fatal(err)
	}

	if !waitForRuns(task, 2, 2*time.Second) {
		t.Fatalf("Expected task to be retried, ran %d times", task.runs.Load())
	}
	if task.GetRetryCount() != 1 {
		t.Errorf("Expected retry count 1, got %d", task.GetRetryCount())
	}
	if err := task.LastError(); err == nil || err.Error() != "connection reset" {
		t.Errorf("Expected last error 'connection reset', got: %v", err)
	}
}

func TestSchedulerDoesNotRetryLoginFailure(t *testing.T) {
	s := newTestScheduler()
	s.Start()
	defer s.Stop()

	task := newMockTask("alice", fmt.Errorf("failed to log in: %w", portal.ErrLoginFailed), 5)
	if err := s.EnqueueTask(task); err != nil {
		t.Fatal(err)
	}

	if !waitForRuns(task, 1, 2*time.Second) {
		t.Fatal("Expected task to run")
	}
	time.Sleep(100 * time.Millisecond)

	if runs := task.runs.Load(); runs != 1 {
		t.Errorf("Expected a single run, got %d", runs)
	}
}

func TestSchedulerGivesUpAfterMaxRetries(t *testing.T) {
	s := newTestScheduler()
	s.Start()
	defer s.Stop()

	task := newMockTask("alice", errors.New("portal down"), 100)
	if err := s.EnqueueTask(task); err != nil {
		t.Fatal(err)
	}

	want := int32(DefaultMaxRetries + 1)
	if !waitForRuns(task, want, 2*time.Second) {
		t.Fatalf("Expected %d runs, got %d", want, task.runs.Load())
	}
	time.Sleep(200 * time.Millisecond)

	if runs := task.runs.Load(); runs != want {
		t.Errorf("Expected %d runs, got %d", want, runs)
	}
}

func TestSchedulerBackoff(t *testing.T) {
	s := NewScheduler(nil, nil, time.Hour, 1)

	tests := []struct {
		retry int
		want  time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{6, 30 * time.Second},
		{40, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := s.backoff(tt.retry); got != tt.want {
			t.Errorf("backoff(%d): expected %s, got %s", tt.retry, tt.want, got)
		}
	}
}

func TestSchedulerEnqueueAfterStop(t *testing.T) {
	s := newTestScheduler()
	s.Start()
	s.Stop()

	if err := s.EnqueueUser(config.User{Name: "alice"}); err == nil {
		t.Error("Expected error after stop")
	}
}
