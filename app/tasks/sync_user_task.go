package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/oscar-feed/app/config"
)

type SyncUserTask struct {
	Task
	User   config.User
	syncer *Syncer
}

func NewSyncUserTask(user config.User, syncer *Syncer) *SyncUserTask {
	return &SyncUserTask{
		Task:   NewTask(TaskTypeSyncUser, user.Name),
		User:   user,
		syncer: syncer,
	}
}

func (t *SyncUserTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	events, err := t.syncer.Sync(ctx, t.User)
	if err != nil {
		return fmt.Errorf("failed to sync user %s: %w", t.UserName, err)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"user", t.UserName,
		"events", events,
		"duration", t.GetDuration())

	return nil
}
