package tasks

import "github.com/lysyi3m/oscar-feed/app/config"

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the serve mode entrypoint and the HTTP API.
//
//	scheduler := NewScheduler(syncer, users, interval, workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueUser(user)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueUser(user config.User) error
}
