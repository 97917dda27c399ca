package api

import (
	"github.com/lysyi3m/oscar-feed/app/config"
	"github.com/lysyi3m/oscar-feed/app/database"
	"github.com/lysyi3m/oscar-feed/app/tasks"
)

type Handler struct {
	cfg       *config.Config
	calendars CalendarStore
	shiftRepo database.ShiftRepository
	scheduler tasks.TaskSchedulerInterface
	version   string
}

// CalendarStore resolves a user name to its calendar file
type CalendarStore interface {
	Path(name string) string
}
