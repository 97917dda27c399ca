package database

import (
	"time"

	"github.com/lysyi3m/oscar-feed/app/shift"
)

type ShiftRepository interface {
	ArchiveShifts(userName string, shifts []shift.Shift) (int, error)
	GetArchivedShifts(userName string, since time.Time, loc *time.Location) ([]shift.Shift, error)
	GetShiftCount(userName string) (int, error)
	PruneShifts(userName string, before time.Time) (int, error)
}
