package database

import (
	"time"

	"github.com/lysyi3m/oscar-feed/app/shift"
)

// ArchivedShift represents an archived_shifts row
type ArchivedShift struct {
	UserName   string
	Name       string
	BeginAt    time.Time
	EndAt      time.Time
	ArchivedAt time.Time
}

func (a ArchivedShift) Shift(loc *time.Location) shift.Shift {
	return shift.Shift{
		Name:  a.Name,
		Begin: a.BeginAt.In(loc),
		End:   a.EndAt.In(loc),
	}
}
