package ical

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/lysyi3m/oscar-feed/app/shift"
)

// uidNamespace scopes event UIDs so they stay stable across runs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/lysyi3m/oscar-feed"))

type Generator struct {
	version string
	now     func() time.Time
}

func NewGenerator(version string) *Generator {
	return &Generator{
		version: version,
		now:     time.Now,
	}
}

// Run renders shifts as an iCalendar document with one event per shift.
func (g *Generator) Run(calendarName string, shifts []shift.Shift) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(fmt.Sprintf("-//oscar-feed//%s//EN", g.version))
	cal.SetXWRCalName(calendarName)

	stamp := g.now().UTC()

	for _, s := range shifts {
		if s.IsZero() {
			continue
		}
		if !s.Valid() {
			return "", fmt.Errorf("invalid shift %s", s)
		}

		event := cal.AddEvent(g.eventID(calendarName, s))
		event.SetSummary(s.Name)
		event.SetStartAt(s.Begin)
		event.SetEndAt(s.End)
		event.SetDtStampTime(stamp)
	}

	return cal.Serialize(), nil
}

func (g *Generator) eventID(calendarName string, s shift.Shift) string {
	key := fmt.Sprintf("%s|%s|%d|%d", calendarName, s.Name, s.Begin.Unix(), s.End.Unix())
	return uuid.NewSHA1(uidNamespace, []byte(key)).String()
}
