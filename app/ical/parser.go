package ical

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/lysyi3m/oscar-feed/app/shift"
)

// EndPadding is added to every feed event end so that feed shifts touch
// portal shifts that start on the following second boundary.
const EndPadding = time.Second

var (
	inlineComment = regexp.MustCompile(`<!--.*?-->`)
	contentLine   = regexp.MustCompile(`^[A-Z][A-Z0-9-]*[;:]`)
)

// Parser converts calendar feed documents into shifts.
type Parser struct {
	loc *time.Location
}

func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{loc: loc}
}

// Run parses an iCalendar document and returns one shift per timed event,
// each named label.
func (p *Parser) Run(label string, data []byte) ([]shift.Shift, error) {
	cleaned := StripComments(data)
	if len(bytes.TrimSpace(cleaned)) == 0 {
		return nil, fmt.Errorf("calendar data is empty")
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	events := cal.Events()
	shifts := make([]shift.Shift, 0, len(events))
	skipped := 0

	for _, event := range events {
		s, err := p.eventToShift(label, event)
		if err != nil {
			slog.Debug("Skipping calendar event", "feed", label, "uid", event.Id(), "error", err)
			skipped++
			continue
		}
		shifts = append(shifts, s)
	}

	slog.Debug("Parsed calendar", "feed", label, "events", len(events), "shifts", len(shifts), "skipped", skipped)
	return shifts, nil
}

func (p *Parser) eventToShift(label string, event *ics.VEvent) (shift.Shift, error) {
	begin, err := event.GetStartAt()
	if err != nil {
		return shift.Shift{}, fmt.Errorf("invalid start: %w", err)
	}

	end, err := event.GetEndAt()
	if err != nil {
		return shift.Shift{}, fmt.Errorf("invalid end: %w", err)
	}

	s := shift.Shift{
		Name:  label,
		Begin: begin.In(p.loc),
		End:   end.Add(EndPadding).In(p.loc),
	}
	if !s.Valid() {
		return shift.Shift{}, fmt.Errorf("event ends before it starts")
	}

	return s, nil
}

// StripComments removes HTML-style comment markup that some feeds embed in
// their output. Complete inline comments are removed anywhere. Block markers
// only count at the start of a line, so folded lines and property values that
// merely contain "<!--" or "-->" are left alone. An unterminated block ends at
// the next calendar content line.
func StripComments(data []byte) []byte {
	var buf strings.Builder
	inComment := false

	for _, line := range strings.SplitAfter(string(data), "\n") {
		body := strings.TrimRight(line, "\r\n")
		ending := line[len(body):]

		body = inlineComment.ReplaceAllString(body, "")

		if inComment {
			if idx := strings.Index(body, "-->"); idx >= 0 {
				inComment = false
				body = body[idx+3:]
			} else if contentLine.MatchString(body) {
				inComment = false
			} else {
				continue
			}
		} else if rest, ok := strings.CutPrefix(body, "-->"); ok {
			body = rest
		}

		if strings.HasPrefix(body, "<!--") {
			inComment = true
			continue
		}

		if strings.TrimSpace(body) == "" {
			continue
		}
		buf.WriteString(body)
		buf.WriteString(ending)
	}

	return []byte(buf.String())
}
