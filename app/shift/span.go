package shift

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DefaultDateLayout = "02/01/06"

var spanPattern = regexp.MustCompile(`(\d{2}):(\d{2}) - (\d{2}):(\d{2})`)

// ParseDate reads a row header date at midnight in loc.
func ParseDate(text, layout string, loc *time.Location) (time.Time, error) {
	text = strings.TrimSpace(text)
	if layout == "" {
		layout = DefaultDateLayout
	}

	date, err := time.ParseInLocation(layout, text, loc)
	if err != nil {
		return time.Time{}, &ParseError{Text: text, Reason: "date does not match layout " + layout}
	}

	return date, nil
}

// ParseSpan combines a "HH:MM - HH:MM" label with the calendar day of date.
// An end hour of 00 puts the end on the following day; so does any other end
// that would otherwise not come after the begin.
func ParseSpan(date time.Time, text string) (time.Time, time.Time, error) {
	match := spanPattern.FindStringSubmatch(text)
	if match == nil {
		return time.Time{}, time.Time{}, &ParseError{Text: text, Reason: "no HH:MM - HH:MM time span found"}
	}

	fields := make([]int, 4)
	for i := range fields {
		// the pattern guarantees two digits
		fields[i], _ = strconv.Atoi(match[i+1])
	}
	beginH, beginM, endH, endM := fields[0], fields[1], fields[2], fields[3]

	if beginH > 23 || endH > 23 || beginM > 59 || endM > 59 {
		return time.Time{}, time.Time{}, &ParseError{Text: text, Reason: "hour or minute out of range"}
	}

	year, month, day := date.Date()
	loc := date.Location()

	begin := time.Date(year, month, day, beginH, beginM, 0, 0, loc)

	endDay := day
	if endH == 0 {
		endDay++
	}
	end := time.Date(year, month, endDay, endH, endM, 0, 0, loc)
	if !end.After(begin) {
		end = time.Date(year, month, endDay+1, endH, endM, 0, 0, loc)
	}

	return begin, end, nil
}
