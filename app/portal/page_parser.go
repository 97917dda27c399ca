package portal

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/lysyi3m/oscar-feed/app/config"
	"github.com/lysyi3m/oscar-feed/app/shift"
)

// PageParser extracts the user's own shifts from a portal shift page.
type PageParser struct {
	shiftName  string
	dateLayout string
	marker     string
	loc        *time.Location
}

func NewPageParser(shiftName, dateLayout, marker string, loc *time.Location) *PageParser {
	if loc == nil {
		loc = time.UTC
	}
	return &PageParser{
		shiftName:  shiftName,
		dateLayout: cmp.Or(dateLayout, shift.DefaultDateLayout),
		marker:     cmp.Or(marker, config.DefaultOwnShiftMarker),
		loc:        loc,
	}
}

// Run walks the rows of the first table body. A row with a non-empty header
// cell sets the date for itself and every following row without one.
func (p *PageParser) Run(r io.Reader) ([]shift.Shift, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	body := doc.Find("table tbody").First()
	if body.Length() == 0 {
		slog.Debug("No shift table found on page")
		return nil, nil
	}

	var (
		shifts  []shift.Shift
		date    time.Time
		hasDate bool
	)

	body.Find("tr").Each(func(i int, row *goquery.Selection) {
		if text := strings.TrimSpace(row.Find("th").First().Text()); text != "" {
			d, err := shift.ParseDate(text, p.dateLayout, p.loc)
			if err != nil {
				slog.Warn("Skipping row with unparsable date", "row", i, "error", err)
				hasDate = false
				return
			}
			date = d
			hasDate = true
		}

		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		if cells.Slice(1, goquery.ToEnd).Find(p.marker).Length() == 0 {
			return
		}
		if !hasDate {
			slog.Warn("Skipping own shift without a date", "row", i)
			return
		}

		begin, end, err := shift.ParseSpan(date, cells.First().Text())
		if err != nil {
			slog.Warn("Skipping row with unparsable time span", "row", i, "error", err)
			return
		}

		shifts = append(shifts, shift.Shift{Name: p.shiftName, Begin: begin, End: end})
	})

	return shifts, nil
}
