package portal

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lysyi3m/oscar-feed/app/shift"
)

const samplePage = `<html><body>
<table>
<thead><tr><th>Date</th><th>Time</th><th>Team</th></tr></thead>
<tbody>
<tr><th>10/01/24</th><td>23:00 - 00:30</td><td><span class="own-shift">Me</span></td></tr>
<tr><th></th><td>08:00 - 12:00</td><td><span class="shift">Someone</span></td></tr>
<tr><th></th><td>12:00 - 14:00</td><td><span class="own-shift">Me</span></td></tr>
<tr><th>11/01/24</th><td>to be announced</td><td><span class="own-shift">Me</span></td></tr>
<tr><th></th><td>18:00 - 22:00</td><td>-</td><td><span class="own-shift">Me</span></td></tr>
<tr><th>31/02/24</th><td>08:00 - 10:00</td><td><span class="own-shift">Me</span></td></tr>
<tr><th></th><td>10:00 - 12:00</td><td><span class="own-shift">Me</span></td></tr>
<tr><th>12/01/24</th><td><span class="own-shift">07:00 - 09:00</span></td><td>-</td></tr>
</tbody>
</table>
</body></html>`

func TestPageParserRun(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	parser := NewPageParser("Permanence", "", "", loc)

	shifts, err := parser.Run(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []shift.Shift{
		{Name: "Permanence", Begin: time.Date(2024, 1, 10, 23, 0, 0, 0, loc), End: time.Date(2024, 1, 11, 0, 30, 0, 0, loc)},
		{Name: "Permanence", Begin: time.Date(2024, 1, 10, 12, 0, 0, 0, loc), End: time.Date(2024, 1, 10, 14, 0, 0, 0, loc)},
		{Name: "Permanence", Begin: time.Date(2024, 1, 11, 18, 0, 0, 0, loc), End: time.Date(2024, 1, 11, 22, 0, 0, 0, loc)},
	}

	if diff := cmp.Diff(want, shifts); diff != "" {
		t.Errorf("Shifts mismatch (-want +got):\n%s", diff)
	}
}

func TestPageParserCustomMarker(t *testing.T) {
	page := `<table><tbody>
<tr><th>10/01/2024</th><td>08:00 - 10:00</td><td><b class="mine">Me</b></td></tr>
<tr><th></th><td>10:00 - 12:00</td><td><span class="own-shift">Me</span></td></tr>
</tbody></table>`

	parser := NewPageParser("Duty", "02/01/2006", "b.mine", time.UTC)

	shifts, err := parser.Run(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	if len(shifts) != 1 {
		t.Fatalf("Expected 1 shift, got %d", len(shifts))
	}
	if shifts[0].Name != "Duty" || shifts[0].Begin.Hour() != 8 {
		t.Errorf("Unexpected shift %s", shifts[0])
	}
}

func TestPageParserWithoutTable(t *testing.T) {
	parser := NewPageParser("Permanence", "", "", time.UTC)

	shifts, err := parser.Run(strings.NewReader("<html><body><p>No shifts</p></body></html>"))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(shifts) != 0 {
		t.Errorf("Expected no shifts, got %d", len(shifts))
	}
}

func TestPageParserOwnShiftBeforeDate(t *testing.T) {
	page := `<table><tbody>
<tr><th></th><td>08:00 - 10:00</td><td><span class="own-shift">Me</span></td></tr>
<tr><th>10/01/24</th><td>10:00 - 12:00</td><td><span class="own-shift">Me</span></td></tr>
</tbody></table>`

	shifts, err := NewPageParser("Permanence", "", "", time.UTC).Run(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	if len(shifts) != 1 {
		t.Fatalf("Expected 1 shift, got %d", len(shifts))
	}
	if shifts[0].Begin.Hour() != 10 {
		t.Errorf("Expected the dated row to be kept, got %s", shifts[0])
	}
}
