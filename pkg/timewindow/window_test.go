package timewindow

import (
	"testing"
	"time"
)

func TestMatchesMarchScenario(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	c := Classifier{}

	cases := map[Window]bool{
		None:      true,
		All:       true,
		ThisMonth: true,
		ThisYear:  true,
		Last28d:   true,
		Last7d:    false,
		Last24h:   false,
		ThisWeek:  false,
	}
	for w, want := range cases {
		if got := c.Matches(created, w, now); got != want {
			t.Fatalf("%s: expected %v, got %v", w, want, got)
		}
	}
}

func TestRollingWindowsAreInclusive(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	c := Classifier{}

	if !c.Matches(now.Add(-24*time.Hour), Last24h, now) {
		t.Fatalf("exactly 24h should match last24h")
	}
	if c.Matches(now.Add(-24*time.Hour-time.Millisecond), Last24h, now) {
		t.Fatalf("24h and a millisecond should not match last24h")
	}
	if !c.Matches(now.Add(-7*24*time.Hour), Last7d, now) {
		t.Fatalf("exactly 7d should match last7d")
	}
	if c.Matches(now.Add(-30*24*time.Hour), Last28d, now) {
		t.Fatalf("30 days should not match last28d")
	}
}

func TestThisWeekHonoursWeekStart(t *testing.T) {
	// Wednesday.
	now := time.Date(2024, time.May, 15, 9, 30, 0, 0, time.UTC)
	sunday := time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC)

	sun := Classifier{WeekStart: time.Sunday}
	if got := sun.Start(ThisWeek, now); !got.Equal(sunday) {
		t.Fatalf("sunday start: got %v", got)
	}
	if !sun.Matches(sunday, ThisWeek, now) {
		t.Fatalf("sunday midnight should be inside a sunday-start week")
	}

	mon := Classifier{WeekStart: time.Monday}
	if got := mon.Start(ThisWeek, now); !got.Equal(monday) {
		t.Fatalf("monday start: got %v", got)
	}
	if mon.Matches(sunday, ThisWeek, now) {
		t.Fatalf("sunday should be outside a monday-start week")
	}
}

func TestThisWeekOnWeekStartDay(t *testing.T) {
	now := time.Date(2024, time.May, 12, 18, 0, 0, 0, time.UTC) // Sunday
	c := Classifier{}
	want := time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC)
	if got := c.Start(ThisWeek, now); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLocationMovesMidnight(t *testing.T) {
	tz := time.FixedZone("UTC+10", 10*60*60)
	// 2024-04-01 05:00 in UTC+10 is still March 31st in UTC.
	now := time.Date(2024, time.March, 31, 19, 0, 0, 0, time.UTC)
	created := time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC)

	if !(Classifier{}).Matches(created, ThisMonth, now) {
		t.Fatalf("UTC: created should be in March")
	}
	if (Classifier{Location: tz}).Matches(created, ThisMonth, now) {
		t.Fatalf("UTC+10: April has started, created should be excluded")
	}
}

func TestMissingTimestampOnlyMatchesUnconstrained(t *testing.T) {
	now := time.Now()
	c := Classifier{}
	for _, w := range Windows() {
		want := w == None || w == All
		if got := c.Matches(time.Time{}, w, now); got != want {
			t.Fatalf("%s: expected %v, got %v", w, want, got)
		}
	}
}

func TestParse(t *testing.T) {
	cases := map[string]Window{
		"":          None,
		"7d":        Last7d,
		"LAST28D":   Last28d,
		"thisWeek":  ThisWeek,
		" month ":   ThisMonth,
		"all":       All,
		"fortnight": None,
	}
	for raw, want := range cases {
		if got, _ := Parse(raw); got != want {
			t.Fatalf("%q: expected %s, got %s", raw, want, got)
		}
	}
	if _, ok := Parse("fortnight"); ok {
		t.Fatalf("unknown window should report false")
	}
}

func TestNextCycles(t *testing.T) {
	seen := map[Window]bool{}
	w := None
	for range Windows() {
		seen[w] = true
		w = w.Next()
	}
	if w != None {
		t.Fatalf("expected cycle back to none, got %s", w)
	}
	if len(seen) != len(Windows()) {
		t.Fatalf("expected to visit every window, saw %d", len(seen))
	}
}

func TestParseWeekday(t *testing.T) {
	if d, err := ParseWeekday("Mon"); err != nil || d != time.Monday {
		t.Fatalf("expected monday, got %v (%v)", d, err)
	}
	if _, err := ParseWeekday("someday"); err == nil {
		t.Fatalf("expected error")
	}
}
