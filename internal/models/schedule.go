package models

import (
	"fmt"
	"time"
)

// Parity says whether an academic week is odd or even under the
// alternating-week timetable convention.
type Parity string

const (
	ParityOdd  Parity = "odd"
	ParityEven Parity = "even"
)

// WeekApplicability marks which weeks a timetable entry applies to.
type WeekApplicability string

const (
	WeekEvery WeekApplicability = "every"
	WeekOdd   WeekApplicability = "odd"
	WeekEven  WeekApplicability = "even"
)

// Matches reports whether an entry with this applicability is held on a week
// of the given parity.
func (w WeekApplicability) Matches(p Parity) bool {
	switch w {
	case WeekEvery:
		return true
	case WeekOdd:
		return p == ParityOdd
	case WeekEven:
		return p == ParityEven
	}
	return false
}

// TimetableEntry is one lesson slot. Start and End are minutes since
// midnight; the interval is half-open, [Start, End).
type TimetableEntry struct {
	Day     time.Weekday      `bson:"day" json:"day"`
	Start   int               `bson:"start" json:"start"`
	End     int               `bson:"end" json:"end"`
	Subject string            `bson:"subject" json:"subject"`
	Weeks   WeekApplicability `bson:"weeks" json:"weeks"`
	Room    string            `bson:"room,omitempty" json:"room,omitempty"`
	Teacher string            `bson:"teacher,omitempty" json:"teacher,omitempty"`
}

// TimeRange renders the slot as "08:00-09:35".
func (e TimetableEntry) TimeRange() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", e.Start/60, e.Start%60, e.End/60, e.End%60)
}

// Timetable is the parsed weekly schedule of one group. Entries are sorted by
// (day, start) and contain no duplicate (day, start, weeks) tuples; the
// parser enforces that at load time.
type Timetable struct {
	Group     string           `bson:"_id" json:"group"`
	Entries   []TimetableEntry `bson:"entries" json:"entries"`
	FetchedAt time.Time        `bson:"fetched_at" json:"fetched_at"`
	Stale     bool             `bson:"-" json:"stale,omitempty"`
}
