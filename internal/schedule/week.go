package schedule

import (
	"time"

	"nauassist/internal/models"
)

// WeekNumber returns the 0-based academic week of ref counted from
// semesterStart. Dates before the semester start clamp to week 0. Both
// instants are reduced to calendar dates first so daylight-saving shifts
// cannot skew the day count.
func WeekNumber(semesterStart, ref time.Time) int {
	start := midnightUTC(semesterStart)
	day := midnightUTC(ref)
	if day.Before(start) {
		return 0
	}
	days := int(day.Sub(start) / (24 * time.Hour))
	return days / 7
}

// WeekParity maps the academic week number onto the alternating-week
// convention: the week containing semesterStart is odd. This is the single
// source of truth for parity — every other computation calls it instead of
// re-deriving the arithmetic.
func WeekParity(semesterStart, ref time.Time) models.Parity {
	if WeekNumber(semesterStart, ref)%2 == 0 {
		return models.ParityOdd
	}
	return models.ParityEven
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
