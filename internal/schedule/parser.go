package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"nauassist/internal/models"
)

// The portal serves a timetable as pipe-separated rows:
//
//	<day> | <start>-<end> | <subject> | <parity> | [room] | [teacher]
//
// day is a Ukrainian or English weekday name, times are HH:MM, parity is one
// of "щотижня"/"непарний"/"парний" (or every/odd/even). Blank lines and lines
// starting with '#' are ignored. This parser is the only place those shape
// assumptions live.

var dayNames = map[string]time.Weekday{
	"понеділок": time.Monday,
	"вівторок":  time.Tuesday,
	"середа":    time.Wednesday,
	"четвер":    time.Thursday,
	"п'ятниця":  time.Friday,
	"субота":    time.Saturday,
	"неділя":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

var parityMarkers = map[string]models.WeekApplicability{
	"":          models.WeekEvery,
	"щотижня":   models.WeekEvery,
	"every":     models.WeekEvery,
	"непарний":  models.WeekOdd,
	"odd":       models.WeekOdd,
	"1":         models.WeekOdd,
	"парний":    models.WeekEven,
	"even":      models.WeekEven,
	"2":         models.WeekEven,
}

// ParseRows builds a group's timetable from raw portal rows. A malformed row
// or a duplicate (day, start, parity) tuple fails the whole parse — callers
// see "no schedule" rather than a partial one.
func ParseRows(group string, rows []string, fetchedAt time.Time) (*models.Timetable, error) {
	var entries []models.TimetableEntry
	seen := make(map[string]struct{})

	for i, row := range rows {
		row = strings.TrimSpace(row)
		if row == "" || strings.HasPrefix(row, "#") {
			continue
		}

		entry, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		key := fmt.Sprintf("%d/%d/%s", entry.Day, entry.Start, entry.Weeks)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("row %d: duplicate slot %s %s (%s)", i+1, entry.Day, entry.TimeRange(), entry.Weeks)
		}
		seen[key] = struct{}{}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("timetable for %s has no rows", group)
	}

	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Day != entries[b].Day {
			return entries[a].Day < entries[b].Day
		}
		return entries[a].Start < entries[b].Start
	})

	return &models.Timetable{Group: group, Entries: entries, FetchedAt: fetchedAt}, nil
}

func parseRow(row string) (models.TimetableEntry, error) {
	var e models.TimetableEntry

	fields := strings.Split(row, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 4 {
		return e, fmt.Errorf("expected at least 4 fields, got %d", len(fields))
	}

	day, ok := dayNames[strings.ToLower(fields[0])]
	if !ok {
		return e, fmt.Errorf("unknown day %q", fields[0])
	}

	start, end, err := parseTimeRange(fields[1])
	if err != nil {
		return e, err
	}

	if fields[2] == "" {
		return e, fmt.Errorf("empty subject")
	}

	weeks, ok := parityMarkers[strings.ToLower(fields[3])]
	if !ok {
		return e, fmt.Errorf("unknown parity marker %q", fields[3])
	}

	e = models.TimetableEntry{Day: day, Start: start, End: end, Subject: fields[2], Weeks: weeks}
	if len(fields) > 4 {
		e.Room = fields[4]
	}
	if len(fields) > 5 {
		e.Teacher = fields[5]
	}
	return e, nil
}

func parseTimeRange(s string) (int, int, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad time range %q", s)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("time range %q ends before it starts", s)
	}
	return start, end, nil
}

func parseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute in %q", s)
	}
	return h*60 + m, nil
}
