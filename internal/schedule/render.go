package schedule

import (
	"fmt"
	"strings"
	"time"

	"nauassist/internal/models"
)

var ukrDays = map[time.Weekday]string{
	time.Monday:    "Понеділок",
	time.Tuesday:   "Вівторок",
	time.Wednesday: "Середа",
	time.Thursday:  "Четвер",
	time.Friday:    "П'ятниця",
	time.Saturday:  "Субота",
	time.Sunday:    "Неділя",
}

var parityLabels = map[models.Parity]string{
	models.ParityOdd:  "непарний",
	models.ParityEven: "парний",
}

// DayName returns the Ukrainian weekday name used in rendered schedules.
func DayName(d time.Weekday) string {
	return ukrDays[d]
}

// Render formats a full two-week timetable as plain text for the generation
// context, with the week matching ref's parity marked as current.
func Render(tt *models.Timetable, semesterStart, ref time.Time) string {
	var b strings.Builder
	current := WeekParity(semesterStart, ref)

	fmt.Fprintf(&b, "ГРУПА %s — ПОВНИЙ РОЗКЛАД\n", tt.Group)
	for _, parity := range []models.Parity{models.ParityOdd, models.ParityEven} {
		marker := ""
		if parity == current {
			marker = " ← поточний"
		}
		fmt.Fprintf(&b, "\nТиждень %s%s:\n", parityLabels[parity], marker)

		for day := time.Monday; day <= time.Saturday; day++ {
			lessons := lessonsOn(tt, day, parity)
			if len(lessons) == 0 {
				continue
			}
			fmt.Fprintf(&b, "%s:\n", ukrDays[day])
			for _, l := range lessons {
				line := fmt.Sprintf("  %s %s", l.TimeRange(), l.Subject)
				if l.Teacher != "" {
					line += " — " + l.Teacher
				}
				if l.Room != "" {
					line += " — ауд. " + l.Room
				}
				b.WriteString(line + "\n")
			}
		}
	}
	return b.String()
}

// RenderNowFacts formats the current/next lesson pair as short facts the
// context manager merges into the generation context.
func RenderNowFacts(group string, parity models.Parity, instant time.Time, current, next *models.TimetableEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Зараз: %s, %s, тиждень %s.\n",
		ukrDays[instant.Weekday()], instant.Format("15:04 02.01.2006"), parityLabels[parity])

	if current != nil {
		fmt.Fprintf(&b, "Поточна пара групи %s: %s (%s", group, current.Subject, current.TimeRange())
		if current.Room != "" {
			fmt.Fprintf(&b, ", ауд. %s", current.Room)
		}
		b.WriteString(").\n")
	} else {
		fmt.Fprintf(&b, "У групи %s зараз немає пари.\n", group)
	}

	if next != nil {
		fmt.Fprintf(&b, "Наступна пара: %s, %s %s", next.Subject, ukrDays[next.Day], next.TimeRange())
		if next.Room != "" {
			fmt.Fprintf(&b, ", ауд. %s", next.Room)
		}
		b.WriteString(".\n")
	}
	return b.String()
}
