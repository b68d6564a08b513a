package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nauassist/internal/models"
	"nauassist/internal/schedule"
)

type staticSource struct {
	tt *models.Timetable
}

func (s *staticSource) FetchTimetable(ctx context.Context, group string) (*models.Timetable, error) {
	if s.tt == nil || s.tt.Group != group {
		return nil, schedule.ErrGroupNotFound
	}
	cp := *s.tt
	return &cp, nil
}

func newScheduleApp(tt *models.Timetable) *fiber.App {
	semesterStart := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	engine := schedule.NewEngine(&staticSource{tt: tt}, nil, time.Hour, semesterStart, zap.NewNop().Sugar())

	app := fiber.New()
	NewScheduleHandler(engine).Register(app.Group("/api/v1"))
	return app
}

func scheduleTimetable() *models.Timetable {
	return &models.Timetable{
		Group: "Б-171-22-1-ІР",
		Entries: []models.TimetableEntry{
			{Day: time.Monday, Start: 9*60 + 50, End: 11*60 + 25, Subject: "Програмування", Weeks: models.WeekOdd},
			{Day: time.Monday, Start: 11*60 + 40, End: 13*60 + 15, Subject: "Бази даних", Weeks: models.WeekEvery},
		},
		FetchedAt: time.Now(),
	}
}

func TestGetScheduleForDate(t *testing.T) {
	app := newScheduleApp(scheduleTimetable())

	// 2025-11-10 is a Monday on an odd week.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule?group=Б-171-22-1-ІР&date=2025-11-10", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.DayScheduleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Понеділок", out.Day)
	assert.Equal(t, models.ParityOdd, out.Parity)
	require.Len(t, out.Lessons, 2)
	assert.Equal(t, "Програмування", out.Lessons[0].Subject)
}

func TestGetScheduleEvenWeekFiltersOddLessons(t *testing.T) {
	app := newScheduleApp(scheduleTimetable())

	// 2025-11-17 is a Monday on an even week.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule?group=Б-171-22-1-ІР&date=2025-11-17", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.DayScheduleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, models.ParityEven, out.Parity)
	require.Len(t, out.Lessons, 1)
	assert.Equal(t, "Бази даних", out.Lessons[0].Subject)
}

func TestGetScheduleUnknownGroup(t *testing.T) {
	app := newScheduleApp(scheduleTimetable())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule?group=Х-999-99-9-ХХ&date=2025-11-10", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetScheduleRequiresGroup(t *testing.T) {
	app := newScheduleApp(scheduleTimetable())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetScheduleBadDate(t *testing.T) {
	app := newScheduleApp(scheduleTimetable())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule?group=Б-171-22-1-ІР&date=10.11.2025", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetScheduleNow(t *testing.T) {
	app := newScheduleApp(scheduleTimetable())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/now?group=Б-171-22-1-ІР", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.NowScheduleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Б-171-22-1-ІР", out.Group)
	assert.NotEmpty(t, out.Parity)
}
