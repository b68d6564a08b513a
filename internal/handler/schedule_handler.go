package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"nauassist/internal/models"
	"nauassist/internal/schedule"
)

// ScheduleHandler serves timetable lookups directly, bypassing the LLM.
type ScheduleHandler struct {
	engine *schedule.Engine
}

func NewScheduleHandler(engine *schedule.Engine) *ScheduleHandler {
	return &ScheduleHandler{engine: engine}
}

func (h *ScheduleHandler) Register(r fiber.Router) {
	r.Get("/schedule", h.day)
	r.Get("/schedule/now", h.now)
}

// day handles GET /schedule?group=Б-171-22-1-ІР&date=2026-09-14. Without a
// date it serves today.
func (h *ScheduleHandler) day(c *fiber.Ctx) error {
	group := c.Query("group")
	if group == "" {
		return fiber.NewError(fiber.StatusBadRequest, "group is required")
	}

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		date = parsed
	}

	parity := h.engine.ParityAt(date)
	lessons, err := h.engine.LessonsOn(c.UserContext(), group, date.Weekday(), parity)
	if err != nil {
		return scheduleError(err)
	}

	return c.JSON(models.DayScheduleResponse{
		Group:   group,
		Day:     schedule.DayName(date.Weekday()),
		Parity:  parity,
		Lessons: lessons,
	})
}

// now handles GET /schedule/now?group=...: the lesson in progress and the
// one after it.
func (h *ScheduleHandler) now(c *fiber.Ctx) error {
	group := c.Query("group")
	if group == "" {
		return fiber.NewError(fiber.StatusBadRequest, "group is required")
	}

	ctx := c.UserContext()
	tt, err := h.engine.Timetable(ctx, group)
	if err != nil {
		return scheduleError(err)
	}

	instant := time.Now()
	current, next, err := h.engine.CurrentAndNext(ctx, group, instant)
	if err != nil {
		return scheduleError(err)
	}

	resp := models.NowScheduleResponse{
		Group:   group,
		Parity:  h.engine.ParityAt(instant),
		Current: current,
		Next:    next,
		Stale:   tt.Stale,
	}
	if current == nil && next == nil {
		resp.Message = "Пар немає"
	}
	return c.JSON(resp)
}

func scheduleError(err error) error {
	switch {
	case errors.Is(err, schedule.ErrGroupNotFound):
		return fiber.NewError(fiber.StatusNotFound, "group not found")
	case errors.Is(err, schedule.ErrUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, "schedule temporarily unavailable")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
