package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"nauassist/internal/models"
	"nauassist/internal/schedule"
)

// GenerationInput is everything the generator needs for one answer.
type GenerationInput struct {
	UserName string
	Question string
	Context  string // schedule facts and retrieved passages, may be empty
	History  []models.Message
}

// Generator produces the final natural-language answer.
type Generator interface {
	GenerateResponse(ctx context.Context, in GenerationInput) (string, error)
}

// ScheduleProvider is the slice of the schedule engine the assistant uses.
type ScheduleProvider interface {
	Timetable(ctx context.Context, group string) (*models.Timetable, error)
	CurrentAndNext(ctx context.Context, group string, instant time.Time) (current, next *models.TimetableEntry, err error)
	ParityAt(ref time.Time) models.Parity
}

// Assistant is the top of the pipeline: classify the question, gather
// schedule facts and retrieved context, and generate the answer. Every
// dependency failure degrades to the best answer available rather than an
// error to the user.
type Assistant struct {
	classifier    *Classifier
	orchestrator  *Orchestrator
	scheduler     ScheduleProvider
	generator     Generator
	semesterStart time.Time
	maxTokens     int
	log           *zap.SugaredLogger
	now           func() time.Time
}

func NewAssistant(
	classifier *Classifier,
	orchestrator *Orchestrator,
	scheduler ScheduleProvider,
	generator Generator,
	semesterStart time.Time,
	maxTokens int,
	log *zap.SugaredLogger,
) *Assistant {
	return &Assistant{
		classifier:    classifier,
		orchestrator:  orchestrator,
		scheduler:     scheduler,
		generator:     generator,
		semesterStart: semesterStart,
		maxTokens:     maxTokens,
		log:           log,
		now:           time.Now,
	}
}

// Ask answers one user turn.
func (a *Assistant) Ask(ctx context.Context, req models.ChatRequest) models.ChatResponse {
	decision := a.classifier.Classify(req.Message, req.GroupName)
	a.log.Infow("routing decision",
		"level", decision.Level,
		"faculty", decision.Faculty,
		"department", decision.Department,
		"intent", decision.Intent,
		"needs_retrieval", decision.NeedsRetrieval,
		"confidence", decision.Confidence,
	)

	status := "ok"
	var blocks []string

	scheduleFacts := a.scheduleContext(ctx, decision, req.GroupName)
	if scheduleFacts != "" {
		blocks = append(blocks, scheduleFacts)
	}

	var hits []models.SearchHit
	if decision.NeedsRetrieval {
		result, err := a.orchestrator.Retrieve(ctx, decision, req.Message)
		switch {
		case err != nil:
			a.log.Warnw("retrieval failed", "error", err)
			status = "degraded"
		case len(result.Hits) > 0:
			hits = result.Hits
			if !result.Validated {
				status = "degraded"
			}
			blocks = append(blocks, FormatHits(hits))
		}
	}

	in := GenerationInput{
		UserName: req.UserName,
		Question: req.Message,
		Context:  strings.Join(blocks, "\n\n"),
		History:  TrimHistory(req.Messages, a.maxTokens),
	}

	answer, err := a.generator.GenerateResponse(ctx, in)
	if err != nil {
		a.log.Errorw("generation failed, falling back to raw context", "error", err)
		return models.ChatResponse{Response: a.fallbackAnswer(scheduleFacts, hits), Status: "degraded"}
	}
	return models.ChatResponse{Response: answer, Status: status}
}

// scheduleContext builds the timetable facts block for schedule questions
// from a known group. A schedule failure becomes a fact the generator can
// relay instead of an error.
func (a *Assistant) scheduleContext(ctx context.Context, decision models.RoutingDecision, group string) string {
	if decision.Intent != models.IntentSchedule || group == "" {
		return ""
	}

	instant := a.now()
	current, next, err := a.scheduler.CurrentAndNext(ctx, group, instant)
	if err != nil {
		a.log.Warnw("schedule lookup failed", "group", group, "error", err)
		return "Розклад групи " + group + " тимчасово недоступний."
	}

	facts := schedule.RenderNowFacts(group, a.scheduler.ParityAt(instant), instant, current, next)
	if tt, terr := a.scheduler.Timetable(ctx, group); terr == nil {
		facts += "\n" + schedule.Render(tt, a.semesterStart, instant)
	}
	return facts
}

// fallbackAnswer is served when the generator itself is down: raw schedule
// facts, then raw search results, then an apology.
func (a *Assistant) fallbackAnswer(scheduleFacts string, hits []models.SearchHit) string {
	if scheduleFacts != "" {
		return scheduleFacts
	}
	if len(hits) > 0 {
		return FormatHits(hits)
	}
	return "На жаль, зараз я не можу відповісти. Спробуйте, будь ласка, пізніше."
}
