package handler

import (
	"context"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"

	"nauassist/internal/models"
)

// groupPattern matches official group identifiers:
// degree-specialty-year-stream-code, e.g. Б-171-22-1-ІР.
var groupPattern = regexp.MustCompile(`[БМКД]-\d{3}-\d{2}-\d-[А-ЯІЇЄҐA-Z]{1,4}`)

// GroupDirectory lists portal groups and finds similar names for
// suggestions.
type GroupDirectory interface {
	ListGroups(ctx context.Context) ([]string, error)
	SimilarGroups(ctx context.Context, query string) ([]string, error)
}

// GroupHandler validates group identifiers before the client stores them in
// a user profile.
type GroupHandler struct {
	directory GroupDirectory
}

func NewGroupHandler(directory GroupDirectory) *GroupHandler {
	return &GroupHandler{directory: directory}
}

func (h *GroupHandler) Register(r fiber.Router) {
	r.Post("/groups/validate", h.validate)
}

// validate handles POST /groups/validate. The group name may be embedded in
// free text; the first well-formed identifier is extracted and checked
// against the portal's group list.
func (h *GroupHandler) validate(c *fiber.Ctx) error {
	var req models.GroupValidationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	raw := strings.TrimSpace(req.GroupName)
	if raw == "" {
		return fiber.NewError(fiber.StatusBadRequest, "group_name is required")
	}

	extracted := groupPattern.FindString(strings.ToUpper(raw))
	if extracted == "" {
		resp := models.GroupValidationResponse{
			Message: "Назва групи не відповідає формату (наприклад: Б-171-22-1-ІР)",
		}
		if suggestions, err := h.directory.SimilarGroups(c.UserContext(), raw); err == nil {
			resp.Suggestions = suggestions
		}
		return c.JSON(resp)
	}

	known, err := h.knownGroup(c.UserContext(), extracted)
	if err != nil {
		// Portal down: the format is fine, existence is unverifiable.
		return c.JSON(models.GroupValidationResponse{
			IsValid:       true,
			ExtractedName: extracted,
			Message:       "Формат коректний, але портал розкладу недоступний для перевірки",
		})
	}
	if !known {
		resp := models.GroupValidationResponse{
			ExtractedName: extracted,
			Message:       "Групу не знайдено на порталі розкладу",
		}
		if suggestions, serr := h.directory.SimilarGroups(c.UserContext(), extracted); serr == nil {
			resp.Suggestions = suggestions
		}
		return c.JSON(resp)
	}

	return c.JSON(models.GroupValidationResponse{
		IsValid:       true,
		ExtractedName: extracted,
		Message:       "Групу підтверджено",
	})
}

func (h *GroupHandler) knownGroup(ctx context.Context, name string) (bool, error) {
	groups, err := h.directory.ListGroups(ctx)
	if err != nil {
		return false, err
	}
	for _, g := range groups {
		if strings.EqualFold(g, name) {
			return true, nil
		}
	}
	return false, nil
}
