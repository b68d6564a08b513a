package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nauassist/internal/models"
)

type fakeDirectory struct {
	groups []string
	err    error
}

func (f *fakeDirectory) ListGroups(context.Context) ([]string, error) {
	return f.groups, f.err
}

func (f *fakeDirectory) SimilarGroups(_ context.Context, query string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.groups, nil
}

func newGroupApp(dir GroupDirectory) *fiber.App {
	app := fiber.New()
	NewGroupHandler(dir).Register(app.Group("/api/v1"))
	return app
}

func postValidate(t *testing.T, app *fiber.App, body models.GroupValidationRequest) models.GroupValidationResponse {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/validate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.GroupValidationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestValidateGroupKnown(t *testing.T) {
	app := newGroupApp(&fakeDirectory{groups: []string{"Б-171-22-1-ІР", "Б-172-22-1-КІТ"}})

	out := postValidate(t, app, models.GroupValidationRequest{GroupName: "Б-171-22-1-ІР"})
	assert.True(t, out.IsValid)
	assert.Equal(t, "Б-171-22-1-ІР", out.ExtractedName)
}

func TestValidateGroupExtractedFromFreeText(t *testing.T) {
	app := newGroupApp(&fakeDirectory{groups: []string{"Б-171-22-1-ІР"}})

	out := postValidate(t, app, models.GroupValidationRequest{GroupName: "моя група б-171-22-1-ір, дякую"})
	assert.True(t, out.IsValid)
	assert.Equal(t, "Б-171-22-1-ІР", out.ExtractedName)
}

func TestValidateGroupMalformed(t *testing.T) {
	app := newGroupApp(&fakeDirectory{groups: []string{"Б-171-22-1-ІР"}})

	out := postValidate(t, app, models.GroupValidationRequest{GroupName: "171-ІР"})
	assert.False(t, out.IsValid)
	assert.Empty(t, out.ExtractedName)
	assert.NotEmpty(t, out.Suggestions)
}

func TestValidateGroupUnknown(t *testing.T) {
	app := newGroupApp(&fakeDirectory{groups: []string{"Б-172-22-1-КІТ"}})

	out := postValidate(t, app, models.GroupValidationRequest{GroupName: "Б-171-22-1-ІР"})
	assert.False(t, out.IsValid)
	assert.Equal(t, "Б-171-22-1-ІР", out.ExtractedName)
	assert.NotEmpty(t, out.Suggestions)
}

func TestValidateGroupPortalDown(t *testing.T) {
	app := newGroupApp(&fakeDirectory{err: errors.New("portal down")})

	out := postValidate(t, app, models.GroupValidationRequest{GroupName: "Б-171-22-1-ІР"})
	assert.True(t, out.IsValid, "well-formed names pass when existence is unverifiable")
	assert.Equal(t, "Б-171-22-1-ІР", out.ExtractedName)
}

func TestValidateGroupEmptyBody(t *testing.T) {
	app := newGroupApp(&fakeDirectory{})

	payload, _ := json.Marshal(models.GroupValidationRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/validate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
