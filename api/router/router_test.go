package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fire-base/dto"
	"fire-base/gateway"
	"fire-base/kvstore"
	"fire-base/models"
	"fire-base/repositories"
	"fire-base/services"
	"fire-base/store"
)

type stubAI struct{}

func (stubAI) GenerateIdeaSeeds(_ context.Context, credential, _ string) ([]models.IdeaSeed, error) {
	if credential == "" {
		return nil, &gateway.ServiceError{Op: gateway.OpSeeds, Message: gateway.MsgCredentialRequired, Cause: gateway.ErrMissingCredential}
	}
	return []models.IdeaSeed{{
		Title:           "배당주 포트폴리오",
		Category:        models.CategoryInvestment,
		PotentialImpact: models.LevelHigh,
		EffortLevel:     models.LevelMedium,
	}}, nil
}

func (stubAI) RequestCoaching(context.Context, string, string, models.CoachingPromptType) (gateway.CoachingResult, error) {
	return gateway.CoachingResult{Text: "계획"}, nil
}

func (stubAI) GenerateImage(context.Context, string, string, models.Category) (gateway.ImageResult, error) {
	return gateway.ImageResult{ImageData: "data:image/jpeg;base64,AA", PromptUsed: "p"}, nil
}

type routeRecorder struct{ routes []string }

func (r *routeRecorder) ObserveHTTP(_, route string, _ int, _ time.Duration) {
	r.routes = append(r.routes, route)
}

func newTestRouter(t *testing.T, env string) (*gin.Engine, *store.Store, *routeRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kv := kvstore.NewMemory()
	st := store.New(repositories.NewIdeaRepository(kv, "ideas"))
	require.NoError(t, st.Init(context.Background()))
	creds := services.NewCredentialService(repositories.NewCredentialRepository(kv, "cred"), func() string { return env }, nil)
	rec := &routeRecorder{}

	r := New(Deps{
		Store:       st,
		Ideas:       services.NewIdeaService(st, stubAI{}, creds, nil),
		Credentials: creds,
		Suggestions: services.NewSuggestionService(nil),
		HTTPMetrics: rec,
		Ping:        func(context.Context) error { return nil },
	})
	return r, st, rec
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	r, _, _ := newTestRouter(t, "")
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	gin.SetMode(gin.TestMode)
	degraded := New(Deps{Ping: func(context.Context) error { return errors.New("down") }})
	w = doJSON(t, degraded, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestIdeaLifecycle(t *testing.T) {
	r, _, rec := newTestRouter(t, "env-key")

	w := doJSON(t, r, http.MethodPost, "/api/v1/ideas", map[string]any{"title": "  가계부 자동화  ", "category": "지출 감소"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Idea](t, w)
	assert.Equal(t, "가계부 자동화", created.Title)
	assert.True(t, created.IsCustom)
	assert.Equal(t, models.RefinementPromptsFor(models.CategoryExpenseReduction), created.RefinementPrompts)
	id := created.ID

	w = doJSON(t, r, http.MethodPost, "/api/v1/ideas/"+id+"/favorite", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.Idea](t, w).IsFavorite)

	w = doJSON(t, r, http.MethodPut, "/api/v1/ideas/"+id+"/status", map[string]string{"status": "In Progress"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/v1/ideas/"+id+"/status", map[string]string{"status": "Done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/ideas/"+id+"/tags", map[string]string{"tag": " side  hustle "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"side-hustle"}, decode[models.Idea](t, w).Tags)

	w = doJSON(t, r, http.MethodPut, "/api/v1/ideas/"+id+"/tags/side-hustle", map[string]string{"tag": "부업"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"부업"}, decode[models.Idea](t, w).Tags)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/ideas/"+id+"/tags/"+url.PathEscape("부업"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[models.Idea](t, w).Tags)

	prompt := created.RefinementPrompts[0]
	w = doJSON(t, r, http.MethodPut, "/api/v1/ideas/"+id+"/refinements", map[string]string{"prompt": prompt, "answer": "월 5만원"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "월 5만원", decode[models.Idea](t, w).UserRefinements[prompt])

	w = doJSON(t, r, http.MethodGet, "/api/v1/ideas?favorites=true&status=In%20Progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.IdeaListDTO](t, w)
	assert.Len(t, list.Data, 1)
	assert.True(t, list.HasActiveFilters)
	assert.Equal(t, 1, list.Total)

	w = doJSON(t, r, http.MethodGet, "/api/v1/ideas?status=Completed", nil)
	list = decode[dto.IdeaListDTO](t, w)
	assert.Empty(t, list.Data)
	assert.Equal(t, 1, list.Total)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/ideas/"+id, nil)
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/ideas/"+id+"?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/ideas/"+id+"?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/ideas/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Contains(t, rec.routes, "/api/v1/ideas/:id/tags/:tag")
}

func TestUpdateKeepsAIFields(t *testing.T) {
	r, st, _ := newTestRouter(t, "env-key")

	w := doJSON(t, r, http.MethodPost, "/api/v1/ideas", map[string]any{"title": "블로그"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Idea](t, w).ID

	w = doJSON(t, r, http.MethodPost, "/api/v1/ideas/"+id+"/coaching", map[string]string{"intent": "RISK_ANALYSIS"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPut, "/api/v1/ideas/"+id, map[string]any{"title": "블로그 운영"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.Idea](t, w)
	assert.Equal(t, "블로그 운영", updated.Title)
	assert.Len(t, updated.AICoachingSessions, 1)

	w = doJSON(t, r, http.MethodPut, "/api/v1/ideas/"+id, map[string]any{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got, err := st.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "블로그 운영", got.Title)
}

func TestBrainstormAndSelection(t *testing.T) {
	r, _, _ := newTestRouter(t, "env-key")

	w := doJSON(t, r, http.MethodPost, "/api/v1/brainstorm", map[string]string{"topic": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "empty_topic", decode[dto.ErrorResponseDTO](t, w).Error)

	w = doJSON(t, r, http.MethodPost, "/api/v1/brainstorm", map[string]string{"topic": "투자"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[dto.BrainstormResponseDTO](t, w)
	require.Len(t, resp.Data, 1)
	id := resp.Data[0].ID

	w = doJSON(t, r, http.MethodGet, "/api/v1/selection", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/ideas/"+id+"/select", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/ideas/"+id+"/image", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/selection", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "data:image/jpeg;base64,AA", decode[models.Idea](t, w).ImageURL)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/selection", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/brainstorm/suggestions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[services.Suggestions](t, w).Pick)
}

func TestCredentialEndpoints(t *testing.T) {
	r, st, _ := newTestRouter(t, "")

	w := doJSON(t, r, http.MethodPost, "/api/v1/brainstorm", map[string]string{"topic": "투자"})
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Equal(t, "credential_required", decode[dto.ErrorResponseDTO](t, w).Error)
	require.NotNil(t, st.Status().Notice)

	w = doJSON(t, r, http.MethodGet, "/api/v1/credential", nil)
	assert.Equal(t, services.CredentialStatus{Source: services.CredentialSourceNone}, decode[services.CredentialStatus](t, w))

	w = doJSON(t, r, http.MethodPut, "/api/v1/credential", map[string]string{"api_key": "user-key"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.CredentialSourceLocal, decode[services.CredentialStatus](t, w).Source)
	assert.NotContains(t, w.Body.String(), "user-key")

	w = doJSON(t, r, http.MethodPost, "/api/v1/brainstorm", map[string]string{"topic": "투자"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/credential", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.CredentialSourceNone, decode[services.CredentialStatus](t, w).Source)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/status/notice", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Nil(t, st.Status().Notice)

	envRouter, _, _ := newTestRouter(t, "env-key")
	w = doJSON(t, envRouter, http.MethodPut, "/api/v1/credential", map[string]string{"api_key": "user-key"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMetaAndTemplate(t *testing.T) {
	r, _, _ := newTestRouter(t, "")

	w := doJSON(t, r, http.MethodGet, "/api/v1/ideas/template", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tmpl := decode[models.Idea](t, w)
	assert.Empty(t, tmpl.ID)
	assert.Equal(t, models.CategoryOther, tmpl.Category)

	w = doJSON(t, r, http.MethodGet, "/api/v1/meta", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
