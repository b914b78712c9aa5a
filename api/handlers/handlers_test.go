package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
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

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:       "not found",
			err:        store.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "busy",
			err:        store.ErrBusy,
			wantStatus: http.StatusConflict,
			wantCode:   "busy",
		},
		{
			name:       "unconfirmed delete",
			err:        store.ErrConfirmationRequired,
			wantStatus: http.StatusPreconditionRequired,
			wantCode:   "confirmation_required",
		},
		{
			name:       "wrapped validation error",
			err:        fmt.Errorf("%w: %q", models.ErrInvalidStatus, "Done"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_status",
		},
		{
			name:        "missing credential",
			err:         &gateway.ServiceError{Op: gateway.OpSeeds, Message: gateway.MsgCredentialRequired, Cause: gateway.ErrMissingCredential},
			wantStatus:  http.StatusPreconditionFailed,
			wantCode:    "credential_required",
			wantMessage: gateway.MsgCredentialRequired,
		},
		{
			name:        "generic service error keeps its message",
			err:         &gateway.ServiceError{Op: gateway.OpCoaching, Message: "AI 코칭 응답을 받는데 실패했습니다. overloaded", Cause: errors.New("overloaded")},
			wantStatus:  http.StatusBadGateway,
			wantCode:    "ai_failed",
			wantMessage: "AI 코칭 응답을 받는데 실패했습니다. overloaded",
		},
		{
			name:       "env credential locked",
			err:        services.ErrEnvCredentialLocked,
			wantStatus: http.StatusConflict,
			wantCode:   "env_credential_locked",
		},
		{
			name:       "unknown error",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			ginCtx, _ := gin.CreateTestContext(recorder)
			ginCtx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			writeError(ginCtx, testCase.err)

			assert.Equal(t, testCase.wantStatus, recorder.Code)
			var body dto.ErrorResponseDTO
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, testCase.wantCode, body.Error)
			assert.NotEmpty(t, body.Message)
			if testCase.wantMessage != "" {
				assert.Equal(t, testCase.wantMessage, body.Message)
			}
		})
	}
}

func TestGetMetaHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	ginCtx, _ := gin.CreateTestContext(recorder)
	ginCtx.Request = httptest.NewRequest(http.MethodGet, "/api/v1/meta", nil)

	GetMetaHandler()(ginCtx)

	require.Equal(t, http.StatusOK, recorder.Code)
	var meta dto.MetaDTO
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &meta))
	assert.Len(t, meta.Categories, len(models.AllCategories))
	assert.Len(t, meta.CoachingIntents, len(models.AllCoachingPromptTypes))
	assert.Equal(t, "createdAtDesc", meta.DefaultSort)
	assert.Equal(t, "진행 중", meta.Statuses[1].Label)
}

func newHandlerStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(repositories.NewIdeaRepository(kvstore.NewMemory(), "ideas"))
	require.NoError(t, st.Init(context.Background()))
	return st
}

func TestUpdateIdeaHandler_KeepsMergedAIResult(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	st := newHandlerStore(t)

	idea := models.NewManualIdea()
	idea.Title = "블로그"
	saved, _, err := st.CreateOrUpdateManual(ctx, idea)
	require.NoError(t, err)

	sessions := []models.AICoachingSession{{PromptType: models.CoachingActionPlanDetail, Response: "계획", Timestamp: time.Now()}}
	url, prompt := "data:image/jpeg;base64,AA", "p"
	_, err = st.MergeAIResult(ctx, saved.ID, store.AIResultPatch{AICoachingSessions: &sessions, ImageURL: &url, ImagePrompt: &prompt})
	require.NoError(t, err)

	body, err := json.Marshal(dto.IdeaInputDTO{Title: "새 제목"})
	require.NoError(t, err)
	recorder := httptest.NewRecorder()
	ginCtx, _ := gin.CreateTestContext(recorder)
	ginCtx.Request = httptest.NewRequest(http.MethodPut, "/api/v1/ideas/"+saved.ID, bytes.NewReader(body))
	ginCtx.Request.Header.Set("Content-Type", "application/json")
	ginCtx.Params = gin.Params{{Key: "id", Value: saved.ID}}

	UpdateIdeaHandler(st)(ginCtx)

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	got, err := st.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "새 제목", got.Title)
	assert.Len(t, got.AICoachingSessions, 1)
	assert.Equal(t, url, got.ImageURL)
}

type fixedQuota int

func (q fixedQuota) Remaining() int { return int(q) }

func TestGetStatusHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name          string
		quota         QuotaReporter
		wantRemaining *int
	}{
		{name: "no limiter", quota: nil},
		{name: "unlimited", quota: fixedQuota(-1)},
		{name: "limited", quota: fixedQuota(7), wantRemaining: func() *int { n := 7; return &n }()},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			st := newHandlerStore(t)
			st.SetNotice(store.NoticeInfo, "안내")

			recorder := httptest.NewRecorder()
			ginCtx, _ := gin.CreateTestContext(recorder)
			ginCtx.Request = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)

			GetStatusHandler(st, testCase.quota)(ginCtx)

			require.Equal(t, http.StatusOK, recorder.Code)
			var raw map[string]any
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &raw))
			assert.Contains(t, raw, "in_flight")

			var status dto.StatusDTO
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &status))
			assert.Equal(t, testCase.wantRemaining, status.AIQuotaRemaining)
			require.NotNil(t, status.Notice)
			assert.Equal(t, "안내", status.Notice.Message)
		})
	}
}
