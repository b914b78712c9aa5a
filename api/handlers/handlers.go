package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fire-base/dto"
	"fire-base/gateway"
	"fire-base/logger"
	"fire-base/models"
	"fire-base/services"
	"fire-base/store"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// 순서가 중요하다. 더 구체적인 에러를 먼저 둔다.
var errorMappings = []errorMapping{
	{store.ErrNotFound, http.StatusNotFound, "not_found", "아이디어를 찾을 수 없습니다."},
	{store.ErrTagNotFound, http.StatusNotFound, "tag_not_found", "태그를 찾을 수 없습니다."},
	{store.ErrBusy, http.StatusConflict, "busy", "이미 AI 요청이 진행 중입니다."},
	{store.ErrConfirmationRequired, http.StatusPreconditionRequired, "confirmation_required", "삭제하려면 확인이 필요합니다."},
	{store.ErrUnknownPrompt, http.StatusBadRequest, "unknown_prompt", ""},
	{store.ErrInvalidSeed, http.StatusBadGateway, "malformed_ai_response", ""},
	{models.ErrEmptyTitle, http.StatusBadRequest, "invalid_idea", "아이디어 제목은 필수입니다."},
	{models.ErrInvalidCategory, http.StatusBadRequest, "invalid_idea", ""},
	{models.ErrInvalidLevel, http.StatusBadRequest, "invalid_idea", ""},
	{models.ErrInvalidStatus, http.StatusBadRequest, "invalid_status", ""},
	{services.ErrEmptyTopic, http.StatusBadRequest, "empty_topic", "아이디어 생성을 위한 주제나 질문을 입력해주세요."},
	{services.ErrEmptyQuestion, http.StatusBadRequest, "empty_question", "질문 내용을 입력해주세요."},
	{services.ErrUnknownIntent, http.StatusBadRequest, "unknown_intent", ""},
	{services.ErrIncompleteIdea, http.StatusBadRequest, "incomplete_idea", "이미지를 생성하려면 아이디어 제목과 카테고리가 필요합니다."},
	{services.ErrEmptyCredential, http.StatusBadRequest, "empty_credential", "API 키를 입력해주세요."},
	{services.ErrEnvCredentialLocked, http.StatusConflict, "env_credential_locked", "환경 변수에 설정된 API 키는 앱에서 변경할 수 없습니다."},
	{gateway.ErrMissingCredential, http.StatusPreconditionFailed, "credential_required", gateway.MsgCredentialRequired},
	{gateway.ErrQuotaExceeded, http.StatusTooManyRequests, "quota_exceeded", ""},
	{gateway.ErrMalformedResponse, http.StatusBadGateway, "malformed_ai_response", ""},
	{gateway.ErrNoImage, http.StatusBadGateway, "ai_failed", ""},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout", "요청 시간이 초과되었습니다."},
}

// writeError maps a domain error to its HTTP status and a snake_case code.
// A ServiceError's own message wins over the default one.
func writeError(c *gin.Context, err error) {
	status, code, message := http.StatusInternalServerError, "internal_error", "요청을 처리하는 중 오류가 발생했습니다."
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			status, code = m.status, m.code
			if m.message != "" {
				message = m.message
			} else {
				message = err.Error()
			}
			break
		}
	}

	var se *gateway.ServiceError
	if errors.As(err, &se) {
		if status == http.StatusInternalServerError {
			status, code = http.StatusBadGateway, "ai_failed"
		}
		message = se.Message
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorWithFields("request failed", logger.Fields{
			"path":  c.FullPath(),
			"code":  code,
			"error": err.Error(),
		})
	}
	_ = c.Error(err)
	c.JSON(status, dto.ErrorResponseDTO{Error: code, Message: message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_request", Message: err.Error()})
}

// GetMetaHandler godoc
// @Summary      Option lists
// @Description  Categories, levels, statuses, coaching intents and sort options with Korean labels
// @Tags         meta
// @Produce      json
// @Success      200  {object}  dto.MetaDTO
// @Router       /meta [get]
func GetMetaHandler() gin.HandlerFunc {
	meta := dto.NewMetaDTO()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, meta)
	}
}

// QuotaReporter 는 오늘 남은 AI 호출 수를 알려준다. 제한이 없으면 -1.
type QuotaReporter interface {
	Remaining() int
}

// GetStatusHandler godoc
// @Summary      UI coordination state
// @Description  In-flight AI requests, the current notice and the remaining daily AI quota
// @Tags         meta
// @Produce      json
// @Success      200  {object}  dto.StatusDTO
// @Router       /status [get]
func GetStatusHandler(st *store.Store, quota QuotaReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		remaining := -1
		if quota != nil {
			remaining = quota.Remaining()
		}
		c.JSON(http.StatusOK, dto.NewStatusDTO(st.Status(), remaining))
	}
}

// ClearNoticeHandler godoc
// @Summary      Dismiss the current notice
// @Tags         meta
// @Success      204
// @Router       /status/notice [delete]
func ClearNoticeHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		st.ClearNotice()
		c.Status(http.StatusNoContent)
	}
}
