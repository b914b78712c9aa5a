package dto

import "fire-base/store"

// ErrorResponseDTO는 공통 에러 응답 형식을 통일하기 위한 DTO이다.
// Message 는 사용자에게 그대로 보여줄 수 있는 문장이다.
type ErrorResponseDTO struct {
	Error   string `json:"error" example:"credential_required"`
	Message string `json:"message,omitempty"`
}

// StatusDTO 는 GET /status 응답이다. 진행 중인 AI 요청, 현재 알림, 오늘 남은 Gemini 호출 수를 담는다.
type StatusDTO struct {
	Loading  bool          `json:"loading"`
	InFlight []string      `json:"in_flight"`
	Notice   *store.Notice `json:"notice,omitempty"`
	// 일일 한도가 없으면 비어 있다.
	AIQuotaRemaining *int `json:"ai_quota_remaining,omitempty" example:"42"`
}

func NewStatusDTO(s store.Status, quotaRemaining int) StatusDTO {
	out := StatusDTO{Loading: s.Loading, InFlight: s.InFlight, Notice: s.Notice}
	if quotaRemaining >= 0 {
		out.AIQuotaRemaining = &quotaRemaining
	}
	return out
}
