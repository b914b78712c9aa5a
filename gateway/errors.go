package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// MsgCredentialRequired 는 사용할 수 있는 Gemini 키가 없을 때 보여준다.
const MsgCredentialRequired = "Gemini API를 사용하려면 유효한 API 키가 필요합니다. 환경 변수를 확인하거나 앱 내 설정을 통해 API 키를 입력해주세요."

var (
	ErrMissingCredential = errors.New("gemini credential is missing or invalid")
	ErrMalformedResponse = errors.New("malformed AI response")
	ErrQuotaExceeded     = errors.New("AI request quota exceeded")
	ErrNoImage           = errors.New("image service returned no image data")
)

// ServiceError 는 사용자에게 보여줄 메시지를 담는다.
// 별도 코드는 없고 호출자는 errors.Is 로 감싼 sentinel 을 확인한다.
type ServiceError struct {
	Op      string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// 사용자 메시지 앞에 붙는 작업별 접두어
const (
	prefixSeeds    = "AI 아이디어 생성에 실패했습니다. "
	prefixCoaching = "AI 코칭 응답을 받는데 실패했습니다. "
	prefixImage    = "AI 이미지 생성에 실패했습니다. "
)

func missingCredential(op string) error {
	return &ServiceError{Op: op, Message: MsgCredentialRequired, Cause: ErrMissingCredential}
}

// classify 는 백엔드 실패를 ServiceError 로 바꾼다.
// API 키나 권한 문제를 가리키는 메시지는 키 오류로 보고한다.
func classify(op, prefix string, err error) error {
	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "api key") || strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "permission_denied") {
		return &ServiceError{Op: op, Message: MsgCredentialRequired, Cause: fmt.Errorf("%w: %v", ErrMissingCredential, err)}
	}
	return &ServiceError{Op: op, Message: prefix + msg, Cause: err}
}
