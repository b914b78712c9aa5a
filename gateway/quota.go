package gateway

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"fire-base/config"
)

// QuotaLimiter 는 Gemini 호출에 대한 분당/일일 한도를 관리한다.
// 인스턴스가 하나라는 전제를 두고 인메모리로 동작하며,
// 프로세스가 재시작되면 일일 카운터가 초기화된다.
type QuotaLimiter struct {
	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	pacer *rate.Limiter
	now   func() time.Time
}

// NewQuotaLimiter 는 config.yaml 의 ai_quota 설정으로 QuotaLimiter 를 생성한다.
// 설정 값이 0 이하인 경우에는 해당 방향의 제한을 두지 않는다.
func NewQuotaLimiter(cfg config.AIQuotaConfig) *QuotaLimiter {
	l := &QuotaLimiter{now: time.Now}
	if cfg.RequestsPerDay > 0 {
		l.dailyLimit = cfg.RequestsPerDay
	}
	if cfg.RequestsPerMinute > 0 {
		l.pacer = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return l
}

// WaitAndReserve 는 호출 전에 분당/일일 한도를 적용한다.
// - 일일 한도를 초과한 경우: (false, nil). 호출자는 Gemini 호출을 하지 않아야 한다.
// - 컨텍스트 취소 등: (false, error).
func (l *QuotaLimiter) WaitAndReserve(ctx context.Context) (bool, error) {
	if l == nil {
		return true, nil
	}

	l.mu.Lock()
	todayKey := l.now().UTC().Format("2006-01-02")
	if l.dayKey != todayKey {
		l.dayKey = todayKey
		l.usedToday = 0
	}
	if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
		l.mu.Unlock()
		return false, nil
	}
	// 대기 중 취소되더라도 예약은 유지한다. 일일 한도는 보수적으로 센다.
	l.usedToday++
	l.mu.Unlock()

	if l.pacer != nil {
		if err := l.pacer.Wait(ctx); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Remaining 은 오늘 남은 호출 수를 반환한다. 제한이 없으면 -1.
func (l *QuotaLimiter) Remaining() int {
	if l == nil || l.dailyLimit <= 0 {
		return -1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dayKey != l.now().UTC().Format("2006-01-02") {
		return l.dailyLimit
	}
	return l.dailyLimit - l.usedToday
}
