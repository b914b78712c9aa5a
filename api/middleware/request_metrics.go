package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

type HTTPRecorder interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// RequestMetrics 는 라우트 템플릿 단위로 요청 수와 지연 시간을 기록한다.
// 매칭되지 않은 경로는 "unmatched" 하나로 묶어 라벨 폭증을 막는다.
func RequestMetrics(rec HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
