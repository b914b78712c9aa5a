package logger

import (
	"context"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger 는 애플리케이션 전역에서 사용하는 최소 로거 인터페이스다.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields 는 구조화 로그를 위한 공통 필드 타입이다.
type Fields map[string]any

// Options 는 config.yaml 의 logging 섹션과 같은 모양이다.
type Options struct {
	Level   string
	Format  string // json | text
	Service string
}

var (
	// Log 는 전역 로거 인스턴스다.
	// Init 이 호출되지 않더라도 기본 info 레벨 JSON 으로 동작한다.
	Log Logger = NewLogger(Options{})

	service string
)

// Init 은 전역 로거를 다시 만든다. 모르는 레벨은 info 로 취급한다.
func Init(opts Options) {
	Log = NewLogger(opts)
	service = strings.TrimSpace(opts.Service)
}

// NewLogger 는 주어진 옵션으로 gookit/slog 기반 로거를 생성한다.
func NewLogger(opts Options) Logger {
	level := strings.ToLower(strings.TrimSpace(opts.Level))
	if level == "" {
		level = "info"
	}
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	if strings.EqualFold(opts.Format, "text") {
		h.SetFormatter(slog.NewTextFormatter())
	} else {
		h.SetFormatter(slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
			f.Fields = []string{
				slog.FieldKeyDatetime,
				slog.FieldKeyLevel,
				slog.FieldKeyMessage,
			}
			f.Aliases = slog.StringMap{
				slog.FieldKeyDatetime: "datetime",
				slog.FieldKeyLevel:    "level",
				slog.FieldKeyMessage:  "message",
			}
			f.TimeFormat = "2006-01-02T15:04:05"
		}))
	}

	return slog.NewWithHandlers(h)
}

type ctxKey struct{}

// WithRequestID 는 요청 ID 를 컨텍스트에 싣는다. *Ctx 로깅 함수가 이를 request_id 로 남긴다.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}

// withBase 는 service 와 request_id 를 채운 새 Fields 를 돌려준다. 호출자의 맵은 건드리지 않는다.
func withBase(ctx context.Context, fields Fields) Fields {
	out := make(Fields, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	if _, ok := out["service"]; !ok && service != "" {
		out["service"] = service
	}
	if _, ok := out["request_id"]; !ok {
		if id := RequestID(ctx); id != "" {
			out["request_id"] = id
		}
	}
	return out
}

func emit(level slog.Level, msg string, fields Fields) {
	lg, ok := Log.(*slog.Logger)
	if !ok {
		switch level {
		case slog.DebugLevel:
			Log.Debug(msg)
		case slog.WarnLevel:
			Log.Warn(msg)
		case slog.ErrorLevel:
			Log.Error(msg)
		default:
			Log.Info(msg)
		}
		return
	}

	r := lg.WithFields(slog.M(fields))
	switch level {
	case slog.DebugLevel:
		r.Debug(msg)
	case slog.WarnLevel:
		r.Warn(msg)
	case slog.ErrorLevel:
		r.Error(msg)
	default:
		r.Info(msg)
	}
}

func InfoWithFields(msg string, fields Fields)  { emit(slog.InfoLevel, msg, withBase(context.Background(), fields)) }
func DebugWithFields(msg string, fields Fields) { emit(slog.DebugLevel, msg, withBase(context.Background(), fields)) }
func WarnWithFields(msg string, fields Fields)  { emit(slog.WarnLevel, msg, withBase(context.Background(), fields)) }
func ErrorWithFields(msg string, fields Fields) { emit(slog.ErrorLevel, msg, withBase(context.Background(), fields)) }

// InfoCtx 등은 ctx 에 실린 request_id 를 함께 남긴다.
// 요청에서 시작된 AI 호출과 이벤트 발행을 HTTP 로그와 묶어 볼 때 쓴다.
func InfoCtx(ctx context.Context, msg string, fields Fields) {
	emit(slog.InfoLevel, msg, withBase(ctx, fields))
}

func WarnCtx(ctx context.Context, msg string, fields Fields) {
	emit(slog.WarnLevel, msg, withBase(ctx, fields))
}

func ErrorCtx(ctx context.Context, msg string, fields Fields) {
	emit(slog.ErrorLevel, msg, withBase(ctx, fields))
}
