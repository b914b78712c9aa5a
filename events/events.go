package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fire-base/models"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	IdeaCreated  EventType = "idea.created"
	IdeaUpdated  EventType = "idea.updated"
	IdeaDeleted  EventType = "idea.deleted"
	IdeaAIMerged EventType = "idea.ai_merged"
)

const (
	SourceAPI     = "api"
	SchemaVersion = "1.0"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

func NewBaseEvent(t EventType, now time.Time) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: now.UTC(),
		Source:    SourceAPI,
		Version:   SchemaVersion,
	}
}

// IdeaCreatedEvent 아이디어가 AI 시드 또는 직접 작성으로 추가됨
type IdeaCreatedEvent struct {
	BaseEvent
	IdeaID   string          `json:"idea_id"`
	Title    string          `json:"title"`
	Category models.Category `json:"category"`
	IsCustom bool            `json:"is_custom"`
}

// IdeaUpdatedEvent 수정, 즐겨찾기, 상태, 태그, 구체화 답변 변경
type IdeaUpdatedEvent struct {
	BaseEvent
	IdeaID     string                `json:"idea_id"`
	Title      string                `json:"title"`
	Status     models.ProgressStatus `json:"status"`
	IsFavorite bool                  `json:"is_favorite"`
	Tags       []string              `json:"tags"`
}

type IdeaDeletedEvent struct {
	BaseEvent
	IdeaID string `json:"idea_id"`
}

// IdeaAIMergedEvent AI 코칭/이미지 결과가 병합됨
type IdeaAIMergedEvent struct {
	BaseEvent
	IdeaID       string   `json:"idea_id"`
	Fields       []string `json:"fields"`
	SessionCount int      `json:"session_count"`
	HasImage     bool     `json:"has_image"`
}

// SerializeEvent 이벤트를 JSON으로 직렬화하고 타입 정보 반환
func SerializeEvent(event any) ([]byte, EventType, error) {
	var eventType EventType

	switch e := event.(type) {
	case IdeaCreatedEvent:
		eventType = e.Type
	case IdeaUpdatedEvent:
		eventType = e.Type
	case IdeaDeletedEvent:
		eventType = e.Type
	case IdeaAIMergedEvent:
		eventType = e.Type
	default:
		return nil, "", fmt.Errorf("unknown event type: %T", event)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event: %w", err)
	}

	return data, eventType, nil
}
