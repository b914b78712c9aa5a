package eventbus

import (
	"context"
	"encoding/json"
	"sync"
)

// Event는 Kafka 메시지의 페이로드로 사용되는 봉투(envelope)입니다.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Key     string          `json:"key,omitempty"` // 파티션 키. 비어 있으면 ID 를 사용합니다.
	Payload json.RawMessage `json:"payload"`
}

// Publisher 는 이벤트 발행의 추상화입니다. 아이디어 서비스는 발행만 하고 구독하지 않습니다.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// NoopPublisher 는 브로커가 설정되지 않았을 때 사용합니다.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, Event) error { return nil }
func (NoopPublisher) Close()                                       {}

// MemoryPublisher 는 발행된 이벤트를 메모리에 보관합니다. 테스트와 로컬 실행용입니다.
type MemoryPublisher struct {
	mu     sync.Mutex
	events map[string][]Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{events: map[string][]Event{}}
}

func (m *MemoryPublisher) Publish(_ context.Context, topic string, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[topic] = append(m.events[topic], event)
	return nil
}

func (m *MemoryPublisher) Close() {}

// Events 는 topic 에 발행된 이벤트의 복사본을 반환합니다.
func (m *MemoryPublisher) Events(topic string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events[topic]...)
}
