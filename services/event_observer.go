package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"fire-base/eventbus"
	"fire-base/events"
	"fire-base/logger"
	"fire-base/store"
)

const (
	publishTimeout = 5 * time.Second
	eventQueueSize = 256
)

// ErrEventQueueFull 는 발행 대기열이 가득 차서 이벤트를 버렸을 때 기록된다.
var ErrEventQueueFull = errors.New("idea event queue is full")

type EventRecorder interface {
	ObserveEvent(eventType string, err error)
}

type queuedEvent struct {
	ctx context.Context
	evt eventbus.Event
}

// EventObserver 는 커밋된 스토어 변경을 아이디어 라이프사이클 이벤트로 바꿔 발행한다.
// 요청 고루틴은 대기열에 넣기만 하고, 워커 하나가 받은 순서대로 발행한다.
// 발행 실패는 로그와 메트릭으로만 남고 변경을 되돌리지 않는다.
type EventObserver struct {
	publisher eventbus.Publisher
	topic     string
	recorder  EventRecorder
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan queuedEvent
	done   chan struct{}
}

func NewEventObserver(publisher eventbus.Publisher, topic string, recorder EventRecorder) *EventObserver {
	return newEventObserver(publisher, topic, recorder, eventQueueSize)
}

func newEventObserver(publisher eventbus.Publisher, topic string, recorder EventRecorder, size int) *EventObserver {
	o := &EventObserver{
		publisher: publisher,
		topic:     topic,
		recorder:  recorder,
		now:       time.Now,
		queue:     make(chan queuedEvent, size),
		done:      make(chan struct{}),
	}
	go o.run()
	return o
}

// IdeaChanged 는 블로킹하지 않는다. 대기열이 가득 차면 이벤트를 버린다.
func (o *EventObserver) IdeaChanged(ctx context.Context, c store.Change) {
	payload, eventType := o.buildEvent(c)
	if payload == nil {
		return
	}
	data, _, err := events.SerializeEvent(payload)
	if err != nil {
		logger.ErrorCtx(ctx, "failed to serialize idea event", logger.Fields{"type": string(eventType), "error": err.Error()})
		return
	}
	evt := eventbus.Event{
		ID:      baseID(payload),
		Type:    string(eventType),
		Key:     c.IdeaID,
		Payload: data,
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return
	}
	select {
	// 요청이 끝나도 발행은 마무리한다.
	case o.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), evt: evt}:
	default:
		logger.WarnCtx(ctx, "dropping idea event", logger.Fields{
			"type":    evt.Type,
			"idea_id": c.IdeaID,
		})
		o.record(evt.Type, ErrEventQueueFull)
	}
}

func (o *EventObserver) run() {
	defer close(o.done)
	for q := range o.queue {
		o.publish(q.ctx, q.evt)
	}
}

func (o *EventObserver) publish(ctx context.Context, evt eventbus.Event) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err := o.publisher.Publish(pubCtx, o.topic, evt)
	if err != nil {
		logger.ErrorCtx(ctx, "failed to publish idea event", logger.Fields{
			"type":    evt.Type,
			"idea_id": evt.Key,
			"error":   err.Error(),
		})
	}
	o.record(evt.Type, err)
}

func (o *EventObserver) record(eventType string, err error) {
	if o.recorder != nil {
		o.recorder.ObserveEvent(eventType, err)
	}
}

// Close 는 더 이상 이벤트를 받지 않고 대기열에 남은 이벤트를 발행한 뒤 반환한다.
// ctx 가 먼저 끝나면 남은 이벤트는 워커가 계속 처리하고 Close 는 ctx 오류를 반환한다.
func (o *EventObserver) Close(ctx context.Context) error {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()

	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *EventObserver) PersistFailed(context.Context, string, error) {}

func (o *EventObserver) buildEvent(c store.Change) (any, events.EventType) {
	now := o.now()
	switch c.Kind {
	case store.ChangeCreated:
		return events.IdeaCreatedEvent{
			BaseEvent: events.NewBaseEvent(events.IdeaCreated, now),
			IdeaID:    c.IdeaID,
			Title:     c.Idea.Title,
			Category:  c.Idea.Category,
			IsCustom:  c.Idea.IsCustom,
		}, events.IdeaCreated
	case store.ChangeUpdated:
		return events.IdeaUpdatedEvent{
			BaseEvent:  events.NewBaseEvent(events.IdeaUpdated, now),
			IdeaID:     c.IdeaID,
			Title:      c.Idea.Title,
			Status:     c.Idea.Status,
			IsFavorite: c.Idea.IsFavorite,
			Tags:       c.Idea.Tags,
		}, events.IdeaUpdated
	case store.ChangeDeleted:
		return events.IdeaDeletedEvent{
			BaseEvent: events.NewBaseEvent(events.IdeaDeleted, now),
			IdeaID:    c.IdeaID,
		}, events.IdeaDeleted
	case store.ChangeAIMerged:
		return events.IdeaAIMergedEvent{
			BaseEvent:    events.NewBaseEvent(events.IdeaAIMerged, now),
			IdeaID:       c.IdeaID,
			Fields:       c.Fields,
			SessionCount: len(c.Idea.AICoachingSessions),
			HasImage:     c.Idea.ImageURL != "",
		}, events.IdeaAIMerged
	}
	return nil, ""
}

func baseID(payload any) string {
	switch e := payload.(type) {
	case events.IdeaCreatedEvent:
		return e.ID
	case events.IdeaUpdatedEvent:
		return e.ID
	case events.IdeaDeletedEvent:
		return e.ID
	case events.IdeaAIMergedEvent:
		return e.ID
	}
	return ""
}
