package store

import (
	"context"

	"fire-base/models"
)

type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeAIMerged ChangeKind = "ai_merged"
)

// Change 는 커밋된 변경 하나다. 삭제에서는 Idea 가 비어 있고,
// Fields 는 AI 병합에서만 채워진다.
type Change struct {
	Kind   ChangeKind
	IdeaID string
	Idea   models.Idea
	Fields []string
}

// Observer 는 데이터 락이 풀린 뒤 커밋 순서대로 호출된다.
// 알림 중에는 다음 커밋의 알림이 대기하므로 옵저버는 빨리 반환해야 하고
// 스토어를 변경해서는 안 된다. 읽기는 허용된다.
type Observer interface {
	IdeaChanged(ctx context.Context, c Change)
	PersistFailed(ctx context.Context, op string, err error)
}
