package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPublisher(t *testing.T) {
	pub := NewMemoryPublisher()
	ctx := context.Background()

	require.NoError(t, pub.Publish(ctx, "ideas", Event{ID: "1", Type: "idea.created"}))
	require.NoError(t, pub.Publish(ctx, "ideas", Event{ID: "2", Type: "idea.deleted"}))
	require.NoError(t, pub.Publish(ctx, "other", Event{ID: "3"}))

	events := pub.Events("ideas")
	require.Len(t, events, 2)
	assert.Equal(t, "1", events[0].ID)
	assert.Equal(t, "2", events[1].ID)

	// 반환값 수정이 내부 상태에 영향을 주지 않아야 함
	events[0].ID = "changed"
	assert.Equal(t, "1", pub.Events("ideas")[0].ID)
	assert.Empty(t, pub.Events("missing"))
}

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = NoopPublisher{}
	assert.NoError(t, pub.Publish(context.Background(), "ideas", Event{ID: "1"}))
	pub.Close()
}
