package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerClientPassesThrough(t *testing.T) {
	inner := &fakeClient{response: "ok"}
	client := NewBreakerClient(inner, DefaultBreakerConfig(), nil)

	resp, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
}

func TestBreakerClientOpensAfterFailures(t *testing.T) {
	inner := &fakeClient{err: errors.New("upstream down")}
	client := NewBreakerClient(inner, DefaultBreakerConfig(), nil)

	for i := 0; i < 5; i++ {
		_, err := client.Chat(context.Background(), nil)
		require.Error(t, err)
	}

	_, err := client.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreakerClientDisabledReturnsInner(t *testing.T) {
	inner := &fakeClient{response: "ok"}
	client := NewBreakerClient(inner, BreakerConfig{Enabled: false}, nil)
	assert.Same(t, inner, client)
}
