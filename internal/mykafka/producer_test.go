package mykafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_RequiresTopics(t *testing.T) {
	t.Parallel()

	_, err := NewProducer([]string{"localhost:9092"}, nil)
	require.Error(t, err)
}

func TestProducer_Disabled(t *testing.T) {
	t.Parallel()

	p, err := NewProducer(nil, []string{"user_events"})
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	require.NoError(t, p.PublishEvent(context.Background(), "user_events", "1", map[string]any{"type": "user_registered"}))
	require.NoError(t, p.Close())
}

func TestProducer_RejectsBadInput(t *testing.T) {
	t.Parallel()

	p, err := NewProducer(nil, []string{"user_events"})
	require.NoError(t, err)

	err = p.PublishEvent(context.Background(), "cart_events", "1", map[string]any{})
	assert.ErrorContains(t, err, "unknown topic")

	err = p.PublishEvent(context.Background(), "user_events", "1", map[string]any{"bad": make(chan int)})
	assert.ErrorContains(t, err, "json.Marshal")
}

func TestProducer_EnabledWithBrokers(t *testing.T) {
	t.Parallel()

	p, err := NewProducer([]string{"localhost:9092"}, []string{"user_events"})
	require.NoError(t, err)
	assert.True(t, p.Enabled())
	require.NoError(t, p.Close())
}
