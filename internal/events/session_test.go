package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OrderDeskPlatform/pkg/logger"
	"OrderDeskPlatform/pkg/rabbitmq"
)

type capturingProducer struct {
	bodies  [][]byte
	options []rabbitmq.PublishOptions
	err     error
}

func (c *capturingProducer) Publish(_ context.Context, body []byte, options ...rabbitmq.PublishOption) error {
	var opts rabbitmq.PublishOptions
	for _, option := range options {
		option(&opts)
	}
	c.bodies = append(c.bodies, body)
	c.options = append(c.options, opts)
	return c.err
}

func TestSessionPublisher_LoggedIn(t *testing.T) {
	producer := &capturingProducer{}
	publisher := NewSessionPublisher(producer, logger.NewNop())
	publisher.now = func() time.Time { return time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC) }

	publisher.LoggedIn(context.Background(), "ACME01")

	require.Len(t, producer.bodies, 1)
	var event SessionEvent
	require.NoError(t, json.Unmarshal(producer.bodies[0], &event))

	assert.Equal(t, TypeLogin, event.Type)
	assert.Equal(t, "ACME01", event.CustomerID)
	assert.NotEmpty(t, event.ID)
	assert.True(t, event.Timestamp.Equal(time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)))

	assert.Equal(t, event.ID, producer.options[0].MessageID)
	assert.Equal(t, TypeLogin, producer.options[0].Type)
}

func TestSessionPublisher_LoggedOut(t *testing.T) {
	producer := &capturingProducer{}
	NewSessionPublisher(producer, logger.NewNop()).LoggedOut(context.Background(), "ACME01")

	require.Len(t, producer.options, 1)
	assert.Equal(t, TypeLogout, producer.options[0].Type)
}

func TestSessionPublisher_FailureIsSwallowed(t *testing.T) {
	producer := &capturingProducer{err: errors.New("channel closed")}
	publisher := NewSessionPublisher(producer, logger.NewNop())

	assert.NotPanics(t, func() { publisher.LoggedIn(context.Background(), "ACME01") })
	assert.Len(t, producer.bodies, 1)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NotPanics(t, func() {
		p.LoggedIn(context.Background(), "ACME01")
		p.LoggedOut(context.Background(), "ACME01")
	})
}
