package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls []string
	d.Subscribe(EventGrievanceCreated, func(_ context.Context, _ Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventGrievanceCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventGrievanceAssigned, func(_ context.Context, _ Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventGrievanceCreated, TicketID: "GRV-2024-00001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second:GRV-2024-00001"}, calls)
}

func TestRedisPublisherRegisterIgnoresNil(t *testing.T) {
	var p *RedisPublisher
	assert.NotPanics(t, func() { p.Register(NewInMemoryDispatcher(nil)) })
}

func TestDispatcherRecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	reached := false
	d.Subscribe(EventGrievanceCommentAdded, func(_ context.Context, _ Event) error {
		panic("nil map")
	})
	d.Subscribe(EventGrievanceCommentAdded, func(_ context.Context, _ Event) error {
		reached = true
		return nil
	})

	assert.NotPanics(t, func() {
		_ = d.Publish(context.Background(), Event{Type: EventGrievanceCommentAdded})
	})
	assert.True(t, reached)
}
