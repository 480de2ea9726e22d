package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
)

func TestRenderNotification(t *testing.T) {
	note, ok := RenderNotification(events.Event{
		TicketID: "GRV-2024-00007",
		Payload: events.GrievanceStatusChangedPayload{
			OldStatus: domain.StatusPending,
			NewStatus: domain.StatusResolved,
			Comment:   "Fixed",
		},
	})
	require.True(t, ok)
	assert.Equal(t, "Grievance GRV-2024-00007 is now resolved", note.Subject)
	assert.Equal(t, "Status changed from pending to resolved. Fixed", note.Body)
	assert.True(t, note.Email)
	assert.True(t, note.Webhook)

	note, ok = RenderNotification(events.Event{
		TicketID: "GRV-2024-00007",
		Payload:  events.GrievanceAssignedPayload{AssigneeID: "u1", AssigneeName: "ravi"},
	})
	require.True(t, ok)
	assert.Equal(t, "Assigned to ravi.", note.Body)
	assert.False(t, note.Email)

	_, ok = RenderNotification(events.Event{Payload: map[string]string{}})
	assert.False(t, ok)
}

func TestNotificationServiceHandlesDispatchedEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	ns := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{EmailFrom: "noreply@example.com"})
	ns.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventGrievanceCreated,
		TicketID: "GRV-2024-00001",
		Payload:  events.GrievanceCreatedPayload{Subject: "Broken streetlight", Priority: domain.PriorityHigh},
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("grievance notification").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "GRV-2024-00001", entries[0].ContextMap()["ticket_id"])
}
