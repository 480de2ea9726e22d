package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/events"
)

// Notification is the outbound message rendered for a grievance event.
type Notification struct {
	TicketID string
	Subject  string
	Body     string
	Email    bool
	Webhook  bool
}

// NotificationService turns grievance events into complainant and staff
// notifications. Delivery is logged only; no mail or webhook client is wired.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to every grievance event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	note, ok := RenderNotification(event)
	if !ok {
		n.logger.Debug("no notification for event", zap.String("event_type", string(event.Type)))
		return nil
	}
	n.logger.Info("grievance notification",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", note.TicketID),
		zap.String("subject", note.Subject),
	)
	if note.Email {
		n.deliverEmail(ctx, note)
	}
	if note.Webhook {
		n.deliverWebhook(ctx, event, note)
	}
	return nil
}

// RenderNotification builds the message for event. It reports false for
// events whose payload it does not recognise.
func RenderNotification(event events.Event) (Notification, bool) {
	note := Notification{TicketID: event.TicketID}
	switch payload := event.Payload.(type) {
	case events.GrievanceCreatedPayload:
		note.Subject = fmt.Sprintf("Grievance %s registered", event.TicketID)
		note.Body = fmt.Sprintf("Your grievance %q was registered with %s priority.", payload.Subject, payload.Priority)
		note.Email, note.Webhook = true, true
	case events.GrievanceStatusChangedPayload:
		note.Subject = fmt.Sprintf("Grievance %s is now %s", event.TicketID, payload.NewStatus)
		note.Body = fmt.Sprintf("Status changed from %s to %s.", payload.OldStatus, payload.NewStatus)
		if payload.Comment != "" {
			note.Body += " " + payload.Comment
		}
		note.Email, note.Webhook = true, true
	case events.GrievanceAssignedPayload:
		note.Subject = fmt.Sprintf("Grievance %s assigned", event.TicketID)
		note.Body = fmt.Sprintf("Assigned to %s.", payload.AssigneeName)
		note.Webhook = true
	case events.GrievanceCommentAddedPayload:
		note.Subject = fmt.Sprintf("New comment on grievance %s", event.TicketID)
		note.Body = payload.BodyPreview
		note.Email = true
	default:
		return Notification{}, false
	}
	return note, true
}

func (n *NotificationService) deliverEmail(_ context.Context, note Notification) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email notification queued",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", note.TicketID),
		zap.String("subject", note.Subject))
}

func (n *NotificationService) deliverWebhook(_ context.Context, event events.Event, note Notification) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification queued",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", note.TicketID),
		zap.String("event_id", event.ID))
}
