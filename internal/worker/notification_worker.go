package worker

import (
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/service"
)

// StartNotificationWorker registers notification handlers and, when given,
// the Redis forwarder on the dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, publisher *events.RedisPublisher) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	publisher.Register(dispatcher)
}
