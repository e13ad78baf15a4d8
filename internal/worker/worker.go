package worker

import (
	"context"

	"shop-service/internal/broker"
	"shop-service/internal/service"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes domain events and mails the matching notification
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(
	consumer *broker.Consumer,
	notifications *service.NotificationService,
) *NotificationWorker {
	return &NotificationWorker{
		consumer:     consumer,
		eventHandler: NewEventHandler(notifications),
		logger:       util.GetLogger(),
	}
}

// NewEventHandler routes every event type the worker understands to notifications
func NewEventHandler(notifications *service.NotificationService) *broker.EventHandler {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnUserRegistered(notifications.HandleUserRegistered)
	eventHandler.OnOrderCreated(notifications.HandleOrderCreated)
	eventHandler.OnOrderStatusChanged(notifications.HandleOrderStatusChanged)

	return eventHandler
}

// Start starts the worker. It blocks until ctx is done.
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}
