package service

import (
	"context"
	"fmt"

	"shop-service/internal/mailer"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// NotificationService turns consumed domain events into emails. Each event
// is mailed at most once per successful delivery: the event id is recorded
// after the send, so a redelivered event that was already mailed is skipped.
type NotificationService struct {
	store    store.Repository
	mailer   mailer.Mailer
	renderer *mailer.Renderer
	logger   *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(store store.Repository, m mailer.Mailer, renderer *mailer.Renderer) *NotificationService {
	return &NotificationService{
		store:    store,
		mailer:   m,
		renderer: renderer,
		logger:   util.GetLogger(),
	}
}

// HandleUserRegistered sends the activation email
func (ns *NotificationService) HandleUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error {
	ctx, span := util.StartSpan(ctx, "NotificationService.HandleUserRegistered")
	defer span.End()

	return ns.deliver(ctx, event.BaseEvent, mailer.TemplateActivation, func() (mailer.Message, error) {
		return ns.renderer.Activation(event)
	})
}

// HandleOrderCreated sends the order confirmation
func (ns *NotificationService) HandleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	ctx, span := util.StartSpan(ctx, "NotificationService.HandleOrderCreated")
	defer span.End()

	return ns.deliver(ctx, event.BaseEvent, mailer.TemplateOrderCreated, func() (mailer.Message, error) {
		return ns.renderer.OrderCreated(event)
	})
}

// HandleOrderStatusChanged sends the status change notification
func (ns *NotificationService) HandleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	ctx, span := util.StartSpan(ctx, "NotificationService.HandleOrderStatusChanged")
	defer span.End()

	return ns.deliver(ctx, event.BaseEvent, mailer.TemplateOrderStatus, func() (mailer.Message, error) {
		return ns.renderer.OrderStatus(event)
	})
}

func (ns *NotificationService) deliver(ctx context.Context, event models.BaseEvent, template string, render func() (mailer.Message, error)) error {
	processed, err := ns.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		ns.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	msg, err := render()
	if err != nil {
		util.EmailsSentTotal.WithLabelValues(template, "render_error").Inc()
		ns.logger.Error("Failed to render email, skipping event",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		return nil
	}
	if msg.To == "" {
		ns.logger.Warn("Event has no recipient, skipping", zap.String("event_id", event.EventID))
		return ns.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
	}

	if err := ns.mailer.Send(ctx, msg); err != nil {
		util.EmailsSentTotal.WithLabelValues(template, "error").Inc()
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	util.EmailsSentTotal.WithLabelValues(template, "success").Inc()

	if err := ns.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}

	ns.logger.Info("Notification sent",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("template", template),
	)
	return nil
}
