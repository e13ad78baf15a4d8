package worker

import (
	"context"
	"encoding/json"
	"testing"

	"shop-service/internal/mailer"
	"shop-service/internal/models"
	"shop-service/internal/service"
	"shop-service/internal/store/memory"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	sent []mailer.Message
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Key: []byte("order-1"), Value: value}
}

func TestEventHandlerMailsEachEventOnce(t *testing.T) {
	ctx := context.Background()
	renderer, err := mailer.NewRenderer("http://shop.test")
	require.NoError(t, err)
	m := &recordingMailer{}
	handler := NewEventHandler(service.NewNotificationService(memory.New(), m, renderer))

	created := message(t, &models.OrderCreatedEvent{
		BaseEvent:     models.NewBaseEvent(models.EventTypeOrderCreated),
		OrderID:       1,
		UserID:        7,
		Name:          "Jane",
		Email:         "jane@example.com",
		TotalMoney:    500,
		TotalQuantity: 5,
		Items:         []models.OrderItemData{{ProductID: 1, ProductName: "Juice", Quantity: 5, UnitPrice: 100}},
	})
	changed := message(t, &models.OrderStatusChangedEvent{
		BaseEvent:  models.NewBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:    1,
		UserID:     7,
		Email:      "jane@example.com",
		FromStatus: models.OrderStatusPending,
		ToStatus:   models.OrderStatusProcessing,
		StatusDesc: "Processing",
	})

	require.NoError(t, handler.HandleMessage(ctx, created))
	require.NoError(t, handler.HandleMessage(ctx, changed))
	require.NoError(t, handler.HandleMessage(ctx, created))

	require.Len(t, m.sent, 2)
	assert.Equal(t, "Order #1 received", m.sent[0].Subject)
	assert.Contains(t, m.sent[0].HTML, "500")
	assert.Equal(t, "Order #1 is now Processing", m.sent[1].Subject)
}
