package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	"github.com/vendorahq/vendora-backend/pkg/logger"
	"github.com/vendorahq/vendora-backend/pkg/outbox"
	"github.com/vendorahq/vendora-backend/pkg/outbox/idempotency"
	"github.com/vendorahq/vendora-backend/pkg/outbox/payloads"
)

const orderNotificationConsumer = "order-notifications"

type notificationWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type vendorUserLoader interface {
	ListVendorUsers(ctx context.Context, companyID uuid.UUID) ([]models.User, error)
}

// Consumer turns domain events from the Pub/Sub subscription into
// per-recipient notification rows.
type Consumer struct {
	repo         notificationWriter
	users        vendorUserLoader
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(repo notificationWriter, users vendorUserLoader, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("vendor user loader required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		users:        users,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	if !eventType.IsValid() {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, orderNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, orderNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventOrderCreated:
		var payload payloads.OrderCreatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse order_created payload: %w", err)
		}
		return c.notifyVendor(ctx, payload.CompanyID, models.Notification{
			Kind:    enums.NotificationKindOrderCreated,
			Title:   "New order received",
			Body:    fmt.Sprintf("Order %s was placed with %d item(s).", payload.OrderNumber, payload.ItemCount),
			OrderID: &payload.OrderID,
		}, logCtx)

	case enums.EventOrderStatusChanged:
		var payload payloads.OrderStatusChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse order_status_changed payload: %w", err)
		}
		return c.create(ctx, &models.Notification{
			RecipientID: payload.UserID,
			Kind:        enums.NotificationKindOrderStatus,
			Title:       "Order update",
			Body:        fmt.Sprintf("Order %s is now %s.", payload.OrderNumber, payload.ToStatus),
			OrderID:     &payload.OrderID,
		}, logCtx)

	case enums.EventDriverAssigned:
		var payload payloads.DriverAssignedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse driver_assigned payload: %w", err)
		}
		return c.create(ctx, &models.Notification{
			RecipientID: payload.DriverID,
			Kind:        enums.NotificationKindDriverAssigned,
			Title:       "Delivery assigned",
			Body:        fmt.Sprintf("You were assigned to deliver order %s.", payload.OrderNumber),
			OrderID:     &payload.OrderID,
		}, logCtx)

	case enums.EventCashCollected:
		var payload payloads.CashCollectedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse cash_collected payload: %w", err)
		}
		return c.notifyVendor(ctx, payload.CompanyID, models.Notification{
			Kind:    enums.NotificationKindCashCollected,
			Title:   "Cash collected",
			Body:    fmt.Sprintf("Cash for order %s was reconciled.", payload.OrderNumber),
			OrderID: &payload.OrderID,
		}, logCtx)

	default:
		c.logg.Info(logCtx, "event type not handled")
		return nil
	}
}

// notifyVendor fans the template out to every active user of the company.
func (c *Consumer) notifyVendor(ctx context.Context, companyID uuid.UUID, template models.Notification, logCtx context.Context) error {
	if companyID == uuid.Nil {
		return fmt.Errorf("company id missing")
	}
	users, err := c.users.ListVendorUsers(ctx, companyID)
	if err != nil {
		return fmt.Errorf("load vendor users: %w", err)
	}
	for _, user := range users {
		notification := template
		notification.ID = uuid.Nil
		notification.RecipientID = user.ID
		if err := c.create(ctx, &notification, logCtx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Consumer) create(ctx context.Context, notification *models.Notification, logCtx context.Context) error {
	if notification.RecipientID == uuid.Nil {
		return fmt.Errorf("recipient id missing")
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(c.logg.WithFields(logCtx, map[string]any{
		"recipient_id": notification.RecipientID.String(),
		"kind":         string(notification.Kind),
	}), "notification created")
	return nil
}
