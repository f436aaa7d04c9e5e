package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/pkg/config"
	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	"github.com/vendorahq/vendora-backend/pkg/outbox"
	"github.com/vendorahq/vendora-backend/pkg/outbox/payloads"
)

func testRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{
		DomainTopic:        "vendora-domain",
		DomainSubscription: "vendora-domain-sub",
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func envelopeRow(t *testing.T, eventType enums.OutboxEventType, aggregate enums.OutboxAggregateType, data any) models.OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       raw,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: aggregate,
		AggregateID:   uuid.New(),
		Payload:       payload,
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{}); err == nil {
		t.Fatal("expected error for missing topic")
	}
}

func TestResolveOrderCreated(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.EventOrderCreated, enums.AggregateOrder, payloads.OrderCreatedEvent{
		OrderID:     uuid.New(),
		OrderNumber: "VD-100",
		TotalCents:  3500,
	})

	resolved, err := reg.Resolve(row)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "vendora-domain" {
		t.Fatalf("unexpected topic %q", resolved.Descriptor.Topic)
	}
	event, ok := resolved.Payload.(*payloads.OrderCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if event.OrderNumber != "VD-100" {
		t.Fatalf("unexpected order number %q", event.OrderNumber)
	}
}

func TestResolveRejectsUnknownEventType(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.OutboxEventType("order_archived"), enums.AggregateOrder, struct{}{})

	_, err := reg.Resolve(row)
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error, got %T", err)
	}
}

func TestResolveRejectsAggregateMismatch(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.EventCashCollected, enums.AggregateOrder, payloads.CashCollectedEvent{})

	var nonRetryable NonRetryableError
	if _, err := reg.Resolve(row); !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable aggregate mismatch, got %v", err)
	}
}

func TestResolveRejectsEmptyPayload(t *testing.T) {
	reg := testRegistry(t)
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       json.RawMessage("null"),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       payload,
	}

	var nonRetryable NonRetryableError
	if _, err := reg.Resolve(row); !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable empty payload error, got %v", err)
	}
}
