// Package registry maps outbox event types to their Pub/Sub topic and payload
// schema, and decodes stored rows back into typed events.
package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db/models"
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	"github.com/angelmondragon/vendorkyc-backend/pkg/outbox"
	"github.com/angelmondragon/vendorkyc-backend/pkg/outbox/payloads"
)

type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() any
}

// ResolvedEvent is a validated outbox row with its payload decoded.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    any
}

type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError marks a row that will never publish; the relay parks it in
// the DLQ on first sight.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error { return e.Err }

func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

func vendorEvent[P any](eventType enums.OutboxEventType, topic string) EventDescriptor {
	return EventDescriptor{
		EventType:      eventType,
		AggregateType:  enums.AggregateVendorApplication,
		Topic:          topic,
		PayloadFactory: func() any { return new(P) },
	}
}

// NewEventRegistry routes every vendor application event to the vendor events
// topic. Subscribers split on the event_type attribute.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	topic := cfg.VendorEventsTopic
	if topic == "" {
		return nil, errors.New("vendor events topic is required")
	}

	descriptors := []EventDescriptor{
		vendorEvent[payloads.VendorRegisteredEvent](enums.EventVendorRegistered, topic),
		vendorEvent[payloads.VendorStatusChangedEvent](enums.EventVendorStatusChanged, topic),
		vendorEvent[payloads.VendorDocumentAddedEvent](enums.EventVendorDocumentAdded, topic),
		vendorEvent[payloads.VendorDocumentRemovedEvent](enums.EventVendorDocumentRemoved, topic),
	}
	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor, len(descriptors))}
	for _, desc := range descriptors {
		reg.entries[desc.EventType] = desc
	}
	return reg, nil
}

// Resolve checks the row against its descriptor and decodes the payload. Every
// failure is a NonRetryableError: a malformed row stays malformed.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, err := r.descriptorFor(event)
	if err != nil {
		return nil, NewNonRetryableError(err)
	}
	envelope, payload, err := decode(desc, event)
	if err != nil {
		return nil, NewNonRetryableError(err)
	}
	return &ResolvedEvent{Descriptor: desc, Envelope: envelope, Payload: payload}, nil
}

func (r *EventRegistry) descriptorFor(event models.OutboxEvent) (EventDescriptor, error) {
	desc, ok := r.entries[event.EventType]
	switch {
	case !ok:
		return desc, fmt.Errorf("unsupported event type %s", event.EventType)
	case desc.AggregateType != event.AggregateType:
		return desc, fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType)
	case event.AggregateID == uuid.Nil:
		return desc, errors.New("missing aggregate_id")
	}
	return desc, nil
}

func decode(desc EventDescriptor, event models.OutboxEvent) (outbox.PayloadEnvelope, any, error) {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return envelope, nil, fmt.Errorf("decode envelope: %w", err)
	}
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return envelope, nil, fmt.Errorf("payload missing for %s", event.EventType)
	}
	payload := desc.PayloadFactory()
	if err := json.Unmarshal(data, payload); err != nil {
		return envelope, nil, fmt.Errorf("decode %s payload: %w", event.EventType, err)
	}
	return envelope, payload, nil
}
