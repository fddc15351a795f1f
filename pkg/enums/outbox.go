package enums

// OutboxAggregateType names the entity an outbox event belongs to.
type OutboxAggregateType string

const AggregateVendorApplication OutboxAggregateType = "vendor_application"

var aggregateTypes = []OutboxAggregateType{AggregateVendorApplication}

func (a OutboxAggregateType) IsValid() bool { return member(aggregateTypes, a) }

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	return parse(aggregateTypes, "aggregate type", value, false)
}

// OutboxEventType names a domain event written to the outbox. Values double
// as the Pub/Sub event_type attribute.
type OutboxEventType string

const (
	EventVendorRegistered      OutboxEventType = "vendor_registered"
	EventVendorStatusChanged   OutboxEventType = "vendor_status_changed"
	EventVendorDocumentAdded   OutboxEventType = "vendor_document_added"
	EventVendorDocumentRemoved OutboxEventType = "vendor_document_removed"
)

var outboxEventTypes = []OutboxEventType{
	EventVendorRegistered,
	EventVendorStatusChanged,
	EventVendorDocumentAdded,
	EventVendorDocumentRemoved,
}

func (e OutboxEventType) IsValid() bool { return member(outboxEventTypes, e) }

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	return parse(outboxEventTypes, "event type", value, false)
}

// OutboxDLQErrorReason records why an outbox event was parked in the DLQ.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

func (r OutboxDLQErrorReason) String() string { return string(r) }

func (r OutboxDLQErrorReason) IsValid() bool {
	return r == OutboxDLQReasonMaxAttempts || r == OutboxDLQReasonNonRetryable
}
