package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db/models"
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	"github.com/angelmondragon/vendorkyc-backend/pkg/outbox"
	"github.com/angelmondragon/vendorkyc-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 500
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type RelayParams struct {
	Outbox           config.OutboxConfig
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	DLQRepository    dlqRepository
	PublisherFactory publisherFactory
}

// Relay moves committed outbox rows for vendor applications onto Pub/Sub.
// Rows of one application are published in insertion order: once a row fails
// the remaining rows of that application wait for the next batch.
type Relay struct {
	logg         *logger.Logger
	db           dbClient
	repo         outboxRepository
	pubsub       pubSubClient
	registry     registryResolver
	dlq          dlqRepository
	publisherFor publisherFactory
	publishers   map[string]publisher
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewRelay(params RelayParams) (*Relay, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository is required")
	case params.Registry == nil:
		return nil, errors.New("event registry is required")
	case params.DLQRepository == nil:
		return nil, errors.New("dlq repository is required")
	}

	factory := params.PublisherFactory
	if factory == nil {
		factory = func(topic string) publisher {
			return newGCPPublisher(params.PubSub.Publisher(topic))
		}
	}

	batch := params.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	pollMs := params.Outbox.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := params.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Relay{
		logg:         params.Logger,
		db:           params.DB,
		repo:         params.Repository,
		pubsub:       params.PubSub,
		registry:     params.Registry,
		dlq:          params.DLQRepository,
		publisherFor: factory,
		publishers:   map[string]publisher{},
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
	}, nil
}

// Run polls until ctx is cancelled, backing off while batches fail.
func (r *Relay) Run(ctx context.Context) error {
	for name, ping := range map[string]func(context.Context) error{"database": r.db.Ping, "pubsub": r.pubsub.Ping} {
		if err := ping(ctx); err != nil {
			r.logg.Error(ctx, name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
	}

	backoff := r.pollInterval
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome, err := r.relayBatch(ctx)
		switch {
		case err != nil:
			r.logg.Error(ctx, "outbox.batch_failed", err)
		case outcome.deferred > 0:
			r.logg.Warn(r.logg.WithFields(ctx, map[string]any{
				"settled":  outcome.settled,
				"deferred": outcome.deferred,
			}), "outbox.batch_deferred")
		default:
			backoff = r.pollInterval
			if outcome.settled > 0 {
				continue
			}
			if err := sleep(ctx, withJitter(r.pollInterval)); err != nil {
				return err
			}
			continue
		}

		// a failed publish spends one attempt; wait before spending the next
		backoff = nextBackoff(backoff, r.pollInterval, maxBackoff)
		if err := sleep(ctx, withJitter(backoff)); err != nil {
			return err
		}
	}
}

// batchOutcome counts rows that left the outbox (published or dead-lettered)
// and rows that failed and stay pending.
type batchOutcome struct {
	settled  int
	deferred int
}

// relayBatch handles one locked batch.
func (r *Relay) relayBatch(ctx context.Context) (batchOutcome, error) {
	var outcome batchOutcome
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := r.repo.FetchUnpublishedForPublish(tx, r.batchSize, r.maxAttempts)
		if err != nil {
			return err
		}

		blocked := map[uuid.UUID]bool{}
		for _, event := range events {
			if blocked[event.AggregateID] {
				continue
			}
			ok, err := r.relayOne(ctx, tx, event)
			if err != nil {
				return err
			}
			if !ok {
				outcome.deferred++
				blocked[event.AggregateID] = true
				continue
			}
			outcome.settled++
		}
		return nil
	})
	return outcome, err
}

// relayOne reports false when the row stays pending for a later attempt.
func (r *Relay) relayOne(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) (bool, error) {
	resolved, err := r.registry.Resolve(event)
	if err != nil {
		return true, r.deadLetter(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, err, eventFields(event, outbox.PayloadEnvelope{}, ""))
	}

	fields := eventFields(event, resolved.Envelope, resolved.Descriptor.Topic)
	pubErr := r.publish(ctx, event, resolved)
	if pubErr == nil {
		if err := r.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return false, fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		r.logg.Info(r.logg.WithFields(ctx, fields), "outbox.event_published")
		return true, nil
	}

	var nonRetry registry.NonRetryableError
	if errors.As(pubErr, &nonRetry) {
		return true, r.deadLetter(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, pubErr, fields)
	}

	nextAttempt := event.AttemptCount + 1
	fields["attempt_count"] = nextAttempt
	if nextAttempt >= r.maxAttempts {
		return true, r.deadLetter(ctx, tx, event, enums.OutboxDLQReasonMaxAttempts, fmt.Errorf("max publish attempts reached: %w", pubErr), fields)
	}

	logCtx := r.logg.WithField(r.logg.WithFields(ctx, fields), "error", pubErr.Error())
	r.logg.Warn(logCtx, "outbox.publish_failed")
	if err := r.repo.MarkFailedTx(tx, event.ID, pubErr); err != nil {
		return false, fmt.Errorf("mark failure %s: %w", event.ID, err)
	}
	return false, nil
}

func (r *Relay) deadLetter(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error, fields map[string]any) error {
	fields["error_reason"] = reason
	logCtx := r.logg.WithField(r.logg.WithFields(ctx, fields), "error", cause.Error())
	r.logg.Warn(logCtx, "outbox.event_dead_lettered")

	msg := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &msg,
		AttemptCount:  event.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if err := r.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("insert dlq %s: %w", event.ID, err)
	}
	if err := r.repo.MarkTerminalTx(tx, event.ID, cause, r.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	return nil
}

func (r *Relay) topicPublisher(topic string) publisher {
	if pub, ok := r.publishers[topic]; ok {
		return pub
	}
	pub := r.publisherFor(topic)
	if pub != nil {
		r.publishers[topic] = pub
	}
	return pub
}

func (r *Relay) publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := r.topicPublisher(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}

	msg := &gcppubsub.Message{
		Data:       event.Payload,
		Attributes: messageAttributes(event, resolved.Envelope),
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := pub.Publish(publishCtx, msg)
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	_, err := result.Get(publishCtx)
	return err
}

func messageAttributes(event models.OutboxEvent, envelope outbox.PayloadEnvelope) map[string]string {
	eventID := envelope.EventID
	if eventID == "" {
		eventID = event.ID.String()
	}
	return map[string]string{
		"event_id":       eventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func eventFields(event models.OutboxEvent, envelope outbox.PayloadEnvelope, topic string) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if envelope.EventID != "" {
		fields["event_id"] = envelope.EventID
	}
	if topic != "" {
		fields["topic"] = topic
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	if next := current * 2; next < max {
		return next
	}
	return max
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}

type gcpPublisher struct {
	p *gcppubsub.Publisher
}

func newGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{p: p}
}

func (g *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return g.p.Publish(ctx, msg)
}
