package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/navalha-app/navalha/libs/db"
	"github.com/navalha-app/navalha/libs/kafkax"
	otelx "github.com/navalha-app/navalha/libs/otel"
	"github.com/segmentio/kafka-go"
)

const (
	TopicChargeConfirmed = "payment.charge.confirmed.v1"
	TopicChargeExpired   = "payment.charge.expired.v1"
	TopicChargeFailed    = "payment.charge.failed.v1"
)

type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// ChargeEvent is the payload for all payment.charge.*.v1 topics. The agenda
// service keys its appointment updates off AppointmentID and Status.
type ChargeEvent struct {
	PaymentID     string `json:"payment_id"`
	BusinessID    string `json:"business_id"`
	AppointmentID string `json:"appointment_id"`
	Provider      string `json:"provider"`
	AmountCents   int64  `json:"amount_cents"`
	Status        string `json:"status"`
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, evt Event) error {
	traceparent, tracestate := otelx.TraceContextStrings(ctx)
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox_events (aggregate_type, aggregate_id, event_type, payload, traceparent, tracestate)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, evt.AggregateType, evt.AggregateID, evt.EventType, evt.Payload, traceparent, tracestate)
	return err
}

type pending struct {
	id          int64
	eventID     string
	aggregateID string
	eventType   string
	payload     []byte
	traceparent string
	tracestate  string
}

// Publisher relays committed charge events to Kafka. Events for one payment
// share the payment ID as partition key, so settlement ordering holds.
type Publisher struct {
	pool      *db.Pool
	logger    *slog.Logger
	brokers   []string
	pollEvery time.Duration
	batchSize int
}

func NewPublisher(pool *db.Pool, logger *slog.Logger, brokers string, pollEvery time.Duration) *Publisher {
	if pollEvery <= 0 {
		pollEvery = 2 * time.Second
	}
	return &Publisher{
		pool:      pool,
		logger:    logger,
		brokers:   kafkax.SplitBrokers(brokers),
		pollEvery: pollEvery,
		batchSize: 50,
	}
}

func (p *Publisher) Run(ctx context.Context) {
	if len(p.brokers) == 0 {
		p.logger.Warn("outbox publisher disabled (no kafka brokers configured)")
		return
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  p.brokers,
		Balancer: &kafka.Hash{},
	})
	defer writer.Close()

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.relay(ctx, writer); err != nil {
				p.logger.Error("outbox publish failed", "err", err)
			}
		}
	}
}

func (p *Publisher) relay(ctx context.Context, writer *kafka.Writer) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, event_id, aggregate_id, event_type, payload, traceparent, tracestate
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, p.batchSize)
	if err != nil {
		return err
	}
	var batch []pending
	for rows.Next() {
		var evt pending
		if err := rows.Scan(&evt.id, &evt.eventID, &evt.aggregateID, &evt.eventType, &evt.payload, &evt.traceparent, &evt.tracestate); err != nil {
			rows.Close()
			return err
		}
		batch = append(batch, evt)
	}
	rows.Close()
	if rows.Err() != nil {
		return rows.Err()
	}
	if len(batch) == 0 {
		return tx.Commit(ctx)
	}

	ids := make([]int64, 0, len(batch))
	for _, evt := range batch {
		msgCtx := otelx.ContextWithTraceContext(ctx, evt.traceparent, evt.tracestate)
		msg := kafka.Message{
			Topic: evt.eventType,
			Key:   []byte(evt.aggregateID),
			Value: evt.payload,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(evt.eventID)},
				{Key: "event_type", Value: []byte(evt.eventType)},
			},
		}
		msg.Headers = kafkax.InjectTraceHeaders(msgCtx, msg.Headers)
		if err := writer.WriteMessages(ctx, msg); err != nil {
			return err
		}
		ids = append(ids, evt.id)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE outbox_events
		SET published_at = now()
		WHERE id = ANY($1)
	`, ids); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
