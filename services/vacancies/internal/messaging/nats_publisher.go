package messaging

import (
	"context"
	"encoding/json"
	"time"

	"vacancyhub/common/telemetry"
	"vacancyhub/services/vacancies/internal/errors"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("vacancyhub/vacancies/messaging")

const (
	IngestedSubject = "vacancies.events.ingested"
)

// IngestedEvent announces that a keyword's vacancies were added to the store.
type IngestedEvent struct {
	Keyword    string    `json:"keyword"`
	Count      int       `json:"count"`
	IngestedAt time.Time `json:"ingested_at"`
}

type Publisher interface {
	PublishIngested(ctx context.Context, event IngestedEvent) error
	Close()
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewPublisher publishes on an existing connection. Close flushes pending
// messages but leaves the connection open for its owner.
func NewPublisher(logger *zap.Logger, conn *nats.Conn) Publisher {
	return &natsPublisher{
		conn:   conn,
		logger: logger,
	}
}

func (p *natsPublisher) PublishIngested(ctx context.Context, event IngestedEvent) error {
	_, span := tracer.Start(ctx, "PublishIngested")
	defer span.End()

	data, err := encodeIngested(event)
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(
		telemetry.String("nats.subject", IngestedSubject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(IngestedSubject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish ingested event",
			zap.String("keyword", event.Keyword),
			zap.Error(err))
		return errors.Unavailable("publishing to NATS", err)
	}

	p.logger.Debug("published ingested event",
		zap.String("keyword", event.Keyword),
		zap.Int("count", event.Count),
		zap.String("subject", IngestedSubject))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}
	if err := p.conn.Flush(); err != nil {
		p.logger.Warn("failed to flush NATS connection", zap.Error(err))
	}
}

func encodeIngested(event IngestedEvent) ([]byte, error) {
	if event.IngestedAt.IsZero() {
		event.IngestedAt = time.Now()
	}
	event.IngestedAt = event.IngestedAt.UTC()

	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Internal("marshaling ingested event", err)
	}
	return data, nil
}
