package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/NordCoder/Authly/internal/domain/event"
)

// Producer is a best-effort JSON event producer. One writer serves all
// topics; the topic is picked per message.
type Producer struct {
	w   *kafka.Writer
	log *zap.Logger
}

var _ event.Publisher = (*Producer)(nil)

func NewProducer(brokers []string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		log: zap.L().With(zap.String("component", "kafka.producer")),
	}
}

func (p *Producer) WithLogger(l *zap.Logger) *Producer {
	if l == nil {
		return p
	}
	cp := *p
	cp.log = l.With(zap.String("component", "kafka.producer"))
	return &cp
}

// Publish sends one message and reports the outcome. Callers decide whether
// a failure is fatal; registration logs and drops it.
func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	tr := otel.Tracer("kafka.producer")
	ctx, span := tr.Start(ctx, "kafka.produce "+topic, trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingDestinationName(topic),
			semconv.MessagingOperationPublish,
		),
	)
	defer span.End()

	hdrs := mapCarrierHeaders{}
	otel.GetTextMapPropagator().Inject(ctx, hdrs)

	msg := kafka.Message{Topic: topic, Key: key, Value: value, Headers: hdrs.ToKafka()}

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		p.log.Error("kafka write failed", zap.String("topic", topic), zap.Error(err))
		return err
	}
	p.log.Debug("message published",
		zap.String("topic", topic),
		zap.Int("key_len", len(key)),
		zap.Int("value_len", len(value)),
	)
	return nil
}

func (p *Producer) PublishUserCreated(ctx context.Context, ev event.UserCreated) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal user created: %w", err)
	}
	return p.Publish(ctx, event.TopicUserCreated, []byte(ev.UserID), value)
}

func (p *Producer) Close() error { return p.w.Close() }
