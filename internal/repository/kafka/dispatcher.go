package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Handler func(ctx context.Context, key, value []byte) error

// messageReader is the slice of kafka.Reader the dispatch loop needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type DispatcherConfig struct {
	Brokers       []string
	GroupID       string
	FromBeginning bool
	Logger        *zap.Logger
}

// Dispatcher consumes every registered topic in one consumer group and
// routes each message to the handler registered for its topic. Delivery is
// at-least-once: a message is committed only after its handler succeeds, so
// handlers must tolerate redelivery.
type Dispatcher struct {
	cfg      *DispatcherConfig
	handlers map[string]Handler
	log      *zap.Logger
}

func NewDispatcher(cfg *DispatcherConfig) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = zap.L()
	}
	return &Dispatcher{
		cfg:      cfg,
		handlers: make(map[string]Handler),
		log: cfg.Logger.With(
			zap.String("component", "kafka.dispatcher"),
			zap.String("group", cfg.GroupID),
		),
	}
}

// RegisterHandler binds a topic to a handler. Registration must finish
// before Run; the handler table is read-only afterwards.
func (d *Dispatcher) RegisterHandler(topic string, h Handler) *Dispatcher {
	d.handlers[topic] = h
	return d
}

func (d *Dispatcher) Topics() []string {
	topics := make([]string, 0, len(d.handlers))
	for t := range d.handlers {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

func (d *Dispatcher) Run(ctx context.Context) error {
	if len(d.handlers) == 0 {
		return fmt.Errorf("dispatcher: no handlers registered")
	}

	start := kafka.LastOffset
	if d.cfg.FromBeginning {
		start = kafka.FirstOffset
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:               d.cfg.Brokers,
		GroupID:               d.cfg.GroupID,
		GroupTopics:           d.Topics(),
		StartOffset:           start,
		WatchPartitionChanges: true,

		MinBytes:          1e3,
		MaxBytes:          10e6,
		SessionTimeout:    10 * time.Second,
		RebalanceTimeout:  15 * time.Second,
		HeartbeatInterval: 3 * time.Second,
	})
	defer func() { _ = r.Close() }()

	return d.run(ctx, r)
}

func (d *Dispatcher) run(ctx context.Context, r messageReader) error {
	log := d.log
	log.Info("dispatcher started", zap.Strings("topics", d.Topics()))

	backoff := 200 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Info("dispatcher stopped (ctx canceled)")
			return ctx.Err()
		default:
		}

		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("dispatcher stopped (ctx canceled)")
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				log.Debug("fetch EOF; retry", zap.Duration("backoff", backoff))
			} else {
				log.Warn("fetch failed; retry", zap.Error(err), zap.Duration("backoff", backoff))
			}
			time.Sleep(backoff)
			if backoff < maxBackoff {
				backoff *= 2
			}
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		backoff = 200 * time.Millisecond

		h, ok := d.handlers[msg.Topic]
		if !ok {
			log.Warn("no handler registered for topic; dropping message",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			d.commit(ctx, r, msg)
			continue
		}

		if err := h(ctx, msg.Key, msg.Value); err != nil {
			// Not committed: the message is redelivered after restart or
			// rebalance. The loop itself never dies on a handler error.
			log.Error("handler error",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}

		d.commit(ctx, r, msg)
	}
}

func (d *Dispatcher) commit(ctx context.Context, r messageReader, msg kafka.Message) {
	if err := r.CommitMessages(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return
		}
		d.log.Warn("commit failed; will retry later", zap.Error(err))
	}
}
