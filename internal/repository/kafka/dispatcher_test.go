package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []kafka.Message
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.msgs) > 0 {
		msg := f.msgs[0]
		f.msgs = f.msgs[1:]
		f.mu.Unlock()
		return msg, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error { return nil }

func (f *fakeReader) committedOffsets() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int64, 0, len(f.committed))
	for _, m := range f.committed {
		out = append(out, m.Offset)
	}
	return out
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	return NewDispatcher(&DispatcherConfig{
		Brokers: []string{"unused:9092"},
		GroupID: "test-group",
		Logger:  zaptest.NewLogger(t),
	})
}

func runUntilDrained(t *testing.T, d *Dispatcher, r *fakeReader) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		for {
			r.mu.Lock()
			drained := len(r.msgs) == 0
			r.mu.Unlock()
			if drained {
				// Give the in-flight message a moment to finish.
				time.Sleep(20 * time.Millisecond)
				cancel()
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	err := d.run(ctx, r)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDispatcher_RoutesByTopic(t *testing.T) {
	var mu sync.Mutex
	var gotUsers, gotOrders []string

	d := newTestDispatcher(t)
	d.RegisterHandler("users", func(_ context.Context, _, value []byte) error {
		mu.Lock()
		defer mu.Unlock()
		gotUsers = append(gotUsers, string(value))
		return nil
	})
	d.RegisterHandler("orders", func(_ context.Context, _, value []byte) error {
		mu.Lock()
		defer mu.Unlock()
		gotOrders = append(gotOrders, string(value))
		return nil
	})

	r := &fakeReader{msgs: []kafka.Message{
		{Topic: "users", Value: []byte("u1"), Offset: 1},
		{Topic: "orders", Value: []byte("o1"), Offset: 2},
		{Topic: "users", Value: []byte("u2"), Offset: 3},
	}}

	runUntilDrained(t, d, r)

	assert.Equal(t, []string{"u1", "u2"}, gotUsers)
	assert.Equal(t, []string{"o1"}, gotOrders)
	assert.ElementsMatch(t, []int64{1, 2, 3}, r.committedOffsets())
}

func TestDispatcher_UnknownTopicDroppedAndCommitted(t *testing.T) {
	handled := 0
	d := newTestDispatcher(t)
	d.RegisterHandler("users", func(_ context.Context, _, _ []byte) error {
		handled++
		return nil
	})

	r := &fakeReader{msgs: []kafka.Message{
		{Topic: "strays", Value: []byte("x"), Offset: 1},
		{Topic: "users", Value: []byte("u1"), Offset: 2},
	}}

	runUntilDrained(t, d, r)

	assert.Equal(t, 1, handled)
	assert.ElementsMatch(t, []int64{1, 2}, r.committedOffsets(), "unknown-topic message is committed so it is not redelivered forever")
}

func TestDispatcher_HandlerErrorDoesNotStopLoopOrCommit(t *testing.T) {
	var seen []string
	d := newTestDispatcher(t)
	d.RegisterHandler("users", func(_ context.Context, _, value []byte) error {
		seen = append(seen, string(value))
		if string(value) == "boom" {
			return errors.New("handler blew up")
		}
		return nil
	})

	r := &fakeReader{msgs: []kafka.Message{
		{Topic: "users", Value: []byte("boom"), Offset: 1},
		{Topic: "users", Value: []byte("ok"), Offset: 2},
	}}

	runUntilDrained(t, d, r)

	assert.Equal(t, []string{"boom", "ok"}, seen)
	assert.ElementsMatch(t, []int64{2}, r.committedOffsets(), "failed message stays uncommitted for redelivery")
}

func TestDispatcher_NoHandlersIsAnError(t *testing.T) {
	d := newTestDispatcher(t)
	err := d.Run(context.Background())
	require.Error(t, err)
}

func TestDispatcher_StopsOnCancel(t *testing.T) {
	d := newTestDispatcher(t)
	d.RegisterHandler("users", func(_ context.Context, _, _ []byte) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.run(ctx, &fakeReader{}) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop on cancel")
	}
}

func TestJSONHandler(t *testing.T) {
	type payload struct {
		UserID string `json:"userId"`
	}

	var got payload
	h := JSONHandler(func(_ context.Context, _ []byte, ev payload) error {
		got = ev
		return nil
	})

	require.NoError(t, h(context.Background(), nil, []byte(`{"userId":"u-1"}`)))
	assert.Equal(t, "u-1", got.UserID)

	err := h(context.Background(), nil, []byte(`{{not json`))
	require.Error(t, err)
}
