package welcome

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/NordCoder/Authly/internal/domain/event"
	"github.com/NordCoder/Authly/internal/repository/kafka"
)

type fakeSender struct {
	sent     []string
	calls    int
	failNext int
	err      error
}

func (f *fakeSender) Send(_ context.Context, to, _, _ string) error {
	f.calls++
	if f.failNext > 0 {
		f.failNext--
		return errors.New("smtp transient")
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func TestHandler_SendsWelcomeEmail(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, zaptest.NewLogger(t))

	ev := event.UserCreated{UserID: "u-1", Email: "alice@example.com"}
	require.NoError(t, h.HandleUserCreated(context.Background(), nil, ev))
	assert.Equal(t, []string{"alice@example.com"}, sender.sent)
}

func TestHandler_DropsIncompleteEvents(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, zaptest.NewLogger(t))

	for _, ev := range []event.UserCreated{
		{},
		{UserID: "u-1"},
		{Email: "alice@example.com"},
	} {
		require.NoError(t, h.HandleUserCreated(context.Background(), nil, ev), "incomplete events are dropped without error so they are not redelivered")
	}
	assert.Empty(t, sender.sent)
}

func TestHandler_SendFailurePropagatesForRedelivery(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	h := NewHandler(sender, zaptest.NewLogger(t))

	ev := event.UserCreated{UserID: "u-1", Email: "alice@example.com"}
	err := h.HandleUserCreated(context.Background(), nil, ev)
	require.Error(t, err)
}

func TestHandler_RetriesTransientSendFailures(t *testing.T) {
	sender := &fakeSender{failNext: 2}
	h := NewHandler(sender, zaptest.NewLogger(t))

	ev := event.UserCreated{UserID: "u-1", Email: "alice@example.com"}
	require.NoError(t, h.HandleUserCreated(context.Background(), nil, ev))
	assert.Equal(t, 3, sender.calls)
	assert.Equal(t, []string{"alice@example.com"}, sender.sent)
}

func TestHandler_ThroughJSONHandler(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, zaptest.NewLogger(t))
	wire := kafka.JSONHandler(h.HandleUserCreated)

	require.NoError(t, wire(context.Background(), []byte("u-1"), []byte(`{"userId":"u-1","email":"alice@example.com"}`)))
	assert.Equal(t, []string{"alice@example.com"}, sender.sent)

	err := wire(context.Background(), nil, []byte(`not json`))
	require.Error(t, err)
}
