package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	key string
	msg amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestNotifyPublishesRequestEvents(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "kitchen.requests")
	p.now = func() time.Time { return time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC) }

	p.Notify("request.create", map[string]int{"id": 7})
	p.Notify("session.open", map[string]string{"desk": "T1"})

	require.Len(t, ch.sent, 1)
	sent := ch.sent[0]
	assert.Equal(t, "kitchen.requests", sent.key)
	assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)
	assert.Equal(t, "application/json", sent.msg.ContentType)

	var ev KitchenEvent
	require.NoError(t, json.Unmarshal(sent.msg.Body, &ev))
	assert.Equal(t, "request.create", ev.Event)
	assert.Equal(t, "2026-03-14T18:30:00Z", ev.PublishedAt)
	assert.JSONEq(t, `{"id":7}`, string(ev.Payload))
}

func TestPublishReportsBrokerErrors(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newPublisher(ch, "kitchen.requests")

	err := p.Publish(context.Background(), "request.update", nil)
	assert.Error(t, err)

	// Notify swallows the failure
	p.Notify("request.update", nil)
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
