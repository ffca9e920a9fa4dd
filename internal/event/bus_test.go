package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mcmark/internal/event/topic"
)

func TestBus_SubscribeValidation(t *testing.T) {
	b := NewBus()

	_, err := b.Subscribe("", HandlerFunc(func(context.Context, Event) error { return nil }))
	assert.ErrorIs(t, err, ErrInvalidTopic)

	_, err = b.Subscribe("a.b", nil)
	assert.ErrorIs(t, err, ErrNilHandler)

	_, err = b.SubscribeFunc("a.b", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestBus_PublishMatchesPattern(t *testing.T) {
	b := NewBus()
	var got []topic.Topic

	_, err := b.SubscribeFunc("document.**", func(_ context.Context, e Event) error {
		got = append(got, e.Topic)
		return nil
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Publish(ctx, NewEvent("document.text.changed", nil, "test")))
	require.NoError(t, b.Publish(ctx, NewEvent("editor.active.changed", nil, "test")))

	assert.Equal(t, []topic.Topic{"document.text.changed"}, got)
	assert.Equal(t, uint64(2), b.Stats().EventsPublished)
	assert.Equal(t, uint64(1), b.Stats().EventsDelivered)
}

func TestBus_PublishRejectsWildcardTopic(t *testing.T) {
	b := NewBus()
	assert.ErrorIs(t, b.Publish(context.Background(), NewEvent("a.*", nil, "")), ErrInvalidTopic)
}

func TestBus_PriorityOrder(t *testing.T) {
	b := NewBus()
	var order []string

	add := func(name string, p Priority) {
		_, err := b.SubscribeFunc("x", func(context.Context, Event) error {
			order = append(order, name)
			return nil
		}, WithPriority(p))
		require.NoError(t, err)
	}
	add("normal-1", PriorityNormal)
	add("low", PriorityLow)
	add("critical", PriorityCritical)
	add("normal-2", PriorityNormal)

	require.NoError(t, b.Publish(context.Background(), NewEvent("x", nil, "")))
	assert.Equal(t, []string{"critical", "normal-1", "normal-2", "low"}, order)
}

func TestBus_Filter(t *testing.T) {
	b := NewBus()
	calls := 0

	_, err := b.SubscribeFunc("x", func(context.Context, Event) error {
		calls++
		return nil
	}, WithFilter(func(e Event) bool { return e.Source == "keep" }))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Publish(ctx, NewEvent("x", nil, "drop")))
	require.NoError(t, b.Publish(ctx, NewEvent("x", nil, "keep")))
	assert.Equal(t, 1, calls)
}

func TestBus_Once(t *testing.T) {
	b := NewBus()
	calls := 0

	_, err := b.SubscribeFunc("x", func(context.Context, Event) error {
		calls++
		return nil
	}, Once())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Publish(ctx, NewEvent("x", nil, "")))
	require.NoError(t, b.Publish(ctx, NewEvent("x", nil, "")))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.Stats().Subscriptions)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	sub, err := b.SubscribeFunc("x", func(context.Context, Event) error {
		t.Fatal("handler called after unsubscribe")
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, topic.Topic("x"), sub.Topic())

	require.NoError(t, b.Unsubscribe(sub))
	assert.False(t, sub.IsActive())
	assert.ErrorIs(t, b.Unsubscribe(sub), ErrSubscriptionNotFound)
	require.NoError(t, b.Publish(context.Background(), NewEvent("x", nil, "")))
}

func TestBus_HandlerErrorsAreJoined(t *testing.T) {
	b := NewBus()
	boom := errors.New("boom")
	after := false

	_, err := b.SubscribeFunc("x", func(context.Context, Event) error { return boom }, WithPriority(PriorityHigh))
	require.NoError(t, err)
	_, err = b.SubscribeFunc("x", func(context.Context, Event) error {
		after = true
		return nil
	})
	require.NoError(t, err)

	err = b.Publish(context.Background(), NewEvent("x", nil, ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var he *HandlerError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "x", he.Topic)
	assert.True(t, after)
	assert.Equal(t, uint64(1), b.Stats().HandlerErrors)
}

func TestBus_PanicRecovered(t *testing.T) {
	var recovered any
	b := NewBus(WithPanicHandler(func(_ Event, _ *Subscription, r any) {
		recovered = r
	}))

	_, err := b.SubscribeFunc("x", func(context.Context, Event) error { panic("kaboom") })
	require.NoError(t, err)

	err = b.Publish(context.Background(), NewEvent("x", nil, ""))
	assert.ErrorIs(t, err, ErrHandlerPanic)
	assert.Equal(t, "kaboom", recovered)
	assert.Equal(t, uint64(1), b.Stats().HandlerPanics)
}
