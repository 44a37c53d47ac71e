package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caravan-bot/internal/caravan"
	"caravan-bot/internal/entity"
	"caravan-bot/pkg/events"
)

func TestPublisherServiceEnvelope(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "RECEIPTS")
	require.NoError(t, err)

	publisher := NewPublisherService("RECEIPTS", pubSub)

	model := caravan.NewModel("chan-1", "weekend", caravan.DefaultMaxGuests)
	receipt, err := model.SetRoute([]entity.Waypoint{{Name: "Harbor", Location: "0.0,2.0"}})
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(ctx, receipt))

	select {
	case msg := <-messages:
		var envelope events.Envelope
		require.NoError(t, json.Unmarshal(msg.Payload, &envelope))
		assert.Equal(t, "ROUTE_UPDATED", envelope.Type)
		assert.Equal(t, "weekend", envelope.Channel)
		assert.Equal(t, "Added Harbor.", envelope.Summary)
		assert.NotNil(t, envelope.Payload)
		assert.False(t, envelope.OccurredAt.IsZero())
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("no receipt arrived on the bus")
	}
}
