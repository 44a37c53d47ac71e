package service

import (
	"context"
	"encoding/json"

	"caravan-bot/internal/caravan"
	"caravan-bot/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	Publish(ctx context.Context, receipt caravan.Receipt) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) Publish(ctx context.Context, receipt caravan.Receipt) error {
	envelope := events.Envelope{
		Type:       receipt.EventType(),
		Channel:    receipt.ChannelName(),
		Summary:    DescribeReceipt(receipt),
		Payload:    receipt.Payload(),
		OccurredAt: receipt.Timestamp(),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.pubSub.Publish(ps.topicName, msg)
}
