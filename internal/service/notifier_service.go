package service

import (
	"context"
	"encoding/json"
	"fmt"

	"caravan-bot/internal/caravan"
	"caravan-bot/internal/entity"
	"caravan-bot/internal/pkg/logger"
	"caravan-bot/pkg/events"
	"caravan-bot/pkg/routetext"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type INotifierService interface {
	Consume(ctx context.Context) error
}

// notifierService is the chat-facing end of the receipt bus: it subscribes
// to published receipts and surfaces their human-readable summaries. The
// outbound chat adapter hangs off this same subscription.
type notifierService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewNotifierService(pubSub *gochannel.GoChannel, topicName string, log logger.ILogger) INotifierService {
	return &notifierService{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    log,
	}
}

func (ns *notifierService) Consume(ctx context.Context) error {
	messages, err := ns.pubSub.Subscribe(ctx, ns.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ns.processMessage(msg)
		}
	}()

	return nil
}

func (ns *notifierService) processMessage(msg *message.Message) {
	var envelope events.Envelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		ns.logger.Error("notifier", "failed to unmarshal receipt envelope", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	ns.logger.Info("notifier", envelope.Summary, map[string]interface{}{
		"type":    envelope.Type,
		"channel": envelope.Channel,
		"payload": envelope.Payload,
	})
	msg.Ack()
}

// DescribeReceipt renders a receipt as the announcement members see in the
// caravan channel.
func DescribeReceipt(receipt caravan.Receipt) string {
	switch r := receipt.(type) {
	case *caravan.RouteUpdateReceipt:
		return describeRouteUpdate(r)

	case *caravan.RouteAdvancedReceipt:
		verb := "Visited"
		if r.SkipReason != nil {
			verb = "Skipped"
		}
		head := fmt.Sprintf("%s %s.", verb, r.Visited.Name)
		if r.SkipReason != nil && *r.SkipReason != "" {
			head = fmt.Sprintf("%s %s: %q.", verb, r.Visited.Name, *r.SkipReason)
		}
		if r.NextPlace == nil {
			return head + " That was the last stop!"
		}
		return fmt.Sprintf("%s Next up: %s.", head, r.NextPlace.Name)

	case *caravan.ModeUpdateReceipt:
		switch r.NewMode {
		case entity.ModeActive:
			if r.NextPlace != nil {
				return fmt.Sprintf("The caravan is on the road! First stop: %s.", r.NextPlace.Name)
			}
			return "The caravan is on the road!"
		case entity.ModeCompleted:
			if r.Statistics != nil {
				return fmt.Sprintf(
					"The caravan is complete! Visited %d, skipped %d, remaining %d.",
					r.Statistics.Visited, r.Statistics.Skipped, r.Statistics.Remaining,
				)
			}
			return "The caravan is complete!"
		default:
			return "The caravan is back in planning."
		}

	case *caravan.LeaderUpdateReceipt:
		if len(r.NewLeaders) == 0 {
			return "The caravan has no leaders now."
		}
		names := make([]string, len(r.NewLeaders))
		for i, u := range r.NewLeaders {
			names[i] = u.DisplayName
		}
		return fmt.Sprintf("Now leading the caravan: %s.", routetext.Join(names))

	case *caravan.MemberJoinReceipt:
		switch {
		case r.IsNewUser && r.Guests > 0:
			return fmt.Sprintf("%s joined the caravan with %d guest(s).", r.User.DisplayName, r.Guests)
		case r.IsNewUser:
			return fmt.Sprintf("%s joined the caravan.", r.User.DisplayName)
		default:
			return fmt.Sprintf("%s now brings %d guest(s).", r.User.DisplayName, r.Guests)
		}

	case *caravan.MemberLeaveReceipt:
		if r.Guests > 0 {
			return fmt.Sprintf("%s left the caravan, taking %d guest(s) along.", r.User.DisplayName, r.Guests)
		}
		return fmt.Sprintf("%s left the caravan.", r.User.DisplayName)

	default:
		return receipt.EventType()
	}
}

func describeRouteUpdate(r *caravan.RouteUpdateReceipt) string {
	if r.IsReorderOnly() {
		return "Route reordered."
	}

	var parts []string
	if len(r.PlacesAdded) > 0 {
		parts = append(parts, fmt.Sprintf("Added %s.", routetext.Join(placeNames(r.PlacesAdded))))
	}
	if len(r.PlacesRemoved) > 0 {
		parts = append(parts, fmt.Sprintf("Removed %s.", routetext.Join(placeNames(r.PlacesRemoved))))
	}
	if len(parts) == 0 {
		parts = append(parts, "Route updated.")
	}
	if r.Mode == entity.ModeActive && r.NextPlace != nil {
		parts = append(parts, fmt.Sprintf("Next up: %s.", r.NextPlace.Name))
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out += " " + p
	}
	return out
}

func placeNames(places []entity.Waypoint) []string {
	names := make([]string, len(places))
	for i, p := range places {
		names[i] = p.Name
	}
	return names
}
