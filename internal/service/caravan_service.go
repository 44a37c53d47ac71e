package service

import (
	"context"

	"caravan-bot/internal/caravan"
	"caravan-bot/internal/entity"
	"caravan-bot/internal/pkg/logger"
	"caravan-bot/pkg/routetext"
)

type ICaravanService interface {
	SetRoute(ctx context.Context, channelID, channelName, content string, fuzzy bool) (*caravan.RouteUpdateReceipt, error)
	AddStops(ctx context.Context, channelID, channelName, content string, appendEnd, fuzzy bool) (*caravan.RouteUpdateReceipt, error)
	RemoveStops(ctx context.Context, channelID, channelName, content string, fuzzy bool) (*caravan.RouteUpdateReceipt, error)
	Start(ctx context.Context, channelID, channelName string) (*caravan.ModeUpdateReceipt, error)
	Stop(ctx context.Context, channelID, channelName string) (*caravan.ModeUpdateReceipt, error)
	Reset(ctx context.Context, channelID, channelName string) (*caravan.ModeUpdateReceipt, error)
	Advance(ctx context.Context, channelID, channelName string, skipReason *string) (*caravan.RouteAdvancedReceipt, error)
	SetLeaders(ctx context.Context, channelID, channelName string, leaders []entity.User) (*caravan.LeaderUpdateReceipt, error)
	Join(ctx context.Context, channelID, channelName string, user entity.User, guestText string) (*caravan.MemberJoinReceipt, error)
	Leave(ctx context.Context, channelID, channelName string, user entity.User) (*caravan.MemberLeaveReceipt, error)
	Status(channelID, channelName string) *caravan.Model
}

type caravanService struct {
	registry         *caravan.Registry
	routeService     IRouteService
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewCaravanService(
	registry *caravan.Registry,
	routeService IRouteService,
	publisherService IPublisherService,
	log logger.ILogger,
) ICaravanService {
	return &caravanService{
		registry:         registry,
		routeService:     routeService,
		publisherService: publisherService,
		logger:           log,
	}
}

func (cs *caravanService) SetRoute(ctx context.Context, channelID, channelName, content string, fuzzy bool) (*caravan.RouteUpdateReceipt, error) {
	stops, err := cs.routeService.GetCaravanRoute(content, fuzzy)
	if err != nil {
		return nil, err
	}

	model := cs.registry.GetOrCreate(channelID, channelName)
	receipt, err := model.SetRoute(stopWaypoints(stops))
	if err != nil {
		return nil, err
	}

	cs.publish(ctx, receipt)
	return receipt, nil
}

func (cs *caravanService) AddStops(ctx context.Context, channelID, channelName, content string, appendEnd, fuzzy bool) (*caravan.RouteUpdateReceipt, error) {
	stops, err := cs.routeService.GetCaravanRoute(content, fuzzy)
	if err != nil {
		return nil, err
	}

	model := cs.registry.GetOrCreate(channelID, channelName)
	receipt, err := model.AddStops(stopWaypoints(stops), appendEnd)
	if err != nil {
		return nil, err
	}

	cs.publish(ctx, receipt)
	return receipt, nil
}

func (cs *caravanService) RemoveStops(ctx context.Context, channelID, channelName, content string, fuzzy bool) (*caravan.RouteUpdateReceipt, error) {
	stops, err := cs.routeService.GetCaravanRoute(content, fuzzy)
	if err != nil {
		return nil, err
	}

	model := cs.registry.GetOrCreate(channelID, channelName)
	receipt, err := model.RemoveStops(stopWaypoints(stops))
	if err != nil {
		return nil, err
	}

	cs.publish(ctx, receipt)
	return receipt, nil
}

func (cs *caravanService) Start(ctx context.Context, channelID, channelName string) (*caravan.ModeUpdateReceipt, error) {
	model := cs.registry.GetOrCreate(channelID, channelName)
	receipt, err := model.Start()
	if err != nil {
		return nil, err
	}

	cs.publish(ctx, receipt)
	return receipt, nil
}

func (cs *caravanService) Stop(ctx context.Context, channelID, channelName string) (*caravan.ModeUpdateReceipt, error) {
	model := cs.registry.GetOrCreate(channelID, channelName)
	receipt, err := model.Stop()
	if err != nil {
		return nil, err
	}

	cs.publish(ctx, receipt)
	return receipt, nil
}

func (cs *caravanService) Reset(ctx context.Context, channelID, channelName string) (*caravan.ModeUpdateReceipt, error) {
	model := cs.registry.GetOrCreate(channelID, channelName)
	receipt, err := model.Reset()
	if err != nil {
		return nil, err
	}

	cs.publish(ctx, receipt)
	return receipt, nil
}

func (cs *caravanService) Advance(ctx context.Context, channelID, channelName string, skipReason *string) (*caravan.RouteAdvancedReceipt, error) {
	model := cs.registry.GetOrCreate(channelID, channelName)
	receipt, err := model.Advance(skipReason)
	if err != nil {
		return nil, err
	}

	cs.publish(ctx, receipt)
	return receipt, nil
}

func (cs *caravanService) SetLeaders(ctx context.Context, channelID, channelName string, leaders []entity.User) (*caravan.LeaderUpdateReceipt, error) {
	model := cs.registry.GetOrCreate(channelID, channelName)
	receipt, err := model.SetLeaders(leaders)
	if err != nil {
		return nil, err
	}

	cs.publish(ctx, receipt)
	return receipt, nil
}

func (cs *caravanService) Join(ctx context.Context, channelID, channelName string, user entity.User, guestText string) (*caravan.MemberJoinReceipt, error) {
	guests, err := routetext.GuestCount(guestText)
	if err != nil {
		return nil, err
	}

	model := cs.registry.GetOrCreate(channelID, channelName)
	receipt, err := model.MemberJoin(user, guests)
	if err != nil {
		return nil, err
	}

	cs.publish(ctx, receipt)
	return receipt, nil
}

func (cs *caravanService) Leave(ctx context.Context, channelID, channelName string, user entity.User) (*caravan.MemberLeaveReceipt, error) {
	model := cs.registry.GetOrCreate(channelID, channelName)
	receipt, err := model.MemberLeave(user)
	if err != nil {
		return nil, err
	}

	cs.publish(ctx, receipt)
	return receipt, nil
}

func (cs *caravanService) Status(channelID, channelName string) *caravan.Model {
	return cs.registry.GetOrCreate(channelID, channelName)
}

// publish ships a receipt to the bus. Receipt delivery is auxiliary, so a
// publish failure is logged rather than failing the already-applied change.
func (cs *caravanService) publish(ctx context.Context, receipt caravan.Receipt) {
	if cs.publisherService == nil {
		return
	}
	if err := cs.publisherService.Publish(ctx, receipt); err != nil {
		cs.logger.Warn("caravan_service", "failed to publish receipt", map[string]interface{}{
			"type":    receipt.EventType(),
			"channel": receipt.ChannelName(),
			"error":   err.Error(),
		})
	}
}

func stopWaypoints(stops []entity.CaravanStop) []entity.Waypoint {
	waypoints := make([]entity.Waypoint, len(stops))
	for i, s := range stops {
		waypoints[i] = s.Waypoint
	}
	return waypoints
}
