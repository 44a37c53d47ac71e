package bootstrap

import (
	"log"

	"caravan-bot/internal/caravan"
	"caravan-bot/internal/config"
	"caravan-bot/internal/pkg/logger"
	"caravan-bot/internal/service"
	"caravan-bot/pkg/catalog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	CaravanService  service.ICaravanService
	RouteService    service.IRouteService
	NotifierService service.INotifierService

	Catalog *catalog.Catalog
	Logger  logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Place Catalog
	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load place catalog: %v", err)
	}
	log.Printf("[INFO] Loaded place catalog: %d places (%s)", cat.Len(), cfg.Catalog.Path)

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.ReceiptTopic, pubSub)
	notifierService := service.NewNotifierService(pubSub, cfg.App.ReceiptTopic, sysLogger)

	registry := caravan.NewRegistry(cfg.Caravan.MaxGuests)
	routeService := service.NewRouteService(cat, cfg.Matching, sysLogger)
	caravanService := service.NewCaravanService(
		registry,
		routeService,
		publisherService,
		sysLogger,
	)

	return &Container{
		CaravanService:  caravanService,
		RouteService:    routeService,
		NotifierService: notifierService,
		Catalog:         cat,
		Logger:          sysLogger,
	}
}
