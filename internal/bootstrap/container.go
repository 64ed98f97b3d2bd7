package bootstrap

import (
	"context"
	"log"

	"sow-studio-be/internal/config"
	"sow-studio-be/internal/controller"
	"sow-studio-be/internal/pkg/logger"
	"sow-studio-be/internal/repository/memory"
	"sow-studio-be/internal/service"
	"sow-studio-be/internal/websocket"
	"sow-studio-be/pkg/assistant"
	"sow-studio-be/pkg/events"
	"sow-studio-be/pkg/pricing"

	pktNats "sow-studio-be/pkg/nats"
)

type Container struct {
	// Controllers
	ProposalController controller.IProposalController

	// WebSockets
	WebSocketHub *websocket.Hub

	// Exposed for graceful shutdown
	EventPublisher pktNats.EventPublisher
	Logger         logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	streamLogger := logger.NewIsolatedLogger(cfg.App.StreamLogFilePath)

	// 2. Infrastructure
	var natsPub pktNats.EventPublisher = pktNats.NoopPublisher{}
	if cfg.App.NatsEnabled {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
		}

		// Audit trail: every turn lifecycle event lands in the system log.
		sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			err = sub.Subscribe("proposals.>", "sow-studio-audit", func(ctx context.Context, event events.Event) error {
				sysLogger.Info("Audit", "Proposal event", map[string]interface{}{
					"subject": event.EventType(),
					"payload": event.Payload(),
				})
				return nil
			})
			if err != nil {
				log.Printf("[WARN] Failed to subscribe to proposal events: %v", err)
			}
		}
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(streamLogger)
	go wsHub.Run()

	// 3. Repositories
	threadRepo := memory.NewThreadRepository()
	turnRepo := memory.NewTurnRepository()
	docRepo := memory.NewDocumentRepository()

	// 4. Services
	streamer := assistant.NewHTTPClient(cfg.Assistant.BaseURL, cfg.Assistant.APIKey)
	card := pricing.DefaultRateCard()

	sessionService := service.NewSessionService(
		threadRepo,
		turnRepo,
		docRepo,
		streamer,
		wsHub,
		natsPub,
		sysLogger,
		streamLogger,
		card,
		cfg.Assistant.WorkspaceSlug,
		cfg.Assistant.SendIntervalMs,
		cfg.Pricing.GSTPercent,
	)

	// 5. Controllers
	return &Container{
		ProposalController: controller.NewProposalController(sessionService, wsHub),
		WebSocketHub:       wsHub,
		EventPublisher:     natsPub,
		Logger:             sysLogger,
	}
}
