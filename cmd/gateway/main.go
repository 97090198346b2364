package main

import (
	"context"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/authservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/application/depositservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/application/ledgerservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/application/splitservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/application/withdrawalservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/infrastructure/cache"
	"github.com/orizonpaybr/gateway-api-sub004/internal/infrastructure/database"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/depositrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/infractionrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/ledgerrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/notificationrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/splitrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/statsrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/userrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/withdrawalrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/server"
	"github.com/orizonpaybr/gateway-api-sub004/internal/server/handlers"
	"github.com/orizonpaybr/gateway-api-sub004/internal/server/websocket"
	"github.com/orizonpaybr/gateway-api-sub004/internal/worker"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/config"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/logger"
)

func main() {
	logger := logger.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.ShutDown()

	rdb, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to redis")
	}

	userRepo := userrepo.New(db.Db, logger)
	ledgerRepo := ledgerrepo.New(db.Db, logger)
	depositRepo := depositrepo.New(db.Db, logger)
	withdrawalRepo := withdrawalrepo.New(db.Db, logger)
	infractionRepo := infractionrepo.New(db.Db, logger)
	notificationRepo := notificationrepo.New(db.Db, logger)
	splitRepo := splitrepo.New(db.Db, logger)
	statsRepo := statsrepo.New(db.Db, logger)

	hub := websocket.NewWsHub(logger)
	go hub.Run()

	splitSvc := splitservice.New(splitRepo, ledgerRepo, rdb, logger)
	ledgerSvc := ledgerservice.New(ledgerRepo, userRepo, notificationRepo, hub, logger)
	depositSvc := depositservice.New(depositRepo, ledgerRepo, infractionRepo, notificationRepo, splitSvc, cfg.Platform, hub, logger)
	withdrawalSvc := withdrawalservice.New(withdrawalRepo, ledgerRepo, notificationRepo, splitSvc, cfg.Platform, hub, logger)
	authSvc := authservice.New(cfg, userRepo, splitSvc, logger)

	splitWorker := worker.NewSplitAssignmentWorker(rdb, splitRepo, nil, logger)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go splitWorker.Run(workerCtx, "gateway-api-1")

	h := handlers.New(
		authSvc,
		depositSvc,
		withdrawalSvc,
		ledgerSvc,
		userRepo,
		notificationRepo,
		statsRepo,
		hub,
		logger,
		cfg,
	)

	srv := server.New(cfg, h, logger)
	srv.Start()
}
