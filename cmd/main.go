package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mpusnik/auctionhub/internal/auction/application"
	auctionhttp "github.com/mpusnik/auctionhub/internal/auction/infra/http"
	auctionpg "github.com/mpusnik/auctionhub/internal/auction/infra/repository/postgres"
	"github.com/mpusnik/auctionhub/internal/auction/infra/storage"
	auctionws "github.com/mpusnik/auctionhub/internal/auction/infra/websocket"
	"github.com/mpusnik/auctionhub/internal/shared/db"
	"github.com/mpusnik/auctionhub/internal/shared/db/migrations"
	"github.com/mpusnik/auctionhub/internal/shared/httpserver"
	"github.com/mpusnik/auctionhub/internal/shared/logger"
	"github.com/mpusnik/auctionhub/internal/shared/scheduler"
	"github.com/mpusnik/auctionhub/internal/shared/websocket"
	userpg "github.com/mpusnik/auctionhub/internal/user/infra/repository/postgres"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting auctionhub server...")

	log.Info("Running database migrations...")
	if err := migrations.RunMigrations(); err != nil {
		log.Fatal("Database migration failed", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	defer pool.Close()

	itemRepo := auctionpg.NewAuctionItemRepository(pool)
	bidRepo := auctionpg.NewBidRepository(pool)
	userRepo := userpg.NewUserRepository(pool)

	hub := websocket.NewHub()
	go hub.Run(ctx)
	feed := auctionws.NewAuctionFeed(hub)

	placeBid := application.NewPlaceBidUseCase(itemRepo, bidRepo, userRepo, pool, feed)
	queries := application.NewAuctionQueries(itemRepo, bidRepo)
	manage := application.NewManageItemsUseCase(itemRepo, bidRepo)
	svc := application.NewAuctionService(placeBid, queries, manage)

	finalize := application.NewFinalizeExpiredUseCase(itemRepo, bidRepo, pool, feed)
	sweep := scheduler.New("auction-lifecycle", sweepInterval(), func(ctx context.Context) {
		if _, err := finalize.Execute(ctx); err != nil {
			log.Error("Lifecycle sweep failed", zap.Error(err))
		}
	})
	go sweep.Run(ctx)

	images, err := storage.NewImageStore(envOr("IMAGE_DIR", "files"))
	if err != nil {
		log.Fatal("Image store init failed", zap.Error(err))
	}

	server := httpserver.NewServer()
	auctionhttp.NewHandler(svc, images).RegisterRoutes(ctx, server.App(), feed)

	if err := server.Start(envOr("SERVER_ADDR", ":9000")); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func sweepInterval() time.Duration {
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return time.Hour
}
