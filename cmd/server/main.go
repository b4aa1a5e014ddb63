package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/config"
	"github.com/iliyamo/bus-seat-reservation/internal/database"
	"github.com/iliyamo/bus-seat-reservation/internal/engine"
	"github.com/iliyamo/bus-seat-reservation/internal/handler"
	"github.com/iliyamo/bus-seat-reservation/internal/middleware"
	"github.com/iliyamo/bus-seat-reservation/internal/queue"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
	"github.com/iliyamo/bus-seat-reservation/internal/router"
	queue_publisher "github.com/iliyamo/bus-seat-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	client, err := database.Connect(cfg.MongoURI, cfg.MongoTimeout, cfg.ConnectRetries, cfg.ConnectRetryDelay)
	if err != nil {
		log.Fatalf("mongodb unreachable: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repo := repository.NewReservationRepo(client.Database(cfg.MongoDB).Collection(cfg.MongoCollection))
	idxCtx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
	err = repo.EnsureIndexes(idxCtx)
	cancel()
	if err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}

	bus := engine.NewBus(cfg.BusCapacity, cfg.DepartureTimes, repo)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unreachable, response cache and rate limiting disabled")
	}
	cache := middleware.NewOccupancyCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)

	h := handler.NewReservationHandler(bus, cache)
	h.Publish = queue_publisher.PublishReservationEvent

	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e, h, cache, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, capacity=%d)", addr, cfg.Env, cfg.BusCapacity)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
