package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workforce-notification-service/internal/cache"
	"workforce-notification-service/internal/config"
	"workforce-notification-service/internal/db"
	"workforce-notification-service/internal/kafka"
	"workforce-notification-service/internal/logging"
	"workforce-notification-service/internal/mongodb"
	"workforce-notification-service/internal/notification"
	"workforce-notification-service/internal/push"
	"workforce-notification-service/internal/utils"
	"workforce-notification-service/internal/ws"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the document store
	var store *mongodb.Store
	err = utils.Retry(logger, 3, 2*time.Second, func() error {
		store, err = mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		return err
	})
	if err != nil {
		logger.Errorf("Mongo connect failed: %v", err)
		log.Fatalf("Mongo connect failed: %v", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Errorf("Mongo close failed: %v", err)
		}
	}()

	// Optional Redis cache: branch-validation memoization and the
	// interaction holding store.
	var redisCache *cache.Cache
	if cfg.Redis.Addr != "" {
		err = utils.Retry(logger, 3, 2*time.Second, func() error {
			redisCache, err = cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password)
			return err
		})
		if err != nil {
			logger.Errorf("Redis connect failed: %v", err)
			log.Fatalf("Redis connect failed: %v", err)
		}
		defer redisCache.Close()
	}

	// Optional delivery audit log
	var deliveryLogs push.DeliveryLogStore
	if cfg.Notification.DeliveryLogEnabled {
		pg, err := db.New(cfg.Postgres.DSN)
		if err != nil {
			logger.Errorf("Postgres connect failed: %v", err)
			log.Fatalf("Postgres connect failed: %v", err)
		}
		defer pg.Close()
		deliveryLogs = pg
	}

	// Push provider client and delivery engine
	secrets := push.FileSecretStore{Path: cfg.Push.CredentialsFile}
	client := push.NewClient(cfg.Push.ProjectID, secrets, cfg.Push.RatePerSecond, logger)
	engine := push.NewEngine(client, deliveryLogs, cfg.Notification.MaxDevicesPerPush, logger)

	// Dashboard hub; connection upgrades belong to the HTTP layer, which
	// hands established conns to the hub.
	hub := ws.NewHub(logger)

	var locations notification.LocationStore = store
	if redisCache != nil {
		locations = cache.NewLocationCache(store, redisCache)
	}

	svc := notification.New(notification.Deps{
		Store:        store,
		Interactions: store,
		Employees:    store,
		Locations:    locations,
		Queue:        store,
		Prereqs:      store,
		Pusher:       engine,
		Topics:       client,
		Dashboard:    hub,
	}, cfg, logger)

	// Intake consumer
	var holding kafka.InteractionHolder
	if redisCache != nil {
		holding = redisCache
	}
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, svc, holding, logger)
	go consumer.Start(ctx)

	logger.Infof("Notification core started (topic %s)", cfg.Kafka.Topic)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Infof("Shutting down...")
	cancel()
	if err := consumer.Close(); err != nil {
		logger.Errorf("Consumer close failed: %v", err)
	}
	logger.Infof("Service stopped")
}
