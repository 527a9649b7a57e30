package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/op-bnbplace/opbnb-place-api/internal/archiver"
	"github.com/op-bnbplace/opbnb-place-api/pkg/checkpoint"
	"github.com/op-bnbplace/opbnb-place-api/pkg/config"
	"github.com/op-bnbplace/opbnb-place-api/pkg/consumer"
	"github.com/op-bnbplace/opbnb-place-api/pkg/history"
	"github.com/op-bnbplace/opbnb-place-api/pkg/logger"
	"github.com/op-bnbplace/opbnb-place-api/pkg/server"
	"github.com/op-bnbplace/opbnb-place-api/pkg/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize logger
	l, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: "archiver",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer l.Sync()

	l.Info("archiver service initializing", zap.String("env", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize history database
	archive, err := history.NewPGArchive(ctx, history.Config{
		URI:      cfg.Postgres.URI,
		MinConns: int32(cfg.Postgres.MinConns),
		MaxConns: int32(cfg.Postgres.MaxConns),
	}, l)
	if err != nil {
		l.Error("failed to connect to postgres", err)
		os.Exit(1)
	}
	defer archive.Close()

	// 4. Initialize consumer
	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "archiver-group"
	}
	kafkaConsumer := consumer.NewKafkaConsumer(consumer.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: groupID,
	})
	defer kafkaConsumer.Close()

	// 5. Cursor store, redis when configured, local file otherwise
	var checkpoints checkpoint.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		checkpoints = checkpoint.NewRedisStore(client, cfg.Redis.CheckpointKey)
	} else {
		checkpoints = checkpoint.NewFileStore(cfg.Archiver.CheckpointPath)
	}

	if cursor, err := checkpoints.Load(ctx); err != nil {
		l.Warn("failed to load archive cursor", zap.Error(err))
	} else if cursor != nil {
		l.Info("resuming from archive cursor", zap.ByteString("cursor", cursor))
	}

	// 6. Initialize worker pool
	workerPool := worker.NewPool(
		l,
		archive,
		kafkaConsumer,
		checkpoints,
		cfg.Archiver.WorkerCount,
		cfg.Archiver.BatchSize,
		cfg.Archiver.FlushInterval,
	)

	// 7. Create service
	svc := archiver.NewService(l, kafkaConsumer, workerPool)

	// 8. Start observability server
	obsServer := server.New(":8081", l, archive.Ping)
	go func() {
		if err := obsServer.Start(); err != nil {
			l.Error("observability server failed", err)
		}
	}()

	// 9. Start service
	l.Info("archiver service starting")
	if err := svc.Start(ctx); err != nil {
		if err == context.Canceled {
			l.Info("archiver service stopping")
		} else {
			l.Error("archiver service failed", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	obsServer.Shutdown(shutdownCtx)
}
