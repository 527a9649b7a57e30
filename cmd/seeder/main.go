package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/op-bnbplace/opbnb-place-api/internal/placement"
	"github.com/op-bnbplace/opbnb-place-api/pkg/config"
	"github.com/op-bnbplace/opbnb-place-api/pkg/logger"
	"github.com/op-bnbplace/opbnb-place-api/pkg/producer"
	"github.com/op-bnbplace/opbnb-place-api/pkg/retry"
	"github.com/op-bnbplace/opbnb-place-api/pkg/scylla"

	"github.com/goccy/go-json"
)

// seeder generates placement traffic against a running cluster, for
// exercising the full pipeline end to end without the request gateway.
func main() {
	addr := flag.String("addr", ":8082", "HTTP server address")
	configPath := flag.String("config", "", "config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	l, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: "seeder",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The cluster may still be coming up when the seeder starts, so the
	// initial connect is retried with backoff.
	var builder *scylla.Builder
	err = retry.Do(ctx, func() error {
		var initErr error
		builder, initErr = scylla.TryInit(scylla.Config{
			Hosts:             cfg.Scylla.Hosts,
			Keyspace:          cfg.Scylla.Keyspace,
			ReplicationFactor: cfg.Scylla.ReplicationFactor,
			Timeout:           cfg.Scylla.Timeout,
			CanvasDim:         cfg.Canvas.Dim,
		})
		return initErr
	}, retry.DefaultOptions())
	if err != nil {
		l.Error("failed to connect to scylla", err)
		os.Exit(1)
	}

	store, err := builder.TryBuild(ctx)
	if err != nil {
		l.Error("failed to initialize schema", err)
		os.Exit(1)
	}

	kafkaProducer := producer.NewKafkaProducer(producer.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})

	svc := placement.NewService(l, store, kafkaProducer)

	dim := cfg.Canvas.Dim

	http.HandleFunc("/place", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		req := scylla.PlacementRequest{
			Address: fmt.Sprintf("0x%040x", rand.Int63()),
			X:       uint32(rand.Intn(int(dim))),
			Y:       uint32(rand.Intn(int(dim))),
			Color:   uint32(rand.Intn(256)),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := svc.Place(ctx, req); err != nil {
			http.Error(w, fmt.Sprintf("failed to place: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(req)
	})

	http.HandleFunc("/pixel", func(w http.ResponseWriter, r *http.Request) {
		x, errX := strconv.ParseUint(r.URL.Query().Get("x"), 10, 32)
		y, errY := strconv.ParseUint(r.URL.Query().Get("y"), 10, 32)
		if errX != nil || errY != nil {
			http.Error(w, "x and y query params are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		data, err := svc.GetPixel(ctx, uint32(x), uint32(y))
		if errors.Is(err, scylla.ErrNoPixelData) {
			http.Error(w, "no pixel data", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to read pixel: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(data)
	})

	http.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		address := r.URL.Query().Get("address")
		if address == "" {
			http.Error(w, "address query param is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rec, err := svc.GetUser(ctx, address)
		if errors.Is(err, scylla.ErrInvalidUser) {
			http.Error(w, "unknown player", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to read player: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rec)
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	httpServer := &http.Server{Addr: *addr}

	go func() {
		l.Info("seeder server starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Error("server failed", err)
			stop()
		}
	}()

	<-ctx.Done()

	l.Info("shutting down seeder")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	httpServer.Shutdown(shutdownCtx)

	if err := svc.Stop(context.Background()); err != nil {
		l.Error("failed to stop placement service", err)
	}
}
