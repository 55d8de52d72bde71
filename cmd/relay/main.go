package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/brightpaws/dogtrainer-api/internal/config"
	"github.com/brightpaws/dogtrainer-api/internal/messaging"
	"github.com/brightpaws/dogtrainer-api/internal/outbox"
)

func main() {

	cfg := config.Load()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	broker, err := messaging.NewRabbitMQBroker(cfg.AMQPUrl, cfg.NotifyQueue)
	if err != nil {
		log.Fatalf("failed to connect to broker: %v", err)
	}
	defer broker.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relay := outbox.NewRelay(db, cfg.DBUrl, broker)
	if err := relay.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("relay stopped: %v", err)
	}
}
