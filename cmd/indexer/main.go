package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gigatchad/e-learning/internal/audit"
	"github.com/Gigatchad/e-learning/internal/config"
	"github.com/Gigatchad/e-learning/internal/es"
	"github.com/Gigatchad/e-learning/internal/logging"
	"github.com/Gigatchad/e-learning/internal/mykafka"
)

const consumerGroup = "audit-indexer"

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS must be set for the indexer")
	}
	config.MustNonEmpty(cfg.ESURL, "ES_URL")

	esClient, err := es.NewClient(cfg)
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}
	trail := audit.NewTrail(esClient)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  consumerGroup,
		Topic:    mykafka.TopicUserEvents,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("indexer starting", "topic", mykafka.TopicUserEvents, "group", consumerGroup)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error("read message failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		var ev mykafka.AuthEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			logger.Warn("skipping malformed event", "offset", msg.Offset, "error", err)
			continue
		}

		indexCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = trail.Index(indexCtx, audit.Event{
			Timestamp: ev.At,
			Type:      ev.Type,
			UserID:    ev.UserID,
			Email:     ev.Email,
		})
		cancel()
		if err != nil {
			logger.Error("index event failed", "type", ev.Type, "user_id", ev.UserID, "error", err)
			continue
		}
		logger.Info("event indexed", "type", ev.Type, "user_id", ev.UserID, "offset", msg.Offset)
	}

	logger.Info("shutting down")
	if err := reader.Close(); err != nil {
		logger.Error("reader close error", "error", err)
	}
	logger.Info("shutdown complete")
}
