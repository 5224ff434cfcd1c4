package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/tablebooking/config"
	"github.com/Domenick1991/tablebooking/internal/email"
	"github.com/Domenick1991/tablebooking/internal/kafka"
	"github.com/Domenick1991/tablebooking/internal/logger"
	"go.uber.org/zap"
)

// The worker delivers guest notifications for reservation events. Table holds
// expire in Redis on their own, so there is nothing to sweep here.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Production)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	topic := cfg.Kafka.NotificationsTopic
	if topic == "" {
		topic = cfg.Kafka.ReservationsTopic
	}
	if len(cfg.Kafka.Brokers) == 0 || topic == "" {
		log.Fatal("kafka brokers and a topic are required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topic, log.Named("consumer"))
	defer consumer.Close()

	sender := email.NewSender(log.Named("email"))

	log.Info("worker started", zap.String("topic", topic), zap.String("group_id", cfg.Kafka.GroupID))
	if err := consumer.Consume(ctx, sender.Send); err != nil {
		log.Error("consumer stopped", zap.Error(err))
		return
	}
	log.Info("worker stopped")
}
