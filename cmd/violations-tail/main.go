// Command violations-tail follows the violation event stream and prints one
// line per offending unit. Useful to check what the pass published.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"booking-warden/internal/config"
	"booking-warden/internal/kafka"
	"booking-warden/internal/logger"
	"booking-warden/internal/models"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, ".env file not found, using environment variables")
	}

	cfg := config.Load()
	log := logger.NewLogger(cfg.Log.Dir)
	defer log.Close()

	groupID := "bookingwarden-tail"
	if len(os.Args) > 1 {
		groupID = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, groupID, log)
	defer consumer.Close()

	err := consumer.Start(ctx, func(ev models.ViolationEvent) {
		fmt.Printf("%s [%s] %s: %s\n",
			ev.DetectedAt.Format("02/01/2006, 15:04"), ev.RunID, ev.UnitLabel, strings.Join(ev.Messages, "; "))
	})
	if err != nil {
		log.Fatal("KAFKA", err.Error())
	}
}
