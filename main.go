package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-warden/internal/auth"
	"booking-warden/internal/config"
	"booking-warden/internal/database"
	"booking-warden/internal/directory"
	directorydb "booking-warden/internal/directory/db"
	"booking-warden/internal/heynabo"
	"booking-warden/internal/kafka"
	"booking-warden/internal/logger"
	"booking-warden/internal/monitor"
	"booking-warden/internal/order"
	orderdb "booking-warden/internal/order/db"
	"booking-warden/internal/policy"
	"booking-warden/internal/report"

	"github.com/go-redis/redis/v8"
)

// setupTokens wires the Heynabo login behind the Redis token cache when one
// is configured. A Redis outage only costs an extra login.
func setupTokens(cfg *config.Config, client *heynabo.Client, log *logger.Logger) (*auth.TokenProvider, *redis.Client) {
	if !cfg.Redis.Enabled {
		return auth.NewTokenProvider(client, nil, log), nil
	}
	redisClient, err := auth.InitializeTokenCache(cfg.Redis.Addr, log)
	if err != nil {
		log.Warn("CACHE", "Continuing without token cache")
		return auth.NewTokenProvider(client, nil, log), nil
	}
	return auth.NewTokenProvider(client, auth.NewRedisTokenCache(redisClient), log), redisClient
}

func setupPublishers(ctx context.Context, cfg *config.Config, client *heynabo.Client, tokens *auth.TokenProvider, log *logger.Logger) ([]report.Publisher, *kafka.Producer) {
	publishers := []report.Publisher{&report.PostPublisher{
		Client:  client,
		Tokens:  tokens,
		GroupID: cfg.Heynabo.GroupID,
		Public:  cfg.Heynabo.PostPublic,
	}}

	if !cfg.Kafka.Enabled {
		return publishers, nil
	}

	log.Info("KAFKA", fmt.Sprintf("Using Kafka brokers %v", cfg.Kafka.Brokers))
	if err := kafka.EnsureTopicsExist(ctx, cfg.Kafka.Brokers, []string{cfg.Kafka.Topic}, log); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	}
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	return append(publishers, &report.EventPublisher{Producer: producer}), producer
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, ".env file not found, using environment variables")
	}

	cfg := config.Load()
	log := logger.NewLogger(cfg.Log.Dir)
	defer log.Close()
	log.SetLevel(logger.ParseLevel(cfg.Log.Level))

	log.Info("APP", "Starting booking warden pass")
	if err := cfg.Validate(); err != nil {
		log.Fatal("CONFIG", fmt.Sprintf("Invalid configuration: %v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if err := database.PrepareSchema(ctx, bunDB, cfg.Database, log); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Schema preparation failed: %v", err))
	}

	client := heynabo.NewClient(cfg.Heynabo, &http.Client{Timeout: cfg.Heynabo.HTTPTimeout}, log)

	tokens, redisClient := setupTokens(cfg, client, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	publishers, producer := setupPublishers(ctx, cfg, client, tokens, log)
	if producer != nil {
		defer producer.Close()
	}

	loc := cfg.Policy.Location()
	orders := &orderdb.DB{Bun: bunDB}
	runner := &monitor.Runner{
		BookingID:  cfg.Heynabo.BookingID,
		Feed:       client,
		Tokens:     tokens,
		Reconciler: order.NewReconciler(orders, log),
		History:    orders,
		Directory:  directory.NewService(&directorydb.DB{Bun: bunDB}, log),
		Evaluator: policy.NewEvaluator(policy.Limits{
			MaxFutureBookings:  cfg.Policy.MaxFutureBookings,
			MaxBookingsPerYear: cfg.Policy.MaxBookingsPerYear,
			UnitCeiling:        cfg.Policy.UnitCeiling,
			Location:           loc,
		}, log),
		Reporter: report.NewReporter(log, publishers...),
		Location: loc,
		Logger:   log,
	}

	res, err := runner.Run(ctx, time.Now())
	if err != nil {
		log.Fatal("APP", fmt.Sprintf("Pass %s failed: %v", res.RunID, err))
	}

	log.Info("APP", fmt.Sprintf("Processed %d orders, %d violations reported to %d publisher(s)",
		res.Fetched, res.Violations, res.Report.Delivered))
}
