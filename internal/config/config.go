package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Heynabo  HeynaboConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Policy   PolicyConfig
	Log      LogConfig
}

type HeynaboConfig struct {
	Host        string
	Email       string
	Password    string
	BookingID   int64
	GroupID     string
	PostPublic  bool
	HTTPTimeout time.Duration
}

type DatabaseConfig struct {
	Driver       string // postgres or sqlite
	DSN          string
	AutoMigrate  bool
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Enabled bool
	Addr    string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type PolicyConfig struct {
	UnitCeiling        int64
	MaxFutureBookings  int
	MaxBookingsPerYear int
	TimeZone           string
}

type LogConfig struct {
	Dir   string
	Level string
}

// LoadDotEnv loads .env (or the given files) into the environment. Values
// already set in the environment win. A missing file is reported, not fatal.
func LoadDotEnv(filenames ...string) error {
	return godotenv.Load(filenames...)
}

func Load() *Config {
	return &Config{
		Heynabo: HeynaboConfig{
			Host:        getEnv("HEYNABO_HOST", ""),
			Email:       getEnv("HEYNABO_EMAIL", ""),
			Password:    getEnv("HEYNABO_PASSWORD", ""),
			BookingID:   getEnvInt64("HEYNABO_BOOKING_ID", 0),
			GroupID:     getEnv("HEYNABO_GROUP_ID", "12"),
			PostPublic:  getEnvBool("HEYNABO_POST_PUBLIC", false),
			HTTPTimeout: time.Duration(getEnvInt("HEYNABO_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			DSN:          getEnv("DB_DSN", ""),
			AutoMigrate:  getEnvBool("DB_AUTO_MIGRATE", true),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 5),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Enabled: getEnvBool("REDIS_ENABLED", false),
			Addr:    getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC_VIOLATIONS", "bookingwarden.violations.detected"),
		},
		Policy: PolicyConfig{
			UnitCeiling:        getEnvInt64("POLICY_UNIT_CEILING", 39),
			MaxFutureBookings:  getEnvInt("POLICY_MAX_FUTURE_BOOKINGS", 1),
			MaxBookingsPerYear: getEnvInt("POLICY_MAX_BOOKINGS_PER_YEAR", 2),
			TimeZone:           getEnv("POLICY_TIME_ZONE", "Europe/Copenhagen"),
		},
		Log: LogConfig{
			Dir:   getEnv("LOG_DIR", "logs"),
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}
}

// Validate reports every missing value a reconciliation pass needs.
func (c *Config) Validate() error {
	var errs []error
	if c.Heynabo.Host == "" {
		errs = append(errs, errors.New("HEYNABO_HOST not set"))
	}
	if c.Heynabo.Email == "" || c.Heynabo.Password == "" {
		errs = append(errs, errors.New("HEYNABO_EMAIL and HEYNABO_PASSWORD must be set"))
	}
	if c.Heynabo.BookingID <= 0 {
		errs = append(errs, errors.New("HEYNABO_BOOKING_ID must be a positive integer"))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("DB_DSN not set"))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.Database.Driver))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS must be set when KAFKA_ENABLED"))
	}
	if _, err := time.LoadLocation(c.Policy.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("POLICY_TIME_ZONE: %w", err))
	}
	return errors.Join(errs...)
}

// Location resolves the policy time zone, falling back to UTC.
func (p PolicyConfig) Location() *time.Location {
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
