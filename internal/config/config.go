package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment. It is
// loaded once at process start and treated as immutable afterwards.
type Config struct {
	Mongo struct {
		URI      string
		Database string
	}
	Redis struct {
		Addr     string
		Password string
	}
	Postgres struct {
		DSN string
	}
	Kafka struct {
		Brokers []string
		Topic   string
		GroupID string
	}
	Push struct {
		ProjectID       string
		CredentialsFile string
		RatePerSecond   int
	}
	Notification struct {
		// DeviceTokenBatchSize bounds concurrent load on the user store and
		// the push provider. 150 encodes a provider/cost constraint of the
		// source system; do not re-derive.
		DeviceTokenBatchSize int
		// MaxDevicesPerPush caps device endpoints attempted per recipient.
		MaxDevicesPerPush int
		// FieldStaffJobLevel is the implicit job level for branch broadcasts.
		FieldStaffJobLevel int
		// DeliveryLogEnabled gates per-device audit rows.
		DeliveryLogEnabled bool
	}
	Logging struct {
		Dir   string
		Level string
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.Mongo.URI = os.Getenv("MONGO_URI")
	cfg.Mongo.Database = os.Getenv("MONGO_DATABASE")

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	cfg.Postgres.DSN = os.Getenv("POSTGRES_DSN")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	cfg.Push.ProjectID = os.Getenv("PUSH_PROJECT_ID")
	cfg.Push.CredentialsFile = os.Getenv("PUSH_CREDENTIALS_FILE")
	if r, err := strconv.Atoi(os.Getenv("PUSH_RATE_PER_SECOND")); err == nil {
		cfg.Push.RatePerSecond = r
	}

	if bs, err := strconv.Atoi(os.Getenv("DEVICE_TOKEN_BATCH_SIZE")); err == nil {
		cfg.Notification.DeviceTokenBatchSize = bs
	}
	if md, err := strconv.Atoi(os.Getenv("MAX_DEVICES_PER_PUSH")); err == nil {
		cfg.Notification.MaxDevicesPerPush = md
	}
	if jl, err := strconv.Atoi(os.Getenv("FIELD_STAFF_JOB_LEVEL")); err == nil {
		cfg.Notification.FieldStaffJobLevel = jl
	}
	cfg.Notification.DeliveryLogEnabled = os.Getenv("DELIVERY_LOG_ENABLED") == "true"

	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Validate required settings
	missing := []string{}
	if cfg.Mongo.URI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if cfg.Mongo.Database == "" {
		missing = append(missing, "MONGO_DATABASE")
	}
	if cfg.Notification.DeliveryLogEnabled && cfg.Postgres.DSN == "" {
		missing = append(missing, "POSTGRES_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.Push.RatePerSecond == 0 {
		cfg.Push.RatePerSecond = 500
	}
	if cfg.Notification.DeviceTokenBatchSize == 0 {
		cfg.Notification.DeviceTokenBatchSize = 150
	}
	if cfg.Notification.MaxDevicesPerPush == 0 {
		cfg.Notification.MaxDevicesPerPush = 3
	}
	if cfg.Notification.FieldStaffJobLevel == 0 {
		cfg.Notification.FieldStaffJobLevel = 1
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "workforce_notifications"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "notification-core"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}
