package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	JWT       JWTConfig
	Lottery   LotteryConfig
	Payments  PaymentsConfig
	Webhook   WebhookConfig
	Scheduler SchedulerConfig
	LogLevel  string
	LogFormat string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration. With Enabled false the
// ledger lives in process memory.
type MongoDBConfig struct {
	Enabled  bool
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	Issuer    string
	ExpiresIn time.Duration
}

// LotteryConfig holds the parameters used when the ledger is created
type LotteryConfig struct {
	TicketUnit                uint64
	EligibilityTokenReference string
	AdminAuthority            string
	AutoInitialize            bool
}

// PaymentsConfig holds payout gateway configuration
type PaymentsConfig struct {
	BaseURL     string
	APIKey      string
	MockAPI     bool
	MockBalance uint64
}

// WebhookConfig holds the event webhook. An empty URL logs events instead.
type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

// SchedulerConfig holds the draw scheduler configuration
type SchedulerConfig struct {
	Enabled    bool
	Operator   string
	Interval   time.Duration
	Hourly     bool
	Daily      bool
	DailyHour  int
	MinJackpot uint64
}

// Load loads configuration from a .env file, environment variables and
// config files, in increasing order of precedence for the latter two.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read configuration
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Unmarshal configuration
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.MongoDB.Enabled && c.MongoDB.URI == "" {
		return fmt.Errorf("MongoDB.URI is required when MongoDB is enabled")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT.Secret is required")
	}
	if c.Lottery.TicketUnit == 0 {
		return fmt.Errorf("Lottery.TicketUnit must be positive")
	}
	if c.Lottery.AutoInitialize && (c.Lottery.EligibilityTokenReference == "" || c.Lottery.AdminAuthority == "") {
		return fmt.Errorf("Lottery.EligibilityTokenReference and Lottery.AdminAuthority are required to auto-initialize")
	}
	if c.Scheduler.DailyHour < 0 || c.Scheduler.DailyHour > 23 {
		return fmt.Errorf("Scheduler.DailyHour must be between 0 and 23, got %d", c.Scheduler.DailyHour)
	}
	if c.Scheduler.Enabled && c.Scheduler.Operator == "" {
		return fmt.Errorf("Scheduler.Operator is required when the scheduler is enabled")
	}
	return nil
}

// setDefaults sets default values for configuration. Every key needs a
// default so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	v.SetDefault("MongoDB.Enabled", false)
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("MongoDB.Database", "jackpot-ledger")
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.Issuer", "jackpot-ledger")
	v.SetDefault("JWT.ExpiresIn", 24*time.Hour)
	v.SetDefault("Lottery.TicketUnit", uint64(10_000))
	v.SetDefault("Lottery.EligibilityTokenReference", "")
	v.SetDefault("Lottery.AdminAuthority", "")
	v.SetDefault("Lottery.AutoInitialize", false)
	v.SetDefault("Payments.BaseURL", "")
	v.SetDefault("Payments.APIKey", "")
	v.SetDefault("Payments.MockAPI", true)
	v.SetDefault("Payments.MockBalance", uint64(1_000_000_000_000))
	v.SetDefault("Webhook.URL", "")
	v.SetDefault("Webhook.Secret", "")
	v.SetDefault("Webhook.Timeout", 10*time.Second)
	v.SetDefault("Scheduler.Enabled", false)
	v.SetDefault("Scheduler.Operator", "")
	v.SetDefault("Scheduler.Interval", time.Minute)
	v.SetDefault("Scheduler.Hourly", true)
	v.SetDefault("Scheduler.Daily", true)
	v.SetDefault("Scheduler.DailyHour", 20)
	v.SetDefault("Scheduler.MinJackpot", models.MinJackpotAmount)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", "text")
}
