package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Telegram  TelegramConfig
	Staff     StaffConfig
	Broadcast BroadcastConfig
	Log       LogConfig
	LockFile  string
	Health    HealthConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type TelegramConfig struct {
	BotToken       string
	ChannelID      string
	ChannelLink    string
	PayoutContact  string
	PollTimeout    time.Duration
	RequestTimeout time.Duration
}

type StaffConfig struct {
	AdminIDs   []int64
	ManagerIDs []int64
}

type BroadcastConfig struct {
	Delay time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type HealthConfig struct {
	Interval time.Duration
}

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// PayoutThreshold is the minimum balance an account needs to request a payout.
const PayoutThreshold = 15

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverPostgres {
		return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
	}
	return "file:" + d.Path + "?_foreign_keys=on&_busy_timeout=5000"
}

// MigrationURL returns the golang-migrate database URL for the configured driver.
func (d DatabaseConfig) MigrationURL() string {
	if d.Driver == DriverPostgres {
		return d.DSN()
	}
	return "sqlite3://" + d.Path
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	pollTimeout, err := getDuration("TELEGRAM_POLL_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	requestTimeout, err := getDuration("TELEGRAM_REQUEST_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	broadcastDelay, err := getDuration("BROADCAST_DELAY", "50ms")
	if err != nil {
		return nil, err
	}
	healthInterval, err := getDuration("HEALTH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	adminIDs, err := parseIDList(getEnv("ADMIN_IDS", ""))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}
	managerIDs, err := parseIDList(getEnv("MANAGER_IDS", ""))
	if err != nil {
		return nil, fmt.Errorf("MANAGER_IDS: %w", err)
	}

	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("SERVER_PORT", "8080")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: port,
		},
		Database: databaseFromEnv(),
		Telegram: TelegramConfig{
			BotToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChannelID:      getEnv("TELEGRAM_CHANNEL_ID", "@nftMETRO"),
			ChannelLink:    getEnv("TELEGRAM_CHANNEL_LINK", "https://t.me/nftMETRO"),
			PayoutContact:  getEnv("PAYOUT_CONTACT", "@goatlyroony"),
			PollTimeout:    pollTimeout,
			RequestTimeout: requestTimeout,
		},
		Staff: StaffConfig{
			AdminIDs:   adminIDs,
			ManagerIDs: managerIDs,
		},
		Broadcast: BroadcastConfig{
			Delay: broadcastDelay,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		LockFile: getEnv("LOCK_FILE", "refstars.lock"),
		Health: HealthConfig{
			Interval: healthInterval,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that env parsing alone cannot catch.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	admins := make(map[int64]struct{}, len(c.Staff.AdminIDs))
	for _, id := range c.Staff.AdminIDs {
		admins[id] = struct{}{}
	}
	for _, id := range c.Staff.ManagerIDs {
		if _, ok := admins[id]; ok {
			return fmt.Errorf("id %d is listed in both ADMIN_IDS and MANAGER_IDS", id)
		}
	}
	return nil
}

// LoadDatabase reads only the database settings, for tools that never talk
// to Telegram.
func LoadDatabase() DatabaseConfig {
	_ = godotenv.Load()
	return databaseFromEnv()
}

func databaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", DriverSQLite),
		Path:     getEnv("DB_PATH", "refstars.db"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "refstars"),
		Password: getEnv("DB_PASSWORD", "refstars"),
		Name:     getEnv("DB_NAME", "refstars"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
