package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of environment overrides, e.g. SALON_DATABASE_HOST.
const EnvPrefix = "SALON"

// Config конфигурация сервиса
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
	Redis        RedisConfig        `toml:"redis"`
	SalonService SalonServiceConfig `toml:"salon_service" split_words:"true"`
	Booking      BookingConfig      `toml:"booking"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port" split_words:"true"`
	ReadTimeout     int `toml:"read_timeout" split_words:"true"`
	WriteTimeout    int `toml:"write_timeout" split_words:"true"`
	IdleTimeout     int `toml:"idle_timeout" split_words:"true"`
	ShutdownTimeout int `toml:"shutdown_timeout" split_words:"true"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int    `toml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" split_words:"true"`
}

// DSN строка подключения в формате key=value для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// URL строка подключения в формате postgres:// для golang-migrate
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name" split_words:"true"`
}

// RedisConfig настройки Redis для распределённой блокировки.
// Если Enabled = false, используется блокировка внутри процесса.
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// SalonServiceConfig настройки клиента справочника салонов
type SalonServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// BookingConfig правила бронирования
type BookingConfig struct {
	SlotGranularityMinutes  int    `toml:"slot_granularity_minutes" split_words:"true"`
	AdvanceBookingDays      int    `toml:"advance_booking_days" split_words:"true"`
	MinBookingNoticeMinutes int    `toml:"min_booking_notice_minutes" split_words:"true"`
	LockTTLSeconds          int    `toml:"lock_ttl_seconds" split_words:"true"`
	LockWaitSeconds         int    `toml:"lock_wait_seconds" split_words:"true"`
	Timezone                string `toml:"timezone"`
}

// LockTTL время жизни распределённой блокировки
func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

// LockWait максимальное время ожидания блокировки
func (b BookingConfig) LockWait() time.Duration {
	return time.Duration(b.LockWaitSeconds) * time.Second
}

// Location часовой пояс салона
func (b BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}

// Default значения по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "salon_reservations",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "salon-reservation-service",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		SalonService: SalonServiceConfig{
			URL:     "http://localhost:8081",
			Timeout: 5,
		},
		Booking: BookingConfig{
			SlotGranularityMinutes:  10,
			AdvanceBookingDays:      60,
			MinBookingNoticeMinutes: 0,
			LockTTLSeconds:          10,
			LockWaitSeconds:         5,
			Timezone:                "Asia/Tokyo",
		},
	}
}

// Load читает конфигурацию: значения по умолчанию, затем TOML файл,
// затем переменные окружения с префиксом SALON_ (включая .env, если есть)
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be in 1..65535, got %d", c.Server.HTTPPort)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return errors.New("database.host and database.dbname are required")
	}
	if c.SalonService.URL == "" {
		return errors.New("salon_service.url is required")
	}
	if c.SalonService.Timeout <= 0 {
		return errors.New("salon_service.timeout must be positive")
	}
	if c.Booking.SlotGranularityMinutes <= 0 {
		return fmt.Errorf("booking.slot_granularity_minutes must be positive, got %d", c.Booking.SlotGranularityMinutes)
	}
	if c.Booking.AdvanceBookingDays < 0 {
		return errors.New("booking.advance_booking_days must not be negative")
	}
	if c.Booking.MinBookingNoticeMinutes < 0 {
		return errors.New("booking.min_booking_notice_minutes must not be negative")
	}
	if c.Booking.LockTTLSeconds <= 0 || c.Booking.LockWaitSeconds <= 0 {
		return errors.New("booking.lock_ttl_seconds and booking.lock_wait_seconds must be positive")
	}
	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("booking.timezone: %w", err)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}
	return nil
}
