package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Resource  ResourceConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	AMQP      AMQPConfig
	Sales     SalesConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// ResourceConfig points at the upstream REST backend holding all records
type ResourceConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// AMQPConfig is optional; an empty URL disables event publishing
type AMQPConfig struct {
	URL      string
	Exchange string
}

type SalesConfig struct {
	SessionTTL     time.Duration
	StockPolicy    string
	DiscountPolicy string
}

func Load() *Config {
	// .env.local overrides are optional and never committed
	if err := godotenv.Load(".env.local"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: Could not read .env.local: %v", err)
	}

	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RESOURCE_API_URL", "http://localhost:3001")
	v.SetDefault("RESOURCE_TIMEOUT_SECONDS", 10)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("AMQP_EXCHANGE", "backoffice.events")
	v.SetDefault("SESSION_TTL_MINUTES", 120)
	v.SetDefault("STOCK_POLICY", "snapshot")
	v.SetDefault("DISCOUNT_POLICY", "unbounded")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Resource: ResourceConfig{
			BaseURL: strings.TrimRight(v.GetString("RESOURCE_API_URL"), "/"),
			Timeout: time.Duration(v.GetInt("RESOURCE_TIMEOUT_SECONDS")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		AMQP: AMQPConfig{
			URL:      v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
		},
		Sales: SalesConfig{
			SessionTTL:     time.Duration(v.GetInt("SESSION_TTL_MINUTES")) * time.Minute,
			StockPolicy:    v.GetString("STOCK_POLICY"),
			DiscountPolicy: v.GetString("DISCOUNT_POLICY"),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
