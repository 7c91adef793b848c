package config

import (
	"github.com/joho/godotenv"

	pkgconfig "github.com/monashmerchant/shop/pkg/config"
)

type Config struct {
	Port     string
	LogLevel string

	StoreBackend string
	DatabaseDSN  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string
	SearchIndex     string

	SeedDemo bool
}

// Load reads the environment, optionally topped up from a .env file.
// Only the redis backend has a hard requirement; everything else
// falls back to local defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:     pkgconfig.EnvDefault("PORT", "8080"),
		LogLevel: pkgconfig.EnvDefault("LOG_LEVEL", "info"),

		StoreBackend: pkgconfig.EnvDefault("STORE_BACKEND", "gorm"),
		DatabaseDSN:  pkgconfig.EnvDefault("DATABASE_DSN", "shop.db"),

		RedisAddr:     pkgconfig.EnvDefault("REDIS_ADDR", ""),
		RedisPassword: pkgconfig.EnvDefault("REDIS_PASSWORD", ""),
		RedisDB:       pkgconfig.EnvIntDefault("REDIS_DB", 0),

		KafkaBrokers: pkgconfig.CSV(pkgconfig.EnvDefault("KAFKA_BROKERS", "")),
		KafkaTopic:   pkgconfig.EnvDefault("KAFKA_TOPIC", "shop.events"),

		ElasticURL:      pkgconfig.EnvDefault("ELASTIC_URL", ""),
		ElasticUser:     pkgconfig.EnvDefault("ELASTIC_USER", ""),
		ElasticPassword: pkgconfig.EnvDefault("ELASTIC_PASSWORD", ""),
		SearchIndex:     pkgconfig.EnvDefault("SEARCH_INDEX", "products"),

		SeedDemo: pkgconfig.EnvBoolDefault("SEED_DEMO", false),
	}

	if cfg.StoreBackend == "redis" {
		pkgconfig.MustNonEmpty(cfg.RedisAddr, "REDIS_ADDR")
	}

	return cfg
}
