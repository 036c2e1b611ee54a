package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env          string `envconfig:"ENV" default:"dev"`
	ServerPort   string `envconfig:"SERVER_PORT" default:":3000"`
	BaseURL      string `envconfig:"BASE_URL" default:"http://localhost:5173"`
	AccessSecret string `envconfig:"ACCESS_SECRET" required:"true"`
	CookieSecure bool   `envconfig:"COOKIE_SECURE" default:"true"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`

	// database
	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseDSN string `envconfig:"DATABASE_DSN" required:"true"`

	// kafka, optional
	KafkaBroker   string `envconfig:"KAFKA_BROKER"`
	KafkaTopic    string `envconfig:"KAFKA_TOPIC" default:"member.events"`
	KafkaUsername string `envconfig:"KAFKA_USERNAME"`
	KafkaPassword string `envconfig:"KAFKA_PASSWORD"`

	CloudinaryUrl string `envconfig:"CLOUDINARY_URL"`

	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"10"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// first administrator, created on boot when no admin exists
	SeedAdminEmail string `envconfig:"SEED_ADMIN_EMAIL"`
	SeedAdminName  string `envconfig:"SEED_ADMIN_NAME" default:"Administrator"`
}

func LoadConfig() (Config, error) {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			log.Println("Warning: env file not found or could not be loaded:", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("error processing environment: %w", err)
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q (postgres or sqlite)", cfg.DBDriver)
	}
	return cfg, nil
}
