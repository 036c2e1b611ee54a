package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      string `envconfig:"ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	KafkaBroker   string `envconfig:"KAFKA_BROKER" required:"true"`
	KafkaTopic    string `envconfig:"KAFKA_TOPIC" default:"member.events"`
	KafkaGroupID  string `envconfig:"KAFKA_GROUP_ID" default:"mail-svc"`
	KafkaUsername string `envconfig:"KAFKA_USERNAME"`
	KafkaPassword string `envconfig:"KAFKA_PASSWORD"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER" required:"true"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD" required:"true"`
	MailFrom     string `envconfig:"MAIL_FROM" required:"true"`
	MailFromName string `envconfig:"MAIL_FROM_NAME" default:"Membership Office"`

	// link placed in the "you have been verified" mail
	LoginURL string `envconfig:"LOGIN_URL" default:"http://localhost:5173/login"`
}

func LoadConfig() (Config, error) {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			log.Println("Warning: .env not loaded:", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("error processing environment: %w", err)
	}
	return cfg, nil
}
