package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/SundayYogurt/member_service/infra/queue"
	"github.com/SundayYogurt/member_service/mail-svc/config"
	"github.com/SundayYogurt/member_service/mail-svc/internal/api/rest/handlers"
	"github.com/SundayYogurt/member_service/mail-svc/internal/services"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// ---------- Load Config ----------
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zcfg := zap.NewProductionConfig()
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("mail service starting",
		zap.String("broker", cfg.KafkaBroker),
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group_id", cfg.KafkaGroupID),
	)

	// ---------- Init Service ----------
	mailService := services.NewMailService(
		services.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		},
		cfg.MailFrom,
		cfg.MailFromName,
		cfg.LoginURL,
		logger,
	)

	// ---------- Init Handler ----------
	handler := handlers.NewMailHandler(mailService, logger)

	// ---------- Init Kafka Consumer ----------
	consumer := queue.NewKafkaConsumer(queue.ConsumerConfig{
		Broker:   cfg.KafkaBroker,
		Topic:    cfg.KafkaTopic,
		GroupID:  cfg.KafkaGroupID,
		Username: cfg.KafkaUsername,
		Password: cfg.KafkaPassword,
	}, "Mail Service", handler, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------- Start Listening ----------
	logger.Info("mail service listening for events")
	if err := consumer.Listen(ctx); err != nil {
		logger.Error("consumer stopped", zap.Error(err))
	}
}
