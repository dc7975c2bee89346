package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"lifeledger-backend-go/internal/config"
	"lifeledger-backend-go/pkg/mailer"
	"lifeledger-backend-go/pkg/messagequeue"
)

// events-tail consumes the domain events queue, logs every envelope and mails
// a receipt for each completed payment when SMTP is configured.
func main() {
	appConfig, err := config.LoadEventsConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync()

	mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL}, logger)
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mq.Close()

	handler := &eventHandler{logger: logger}
	if appConfig.SMTPUsername != "" {
		m, err := mailer.New(mailer.Config{
			Host:     appConfig.SMTPHost,
			Port:     appConfig.SMTPPort,
			Username: appConfig.SMTPUsername,
			Password: appConfig.SMTPPassword,
			From:     appConfig.MailFrom,
		})
		if err != nil {
			logger.Fatal("CRITICAL_ERROR: Invalid SMTP configuration", zap.Error(err))
		}
		handler.receipts = m
	} else {
		logger.Info("SMTP_USERNAME not set, receipts disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = mq.Consume(ctx, appConfig.EventsQueue, handler.handle)
	if err != nil {
		logger.Error("Consumer stopped", zap.Error(err))
	}
	logger.Info("events-tail exiting")
}
