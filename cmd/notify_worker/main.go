package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/classroom-tasks/config"
	"github.com/oksasatya/classroom-tasks/pkg/helpers"
	"github.com/oksasatya/classroom-tasks/pkg/mailer"
)

// outcome of handling one delivery
type outcome int

const (
	ack outcome = iota
	drop
	retry
)

type notifier interface {
	Notify(ctx context.Context, ev mailer.TaskEvent) error
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notify", cfg.Env)

	if !cfg.NotifyEnabled {
		logger.Info("NOTIFY_ENABLED=false; notify worker disabled")
		return
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	conn, ch, err := helpers.DialQueue(cfg.RabbitMQURL, cfg.RabbitMQTaskEventsQueue)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}
	defer func() { _ = conn.Close() }()
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQTaskEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	n := mailer.NewNotifier(mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender))
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			switch handle(ctx, n, msg.Body, msg.Redelivered, logger) {
			case ack:
				_ = msg.Ack(false)
			case retry:
				_ = msg.Nack(false, true)
			default:
				_ = msg.Nack(false, false)
			}
		}
		close(done)
	}()

	logger.Infof("notify worker listening on queue=%s", cfg.RabbitMQTaskEventsQueue)
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// handle decodes one task event and mails it. A failed send is retried once.
func handle(ctx context.Context, n notifier, body []byte, redelivered bool, logger *logrus.Logger) outcome {
	var ev mailer.TaskEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		logger.WithError(err).Warn("bad task event")
		return drop
	}
	fields := logrus.Fields{"type": ev.Type, "task_id": ev.TaskID}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	err := n.Notify(c, ev)
	switch {
	case err == nil:
		logger.WithFields(fields).Info("task event delivered")
		return ack
	case errors.Is(err, mailer.ErrNoRecipient):
		logger.WithFields(fields).Debug("task event without recipient")
		return ack
	case redelivered:
		logger.WithError(err).WithFields(fields).Error("task event failed twice, dropping")
		return drop
	default:
		logger.WithError(err).WithFields(fields).Warn("task event failed, requeueing")
		return retry
	}
}

var _ notifier = (*mailer.Notifier)(nil)
