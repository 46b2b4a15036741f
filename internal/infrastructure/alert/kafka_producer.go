// Package alert implements the AlertService interface using Kafka.
package alert

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/ueba/internal/config"
	"github.com/turtacn/ueba/internal/domain/models"
	"github.com/turtacn/ueba/internal/domain/service"
	"github.com/turtacn/ueba/pkg/logger"
)

// KafkaProducer is a Kafka-backed implementation of the AlertService.
type KafkaProducer struct {
	writer *kafka.Writer
	log    logger.Logger
}

var _ service.AlertService = (*KafkaProducer)(nil)

// NewKafkaProducer creates a producer for the configured alert topic.
func NewKafkaProducer(cfg config.AlertingConfig, log logger.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaProducer{
		writer: writer,
		log:    log.WithComponent("KafkaProducer"),
	}
}

// Publish sends one alert to the topic, keyed by user so one user's alerts
// stay ordered within a partition.
func (p *KafkaProducer) Publish(ctx context.Context, alert models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		p.log.Error(ctx, "failed to marshal alert", err, logger.String("alert_id", alert.ID))
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(alert.UserID),
		Value: payload,
	})
	if err != nil {
		p.log.Error(ctx, "failed to write alert to kafka", err, logger.String("alert_id", alert.ID))
	}
	return err
}

// Close closes the underlying Kafka writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
