package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-reservations/internal/config"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/models"
)

// Producer streams reservation and attendance events for the read side
// (notifications, dashboards). Publishing is best-effort: the services log
// failures and keep going, the committed store state is the source of truth.
type Producer struct {
	completed *kafka.Writer
	refunded  *kafka.Writer
	checkedIn *kafka.Writer
	log       *logger.Logger
	mockMode  bool
}

func NewProducer(cfg config.KafkaConfig, log *logger.Logger) *Producer {
	p := &Producer{log: log, mockMode: cfg.MockMode || !cfg.Enabled}
	if p.mockMode {
		log.Warn("KAFKA", "Producer running in mock mode, events will only be logged")
		return p
	}
	p.completed = newWriter(cfg.Brokers, cfg.Topics.PurchaseCompleted)
	p.refunded = newWriter(cfg.Brokers, cfg.Topics.PurchaseRefunded)
	p.checkedIn = newWriter(cfg.Brokers, cfg.Topics.GuestCheckedIn)
	return p
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
}

func (p *Producer) PublishPurchaseCompleted(purchase models.Purchase) error {
	return p.publish(p.completed, "purchase_completed", purchase.PurchaseID, purchase)
}

func (p *Producer) PublishPurchaseRefunded(result models.RefundResult) error {
	return p.publish(p.refunded, "purchase_refunded", result.PurchaseID, result)
}

func (p *Producer) PublishGuestCheckedIn(ev models.CheckInEvent) error {
	return p.publish(p.checkedIn, "guest_checked_in", ev.DocumentNumber, ev)
}

func (p *Producer) publish(w *kafka.Writer, event, key string, payload interface{}) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if p.mockMode {
		p.log.LogKafka("MOCK", event, string(msgBytes))
		return nil
	}

	p.log.LogKafka("PUBLISH", w.Topic, fmt.Sprintf("key=%s", key))
	return w.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	for _, w := range []*kafka.Writer{p.completed, p.refunded, p.checkedIn} {
		if w != nil {
			_ = w.Close()
		}
	}
	return nil
}
