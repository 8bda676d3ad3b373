package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"toll-system/internal/config"
	"toll-system/internal/logger"
	"toll-system/internal/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer публикует события сборов в Kafka
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает синхронного продюсера Kafka
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Net.DialTimeout = 3 * time.Second
	saramaCfg.Metadata.Retry.Max = 1

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.WithField("brokers", cfg.Brokers).Info("Kafka producer created")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// PublishDailyFeeCalculated публикует событие о рассчитанном дневном сборе
func (p *Producer) PublishDailyFeeCalculated(fee *models.VehicleDailyFee) error {
	data, err := json.Marshal(models.DailyFeeCalculatedData{
		Plate:       fee.Plate,
		Date:        fee.Date,
		VehicleType: fee.VehicleType,
		Fee:         fee.Fee,
		Passages:    fee.Passages,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal daily fee: %w", err)
	}

	event := models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeDailyFeeCalculated,
		Timestamp: time.Now(),
		Data:      data,
	}
	return p.publishEvent(p.topics.Tolls, fee.Plate, event)
}

// Ключ сообщения — номер ТС, чтобы события одной машины попадали в одну партицию.
func (p *Producer) publishEvent(topic, key string, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(payload),
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send event %s: %w", event.Type, err)
	}

	p.log.WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
		"topic":      topic,
		"partition":  partition,
		"offset":     offset,
	}).Debug("Event published")

	return nil
}

// Close закрывает продюсера
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
