package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"admissions-service/common/metrics"

	"github.com/IBM/sarama"
)

// KafkaPublisher writes events to a single topic keyed by admission request,
// so every event of one request lands on the same partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger, m *metrics.Metrics) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, ProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	logger.Info("kafka publisher initialized", "brokers", brokers, "topic", topic)
	return NewKafkaPublisherWithProducer(producer, topic, logger, m), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger, m *metrics.Metrics) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
		metrics:  m,
	}
}

func ProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	return config
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key(event)),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	p.metrics.Messaging.RecordPublish(ctx, "kafka", p.topic, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("send to kafka topic %s: %w", p.topic, err)
	}

	p.logger.DebugContext(ctx, "event sent to kafka", "topic", p.topic, "partition", partition, "offset", offset, "type", event.Type)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

func key(event Event) string {
	if event.RequestID != 0 {
		return "request-" + strconv.FormatInt(event.RequestID, 10)
	}
	return "applicant-" + strconv.FormatInt(event.ApplicantID, 10)
}
