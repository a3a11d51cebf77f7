package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/mitchellh/mapstructure"
)

const KafkaExporterName = "kafka"

type KafkaConfig struct {
	Host  string `mapstructure:"host"`
	Port  string `mapstructure:"port"`
	Topic string `mapstructure:"topic"`
}

// KafkaExporter publishes security events to a kafka topic consumed by
// the monitoring collaborator.
type KafkaExporter struct {
	cfg      KafkaConfig
	producer *kafka.Producer
}

func NewKafkaExporter(settings map[string]interface{}) (*KafkaExporter, error) {
	var conf KafkaConfig
	if err := mapstructure.Decode(settings, &conf); err != nil {
		return nil, fmt.Errorf("invalid kafka config: %w", err)
	}
	if conf.Host == "" {
		return nil, errors.New("kafka host is required")
	}
	if conf.Port == "" {
		return nil, errors.New("kafka port is required")
	}
	if conf.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": fmt.Sprintf("%s:%s", conf.Host, conf.Port),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &KafkaExporter{cfg: conf, producer: producer}, nil
}

func (e *KafkaExporter) Name() string {
	return KafkaExporterName
}

func (e *KafkaExporter) Handle(_ context.Context, evt *SecurityEvent) error {
	if e.producer == nil {
		return errors.New("kafka producer is not initialized")
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = e.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &e.cfg.Topic, Partition: kafka.PartitionAny},
		Value:          data,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	ev := <-deliveryChan
	m, ok := ev.(*kafka.Message)
	if !ok {
		return errors.New("unexpected kafka delivery event type")
	}
	if m.TopicPartition.Error != nil {
		return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
	}
	return nil
}

func (e *KafkaExporter) Close() {
	if e.producer != nil {
		e.producer.Flush(5000)
		e.producer.Close()
	}
}
