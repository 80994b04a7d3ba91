package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "grantflow/pkg/platform/audit"
)

// KafkaSink forwards audit events to a Kafka topic keyed by dossier id, so
// per-dossier ordering is preserved within a partition. Forwarding is
// fire-and-forget: delivery failures are absorbed, the store already holds
// the event.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// kafkaRecord is the JSON payload published to the audit topic.
type kafkaRecord struct {
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	DossierID string    `json:"dossier_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
}

// NewKafkaSink connects to the given brokers and ensures the audit topic
// exists before the first event is produced.
func NewKafkaSink(ctx context.Context, brokers []string, topic string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}
	return &KafkaSink{client: client, topic: topic}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	admin := kadm.NewClient(client)
	topics, err := admin.ListTopics(ctx, topic)
	if err != nil {
		return fmt.Errorf("list kafka topics: %w", err)
	}
	if topics.Has(topic) {
		return nil
	}
	_, err = admin.CreateTopic(ctx, 3, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create kafka topic %q: %w", topic, err)
	}
	return nil
}

func (k *KafkaSink) Forward(ctx context.Context, event audit.Event) error {
	payload := kafkaRecord{
		Category:  string(event.Category),
		Timestamp: event.Timestamp,
		Subject:   event.Subject,
		Action:    event.Action,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		ActorID:   event.ActorID,
	}
	var key []byte
	if !event.DossierID.IsZero() {
		payload.DossierID = event.DossierID.String()
		key = []byte(payload.DossierID)
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	k.client.Produce(ctx, &kgo.Record{Topic: k.topic, Key: key, Value: value}, nil)
	return nil
}

// Close flushes pending records and releases the client.
func (k *KafkaSink) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = k.client.Flush(ctx)
	k.client.Close()
}
