package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
)

// Message is the document published to the ERP for one entity.
type Message struct {
	CorrelationID string          `json:"correlation_id"`
	EntityType    string          `json:"entity_type"`
	EntityID      uint            `json:"entity_id"`
	Action        string          `json:"action"`
	Number        string          `json:"number"`
	SupplierID    uint            `json:"supplier_id"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// PubSubPublisher sends messages to a Google Pub/Sub topic.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubPublisher uses credentialsJSON when given, otherwise Application Default Credentials.
func NewPubSubPublisher(ctx context.Context, projectID, topicID, credentialsJSON string) (*PubSubPublisher, error) {
	var opts []option.ClientOption
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}

	topic := client.Topic(topicID)
	ok, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("check topic %q: %w", topicID, err)
	}
	if !ok {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("create topic %q: %w", topicID, err)
		}
	}
	return &PubSubPublisher{client: client, topic: topic}, nil
}

func (p *PubSubPublisher) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	res := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"entity_type":    msg.EntityType,
			"action":         msg.Action,
			"correlation_id": msg.CorrelationID,
		},
	})
	_, err = res.Get(ctx)
	return err
}

func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}

// SimulatedPublisher stands in for the ERP when no topic is configured.
// It records what it was given and fails with Err when set.
type SimulatedPublisher struct {
	mu   sync.Mutex
	Err  error
	Sent []Message
}

func (p *SimulatedPublisher) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Sent = append(p.Sent, msg)
	return nil
}

func (p *SimulatedPublisher) Close() error { return nil }
