// Package events publishes integration events (lead.status_changed,
// site_survey.completed, document.generated, email.sent) for downstream
// consumers such as the ERP sync bridge.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	commonmqtt "github.com/cloudzeus/kimoncrm-sub005/common/mqtt"
	commonredis "github.com/cloudzeus/kimoncrm-sub005/common/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	LeadCreated         = "lead.created"
	LeadStatusChanged   = "lead.status_changed"
	SiteSurveyCreated   = "site_survey.created"
	SiteSurveyCompleted = "site_survey.completed"
	CablingSaved        = "site_survey.cabling_saved"
	DocumentGenerated   = "document.generated"
	EmailSent           = "email.sent"
)

// Publisher emits an event. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// Envelope is the wire shape for MQTT payloads.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// RedisStreamPublisher appends events to a redis stream.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisStreamPublisher(client *redis.Client, stream string, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	if _, err := commonredis.PublishJSONToStream(ctx, p.client, p.stream, eventType, payload, p.maxLen); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

// MQTTPublisher publishes each event to <prefix>/<event type with dots as slashes>.
type MQTTPublisher struct {
	client      mqttClient
	topicPrefix string
}

type mqttClient interface {
	Publish(topic string, retained bool, payload []byte) error
}

var _ mqttClient = (*commonmqtt.Client)(nil)

func NewMQTTPublisher(client mqttClient, topicPrefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topicPrefix: strings.TrimSuffix(topicPrefix, "/")}
}

func (p *MQTTPublisher) Publish(_ context.Context, eventType string, payload any) error {
	b, err := json.Marshal(Envelope{Type: eventType, OccurredAt: time.Now().UTC(), Data: payload})
	if err != nil {
		return err
	}
	return p.client.Publish(p.Topic(eventType), false, b)
}

// Topic maps an event type to its MQTT topic.
func (p *MQTTPublisher) Topic(eventType string) string {
	return p.topicPrefix + "/" + strings.ReplaceAll(eventType, ".", "/")
}

// SafePublisher logs publish failures instead of returning them, so that an
// event bus outage never fails the request that produced the event.
type SafePublisher struct {
	next   Publisher
	logger *zap.Logger
}

func NewSafePublisher(next Publisher, logger *zap.Logger) *SafePublisher {
	return &SafePublisher{next: next, logger: logger}
}

func (p *SafePublisher) Publish(ctx context.Context, eventType string, payload any) error {
	if err := p.next.Publish(ctx, eventType, payload); err != nil {
		p.logger.Warn("Failed to publish event", zap.String("event", eventType), zap.Error(err))
	}
	return nil
}
