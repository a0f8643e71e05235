package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	TypeRankChanged         = "rank_changed"
	TypeAchievementUnlocked = "achievement_unlocked"
	TypeBetPlaced           = "bet_placed"
	TypeBetSettled          = "bet_settled"
	TypeBetRefunded         = "bet_refunded"
	TypePointsAdjusted      = "points_adjusted"
)

const exchangeName = "betpoints.events"

// Event is the fire-and-forget payload handed to the notification
// collaborator. Publishing never fails the primary operation.
type Event struct {
	Type       string         `json:"type"`
	UserID     uuid.UUID      `json:"user_id"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// publisher fans events out to RabbitMQ (downstream consumers: mailers,
// push workers) and to redis pub/sub (live websocket stream). Both legs are
// optional and best-effort.
type publisher struct {
	channel     *amqp091.Channel
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewPublisher(amqpURL string, redisClient *redis.Client, log *logrus.Logger) (Publisher, error) {
	p := &publisher{redisClient: redisClient, log: log}

	if amqpURL != "" {
		conn, err := amqp091.Dial(amqpURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}

		ch, err := conn.Channel()
		if err != nil {
			return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
		}

		if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("failed to declare exchange: %w", err)
		}

		p.channel = ch
	}

	return p, nil
}

func (p *publisher) Publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.WithError(err).Warn("failed to marshal event")
		return
	}

	if p.channel != nil {
		err := p.channel.PublishWithContext(ctx, exchangeName, event.Type, false, false, amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   event.OccurredAt,
			Body:        body,
		})
		if err != nil {
			p.log.WithFields(logrus.Fields{
				"type":  event.Type,
				"error": err,
			}).Warn("failed to publish event to rabbitmq")
		}
	}

	if p.redisClient != nil {
		channel := fmt.Sprintf("user_events:%s", event.UserID.String())
		if err := p.redisClient.Publish(ctx, channel, body).Err(); err != nil {
			p.log.WithFields(logrus.Fields{
				"type":  event.Type,
				"error": err,
			}).Warn("failed to publish event to redis")
		}
	}
}

// Noop returns a publisher that drops everything. Used in tests and when
// neither RabbitMQ nor redis is configured.
func Noop() Publisher {
	return noopPublisher{}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) {}
