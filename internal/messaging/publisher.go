package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parenting-server/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// DefaultOutcomesQueue - очередь по умолчанию для итогов игр.
	DefaultOutcomesQueue = "parenting_outcomes"
	publishAttempts      = 3
	publishTimeout       = 10 * time.Second
	appID                = "parenting-server"
)

// OutcomeMessage - тело сообщения об итоге игры.
type OutcomeMessage struct {
	Game       domain.FinishedGame `json:"game"`
	OutcomeKey domain.OutcomeCode  `json:"outcome"`
	TraitSum   int                 `json:"trait_sum"`
}

// RabbitMQOutcomePublisher публикует итоги в durable-очередь.
type RabbitMQOutcomePublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQOutcomePublisher открывает канал и объявляет очередь.
func NewRabbitMQOutcomePublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (*RabbitMQOutcomePublisher, error) {
	if queueName == "" {
		queueName = DefaultOutcomesQueue
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("outcome publisher: не удалось открыть канал: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("outcome publisher: не удалось объявить очередь '%s': %w", queueName, err)
	}
	logger = logger.Named("OutcomePublisher")
	logger.Info("Queue declared", zap.String("queue", queueName))
	return &RabbitMQOutcomePublisher{channel: ch, queueName: queueName, logger: logger}, nil
}

// PublishOutcome публикует итог завершенной игры.
func (p *RabbitMQOutcomePublisher) PublishOutcome(ctx context.Context, game domain.FinishedGame) error {
	body, err := json.Marshal(OutcomeMessage{
		Game:       game,
		OutcomeKey: game.OutcomeCode,
		TraitSum:   game.Traits().Sum(),
	})
	if err != nil {
		return fmt.Errorf("marshal outcome for session %s: %w", game.SessionID, err)
	}
	if err := p.publish(ctx, body, game.SessionID.String()); err != nil {
		return fmt.Errorf("publish outcome for session %s: %w", game.SessionID, err)
	}
	return nil
}

func (p *RabbitMQOutcomePublisher) publish(ctx context.Context, body []byte, messageID string) error {
	if p.channel == nil {
		return errors.New("канал RabbitMQ не инициализирован")
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		err = p.channel.PublishWithContext(ctx, "", p.queueName, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Body:         body,
			Timestamp:    time.Now(),
			AppId:        appID,
		})
		if err == nil {
			p.logger.Debug("Outcome published", zap.String("queue", p.queueName), zap.Int("attempt", attempt))
			return nil
		}
		p.logger.Warn("Publish attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return fmt.Errorf("queue %s after %d attempts: %w", p.queueName, publishAttempts, err)
}

// Close закрывает канал публикации.
func (p *RabbitMQOutcomePublisher) Close() error {
	if p.channel == nil {
		return nil
	}
	return p.channel.Close()
}
