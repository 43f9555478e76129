// Package events fans domain events out to Redis pub/sub and NATS.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Event types published by the services.
const (
	ContestCreated       = "contest.created"
	ContestStarted       = "contest.started"
	ContestEnded         = "contest.ended"
	ContestQuestionAdded = "contest.question_added"
	SubmissionCreated    = "submission.created"
	AnalysisCompleted    = "analysis.completed"
)

// Event is the envelope sent on every channel.
type Event struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"`
	Source       string                 `json:"source"`
	ContestID    string                 `json:"contest_id,omitempty"`
	SubmissionID string                 `json:"submission_id,omitempty"`
	Actor        string                 `json:"actor,omitempty"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Bus publishes to Redis and NATS when each is configured.
type Bus struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	nodeID       string
	logger       zerolog.Logger
}

// NewBus derives the Redis channel and NATS subject from channelBase.
func NewBus(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) *Bus {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &Bus{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		nodeID:       uuid.NewString(),
		logger:       logger.With().Str("component", "event_bus").Logger(),
	}
}

// RedisChannel reports the pub/sub channel used for Redis.
func (b *Bus) RedisChannel() string {
	return b.redisChannel
}

// NATSSubject reports the subject used for NATS.
func (b *Bus) NATSSubject() string {
	return b.natsSubject
}

// Publish implements Publisher. Every configured transport is attempted.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	event.Source = b.nodeID

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if b.redis != nil && b.redisChannel != "" {
		if err := b.redis.Publish(ctx, b.redisChannel, payload).Err(); err != nil {
			errs = append(errs, err)
		}
	}

	if b.nats != nil && b.natsSubject != "" {
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	b.logger.Debug().Str("event_type", event.Type).Str("event_id", event.ID).Msg("event published")
	return nil
}
