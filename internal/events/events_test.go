package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBusPublishesToRedisChannel(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	bus := NewBus(client, nil, "codecontest:test", zerolog.Nop())
	require.Equal(t, "codecontest:test:events", bus.RedisChannel())
	require.Equal(t, "codecontest.test.events", bus.NATSSubject())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, bus.RedisChannel())
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, Event{Type: ContestStarted, ContestID: "c-1", Actor: "t@example.com"}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	require.Equal(t, ContestStarted, event.Type)
	require.Equal(t, "c-1", event.ContestID)
	require.NotEmpty(t, event.ID)
	require.NotEmpty(t, event.Source)
	require.False(t, event.OccurredAt.IsZero())
}

func TestBusWithoutTransportsIsSilent(t *testing.T) {
	bus := NewBus(nil, nil, "", zerolog.Nop())
	require.NoError(t, bus.Publish(context.Background(), Event{Type: SubmissionCreated}))
	require.NoError(t, Nop{}.Publish(context.Background(), Event{}))
}

func TestBusReportsRedisFailures(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	defer client.Close()
	server.Close()

	bus := NewBus(client, nil, "codecontest", zerolog.Nop())
	require.Error(t, bus.Publish(context.Background(), Event{Type: ContestCreated}))
}
