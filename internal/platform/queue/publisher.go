package queue

import (
	"code_arena/internal/domain/model"
	"code_arena/internal/platform/config"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventPublisher is the real-time broadcast boundary: fire-and-forget JSON
// events on a per-room channel, plus the best-effort profile outcome queue.
type EventPublisher struct {
	rdb *redis.Client
}

func NewEventPublisher(rdb *redis.Client) *EventPublisher {
	return &EventPublisher{rdb: rdb}
}

// PublishRoomEvent pushes an event to the room's channel. Delivery is
// best-effort; failures are logged and never propagated to the caller.
func (p *EventPublisher) PublishRoomEvent(ctx context.Context, roomCode int, event string, payload map[string]any) {
	evt := model.RoomEvent{
		Event:     event,
		RoomCode:  roomCode,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("ERROR: Failed to marshal room event %s for room %d: %v", event, roomCode, err)
		return
	}

	channel := fmt.Sprintf("%s%d", config.AppConfig.BroadcastChannelPrefix, roomCode)
	if err := p.rdb.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("ERROR: Failed to publish %s to channel %s: %v", event, channel, err)
	}
}

// EnqueueProfileOutcome queues a win/loss increment for the profile worker.
func (p *EventPublisher) EnqueueProfileOutcome(ctx context.Context, outcome model.ProfileOutcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal profile outcome: %w", err)
	}
	if err := p.rdb.LPush(ctx, config.AppConfig.ProfileQueueName, data).Err(); err != nil {
		return fmt.Errorf("failed to push profile outcome to queue: %w", err)
	}
	return nil
}
