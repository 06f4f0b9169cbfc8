package worker

import (
	"code_arena/internal/domain/model"
	"code_arena/internal/domain/repository"
	"code_arena/internal/platform/config"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProfileWorker drains the profile outcome queue and applies win/loss
// counters. Outcomes are deduplicated per (room, user), so redelivery after
// a crash is safe.
type ProfileWorker struct {
	rdb         *redis.Client
	profileRepo repository.ProfileRepository
}

func NewProfileWorker(rdb *redis.Client, profileRepo repository.ProfileRepository) *ProfileWorker {
	return &ProfileWorker{rdb: rdb, profileRepo: profileRepo}
}

func (w *ProfileWorker) Start(ctx context.Context) {
	queueName := config.AppConfig.ProfileQueueName
	log.Println("Profile worker started, listening to queue:", queueName)
	for {
		select {
		case <-ctx.Done():
			log.Println("Profile worker stopping...")
			return
		default:
			// Blocking pop from Redis queue
			entry, err := w.rdb.BRPop(ctx, 0*time.Second, queueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					log.Printf("Profile worker BRPop exiting or timed out: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}
				log.Printf("ERROR: Failed to BRPop from Redis queue '%s': %v", queueName, err)
				time.Sleep(5 * time.Second)
				continue
			}

			// entry is an array: [queueName, value]
			if len(entry) < 2 || entry[1] == "" {
				log.Println("WARN: BRPop returned empty payload.")
				continue
			}
			w.processOutcome(ctx, entry[1])
		}
	}
}

func (w *ProfileWorker) processOutcome(ctx context.Context, payload string) {
	var outcome model.ProfileOutcome
	if err := json.Unmarshal([]byte(payload), &outcome); err != nil {
		// A payload that cannot decode will never decode; drop it.
		log.Printf("ERROR: Failed to decode profile outcome payload %q: %v", payload, err)
		return
	}
	if outcome.RoomID == "" || outcome.UserID == "" {
		log.Printf("WARN: Profile outcome missing room or user, dropping: %q", payload)
		return
	}

	if err := w.profileRepo.ApplyMatchOutcome(ctx, outcome.RoomID, outcome.UserID, outcome.Won); err != nil {
		log.Printf("ERROR: Failed to apply profile outcome for user %s in room %s: %v", outcome.UserID, outcome.RoomID, err)
		w.requeue(ctx, payload)
		return
	}
	log.Printf("Applied profile outcome for user %s in room %s (won=%t)", outcome.UserID, outcome.RoomID, outcome.Won)
}

func (w *ProfileWorker) requeue(ctx context.Context, payload string) {
	if err := w.rdb.RPush(ctx, config.AppConfig.ProfileQueueName, payload).Err(); err != nil {
		log.Printf("ERROR: Failed to re-queue profile outcome: %v", err)
	} else {
		log.Println("INFO: Profile outcome re-queued.")
	}
}
