// Package cache holds the redis client and the game action historian
// queue. Every game action is pushed to a redis list so an external
// consumer can replay or audit games; the game itself never reads it
// back.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Rdb is the shared redis client. Nil when redis is not configured;
// callers must check before publishing.
var Rdb *redis.Client

// actionQueueKey is the list the historian consumer drains.
const actionQueueKey = "pythongame:actions"

// Connect initializes the shared client and verifies the connection.
func Connect(ctx context.Context, url string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	Rdb = client
	log.Info("connected to redis")
	return nil
}

// GameActionRecord is one entry in a game's action log. ActionIndex
// is monotonic per game so consumers can order and de-duplicate.
type GameActionRecord struct {
	GameID      uuid.UUID              `json:"game_id"`
	RoomCode    string                 `json:"room_code"`
	ActionIndex int                    `json:"action_index"`
	ActorID     string                 `json:"actor_id,omitempty"`
	ActionType  string                 `json:"action_type"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Timestamp   int64                  `json:"timestamp"`
}

// PublishGameAction appends a record to the historian queue.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return fmt.Errorf("redis not connected")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := Rdb.RPush(ctx, actionQueueKey, data).Err(); err != nil {
		return fmt.Errorf("push action record: %w", err)
	}
	return nil
}

// Close releases the client. Safe to call when never connected.
func Close() {
	if Rdb != nil {
		_ = Rdb.Close()
		Rdb = nil
	}
}
