package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"teenpatti-server/pkg/playable/teenpatti"
)

// DefaultQueue is the redis list round records are pushed onto
const DefaultQueue = "teenpatti_rounds"

// Record is a finished round as consumed by the history service
type Record struct {
	ID          uuid.UUID              `json:"id"`
	RoomID      string                 `json:"roomId"`
	RoundNumber int                    `json:"roundNumber"`
	Result      *teenpatti.RoundResult `json:"result"`
	Balances    map[string]int         `json:"balances"`
	PublishedAt int64                  `json:"publishedAt"`
}

// NewRecord builds the record for a round result
func NewRecord(roomID string, result *teenpatti.RoundResult) Record {
	return Record{
		ID:          uuid.New(),
		RoomID:      roomID,
		RoundNumber: result.RoundNumber,
		Result:      result,
		Balances:    result.Balances,
		PublishedAt: time.Now().UnixMilli(),
	}
}

// Publisher pushes round records onto a redis list
type Publisher struct {
	rdb   *redis.Client
	queue string
}

// Connect creates a client for the redis server and checks that it is reachable
func Connect(ctx context.Context, addr string, db int, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &Publisher{rdb: rdb, queue: queue}, nil
}

// PublishRound serializes the result and pushes it to the queue
func (p *Publisher) PublishRound(ctx context.Context, roomID string, result *teenpatti.RoundResult) error {
	data, err := json.Marshal(NewRecord(roomID, result))
	if err != nil {
		return fmt.Errorf("failed to marshal round record: %w", err)
	}

	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to redis list '%s': %w", p.queue, err)
	}

	return nil
}

// Close closes the redis client
func (p *Publisher) Close() error {
	return p.rdb.Close()
}

// Nop drops every round
// It is used when no redis server is configured.
type Nop struct{}

// PublishRound does nothing
func (Nop) PublishRound(context.Context, string, *teenpatti.RoundResult) error {
	return nil
}
