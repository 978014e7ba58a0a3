// Package redispub publishes auction events to Redis pub/sub for real-time
// consumers (websocket broadcasters, dashboards).
package redispub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phoenixpme/auction-service/internal/model"
)

// Publisher sends each event to the channel auction.events.<auctionID>.
type Publisher struct{ client *redis.Client }

// New connects to Redis and verifies the connection.
func New(addr, password string, db int) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	return &Publisher{client: rdb}, nil
}

// Publish marshals the event and publishes it; subscribers joining late miss
// it, which is fine for a live feed.
func (p *Publisher) Publish(ctx context.Context, ev model.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	channel := "auction.events." + ev.AuctionID.String()
	return p.client.Publish(ctx, channel, payload).Err()
}

// Close releases the Redis connection.
func (p *Publisher) Close() error { return p.client.Close() }
