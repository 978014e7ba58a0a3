// Package natspub publishes auction events to a NATS JetStream stream so an
// archival worker can persist the full event history independently of the
// request path.
package natspub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/phoenixpme/auction-service/internal/model"
)

const streamName = "AUCTION_EVENTS"

// Publisher writes events to subjects auction.events.<auctionID>.
type Publisher struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

// New connects to NATS and ensures the archival stream exists.
func New(url string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        streamName,
		Description: "Auction domain events for archival",
		Subjects:    []string{"auction.events.*"},
		Storage:     jetstream.FileStorage,
		Retention:   jetstream.WorkQueuePolicy,
		MaxAge:      24 * time.Hour,
		Replicas:    1,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	return &Publisher{conn: conn, js: js}, nil
}

// Publish sends the event to JetStream and waits for the ack.
func (p *Publisher) Publish(ctx context.Context, ev model.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	subject := "auction.events." + ev.AuctionID.String()
	_, err = p.js.Publish(ctx, subject, payload)
	return err
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
