package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"loan-manager-backend/internal/domain/gateway"
)

func TestPublish_DeliversToChannel(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sub := rdb.Subscribe(context.Background(), "loan-events")
	t.Cleanup(func() { _ = sub.Close() })
	if _, err := sub.Receive(context.Background()); err != nil { // subscription ack
		t.Fatalf("subscribe: %v", err)
	}

	p := NewRedisPublisher(rdb, "loan-events", slog.New(slog.NewTextHandler(io.Discard, nil)))
	ev := gateway.Event{
		ID:     "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Type:   gateway.EventPaymentMade,
		LoanID: 7,
		Amount: 100_000,
		At:     time.Now().UTC(),
	}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish err: %v", err)
	}

	msg, err := sub.ReceiveTimeout(context.Background(), 2*time.Second)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	m, ok := msg.(*redis.Message)
	if !ok {
		t.Fatalf("unexpected message type %T", msg)
	}
	var got gateway.Event
	if err := json.Unmarshal([]byte(m.Payload), &got); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if got.Type != gateway.EventPaymentMade || got.LoanID != 7 || got.Amount != 100_000 {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestPublish_SwallowsDeliveryFailure(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	s.Close() // kill the server so Publish fails

	p := NewRedisPublisher(rdb, "loan-events", slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := p.Publish(context.Background(), gateway.Event{Type: gateway.EventLoanRequested, LoanID: 1})
	if err != nil {
		t.Fatalf("Publish must swallow delivery failures, got %v", err)
	}
}
