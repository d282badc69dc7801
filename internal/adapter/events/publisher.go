// Package events delivers lifecycle notifications to external observers over
// redis pub/sub. Delivery is fire-and-forget: a failed publish is logged and
// never fails the operation that produced it.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"loan-manager-backend/internal/domain/gateway"
)

var _ gateway.EventPublisher = (*RedisPublisher)(nil)

type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	log     *slog.Logger
}

func NewRedisPublisher(rdb *redis.Client, channel string, log *slog.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev gateway.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("event marshal failed", "type", ev.Type, "loan_id", ev.LoanID, "err", err)
		return nil
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.log.Warn("event publish failed", "type", ev.Type, "loan_id", ev.LoanID, "err", err)
	}
	return nil
}
