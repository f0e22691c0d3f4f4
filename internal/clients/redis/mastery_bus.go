package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

// StateChange is published after every committed mastery update so
// dashboards can refresh without polling.
type StateChange struct {
	UserID          string    `json:"user_id"`
	SkillID         string    `json:"skill_id"`
	PreviousMastery float64   `json:"previous_mastery"`
	NewMastery      float64   `json:"new_mastery"`
	Status          string    `json:"status"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// MasteryBus is publish-only: dashboards subscribe to the channel with
// their own redis client.
type MasteryBus interface {
	Publish(ctx context.Context, msg StateChange) error
	Close() error
}

type masteryBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewMasteryBus(log *logger.Logger) (MasteryBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_MASTERY_CHANNEL"))
	if ch == "" {
		ch = "mastery"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &masteryBus{
		log:     log.With("service", "RedisMasteryBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *masteryBus) Publish(ctx context.Context, msg StateChange) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("mastery bus not initialized")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *masteryBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
