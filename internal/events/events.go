// Package events publishes domain events on Redis pub/sub channels. The
// channel name equals the event type.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	TypeCVStatusChanged      = "EVENT_CV_STATUS_CHANGED"
	TypeOfferKeywordsUpdated = "EVENT_OFFER_KEYWORDS_UPDATED"
)

// CVStatusChanged is emitted after a CV status update has been persisted.
type CVStatusChanged struct {
	CVID       int64
	JobOfferID int64
	UserID     string
	From       string
	To         string
}

// OfferKeywordsUpdated is emitted after an offer's keywords were replaced
// and its CVs rescored.
type OfferKeywordsUpdated struct {
	JobOfferID int64
	UserID     string
	Keywords   []string
	Rescored   int
}

// Publisher delivers events. Implementations must not fail the caller's
// operation: errors are logged and dropped.
type Publisher interface {
	CVStatusChanged(ctx context.Context, e CVStatusChanged)
	OfferKeywordsUpdated(ctx context.Context, e OfferKeywordsUpdated)
}

// ─── Redis ───────────────────────────────────────────────────────────────────

// Client is the subset of *redis.Client used for publishing.
type Client interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher publishes JSON payloads with PUBLISH.
type RedisPublisher struct {
	rdb Client
	log *zap.Logger
}

// NewRedisPublisher returns a Publisher backed by rdb.
func NewRedisPublisher(rdb Client, log *zap.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, log: log}
}

func (p *RedisPublisher) CVStatusChanged(ctx context.Context, e CVStatusChanged) {
	p.publish(ctx, TypeCVStatusChanged, map[string]string{
		"type":       TypeCVStatusChanged,
		"cvId":       strconv.FormatInt(e.CVID, 10),
		"jobOfferId": strconv.FormatInt(e.JobOfferID, 10),
		"userId":     e.UserID,
		"from":       e.From,
		"to":         e.To,
	})
}

func (p *RedisPublisher) OfferKeywordsUpdated(ctx context.Context, e OfferKeywordsUpdated) {
	keywords := e.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	p.publish(ctx, TypeOfferKeywordsUpdated, map[string]any{
		"type":       TypeOfferKeywordsUpdated,
		"jobOfferId": strconv.FormatInt(e.JobOfferID, 10),
		"userId":     e.UserID,
		"keywords":   keywords,
		"rescored":   e.Rescored,
	})
}

func (p *RedisPublisher) publish(ctx context.Context, channel string, payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		p.log.Warn("encode event failed", zap.String("channel", channel), zap.Error(err))
		return
	}
	if err := p.rdb.Publish(ctx, channel, msg).Err(); err != nil {
		p.log.Warn(fmt.Sprintf("publish %s failed", channel), zap.Error(err))
	}
}

// ─── No-op ───────────────────────────────────────────────────────────────────

// Nop discards every event.
type Nop struct{}

func (Nop) CVStatusChanged(context.Context, CVStatusChanged)           {}
func (Nop) OfferKeywordsUpdated(context.Context, OfferKeywordsUpdated) {}

var (
	_ Publisher = (*RedisPublisher)(nil)
	_ Publisher = Nop{}
)
