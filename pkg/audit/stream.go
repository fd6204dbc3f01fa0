package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fixdesk/servicedesk/internal/domain"
)

// StreamName is the Redis stream audit events are appended to. Consumers
// (activity feeds, alerting) read it independently; retention is theirs.
const StreamName = "audit:events"

// maxStreamLen bounds the stream so an unread feed cannot grow without
// limit. Trimming is approximate (XADD MAXLEN ~).
const maxStreamLen = 100_000

// StreamPublisher appends audit events to a Redis stream.
type StreamPublisher struct {
	redis *redis.Client
}

func NewStreamPublisher(redisClient *redis.Client) *StreamPublisher {
	return &StreamPublisher{redis: redisClient}
}

// Publish appends one event. The write is fire-and-forget from the caller's
// point of view: gate decisions never fail because the feed is down.
func (p *StreamPublisher) Publish(ctx context.Context, ev domain.AuditEvent) error {
	values := map[string]interface{}{
		"log_id":     ev.LogID.String(),
		"level":      ev.Level,
		"category":   ev.Category,
		"message":    ev.Message,
		"created_at": ev.CreatedAt.Format(time.RFC3339),
	}
	if ev.UserID != nil {
		values["user_id"] = ev.UserID.String()
	}
	if ev.UserEmail != "" {
		values["user_email"] = ev.UserEmail
	}
	if ev.TenantID != nil {
		values["tenant_id"] = ev.TenantID.String()
	}
	if ev.IPAddress != "" {
		values["ip_address"] = ev.IPAddress
	}
	if ev.UserAgent != "" {
		values["user_agent"] = ev.UserAgent
	}
	for k, v := range ev.Metadata {
		values["meta:"+k] = v
	}

	err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamName,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish audit event: %w", err)
	}

	return nil
}
