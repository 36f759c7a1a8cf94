package notify

import (
	"context"

	"github.com/rs/zerolog/log"
	qstashx "github.com/tanpawarit/restaurant-voice-agent/pkg/qstash"
)

// QStash publishes notifications to the fixed QStash destination.
type QStash struct {
	client *qstashx.Client
}

func NewQStash(client *qstashx.Client) *QStash {
	return &QStash{client: client}
}

func (q *QStash) Notify(ctx context.Context, message string) bool {
	if q == nil || q.client == nil {
		return false
	}
	resp, err := q.client.Publish(ctx, "text/plain; charset=utf-8", []byte(message))
	if err != nil {
		log.Error().Err(err).Msg("qstash publish failed")
		return false
	}
	log.Debug().Str("message_id", resp.MessageID).Msg("qstash message published")
	return true
}
