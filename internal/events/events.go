// Package events publishes domain events for downstream consumers,
// e.g. a stats aggregator subscribed to archived matches.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
)

// Publisher emits a finished match to interested subscribers. Implementations
// must be safe for concurrent use.
type Publisher interface {
	MatchArchived(ctx context.Context, m model.Match) error
	Close()
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) MatchArchived(context.Context, model.Match) error { return nil }
func (NoopPublisher) Close()                                           {}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	log     zerolog.Logger
}

// NewNATSPublisher connects to url and publishes archived matches on subject.
func NewNATSPublisher(url, subject string, logger zerolog.Logger) (Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("pelada-service"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("events: connect to nats: %w", err)
	}
	l := logger.With().Str("module", "events").Logger()
	l.Info().Str("url", url).Str("subject", subject).Msg("nats publisher connected")
	return &natsPublisher{conn: conn, subject: subject, log: l}, nil
}

func (p *natsPublisher) MatchArchived(_ context.Context, m model.Match) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("events: marshal match %s: %w", m.ID, err)
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("events: publish match %s: %w", m.ID, err)
	}
	return nil
}

func (p *natsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.log.Warn().Err(err).Msg("nats drain failed")
	}
}

var (
	_ Publisher = (*natsPublisher)(nil)
	_ Publisher = NoopPublisher{}
)
