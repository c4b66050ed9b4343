package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/events"
	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
	"github.com/peladahub/pelada-service/internal/session"
)

type matchService struct {
	matches   repository.MatchRepository
	publisher events.Publisher
	log       zerolog.Logger
}

// NewMatchService wires match history on top of the archive store. The
// publisher may be a NoopPublisher when no broker is configured.
func NewMatchService(matches repository.MatchRepository, publisher events.Publisher, logger zerolog.Logger) MatchService {
	l := logger.With().Str("module", "service").Str("component", "match").Logger()
	return &matchService{matches: matches, publisher: publisher, log: l}
}

// Archive persists a finished match and then announces it. Publication is
// best effort: a broker outage must not lose the archive record.
func (s *matchService) Archive(ctx context.Context, m model.Match) error {
	start := time.Now()
	if err := s.matches.Archive(ctx, m); err != nil {
		s.log.Error().Err(err).Str("match_id", m.ID.String()).Msg("archive match failed")
		return err
	}
	s.log.Info().
		Dur("took", time.Since(start)).
		Str("match_id", m.ID.String()).
		Int("score_home", m.ScoreHome).
		Int("score_away", m.ScoreAway).
		Str("end_reason", string(m.EndReason)).
		Msg("match archived")

	if err := s.publisher.MatchArchived(ctx, m); err != nil {
		s.log.Warn().Err(err).Str("match_id", m.ID.String()).Msg("publish archived match failed")
	}
	return nil
}

func (s *matchService) GetMatch(ctx context.Context, id uuid.UUID) (model.Match, error) {
	if id == uuid.Nil {
		return model.Match{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be a valid uuid"}})
	}
	return s.matches.GetByID(ctx, id)
}

func (s *matchService) ListMatches(ctx context.Context, page repository.Page) (repository.PageResult[model.Match], error) {
	p := normalizePage(page)
	res, err := s.matches.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list matches failed")
		return repository.PageResult[model.Match]{}, err
	}
	return res, nil
}

var _ session.Archiver = (MatchService)(nil)
