package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

type playerService struct {
	players repository.PlayerRepository
	log     zerolog.Logger
}

func NewPlayerService(players repository.PlayerRepository, logger zerolog.Logger) PlayerService {
	l := logger.With().Str("module", "service").Str("component", "player").Logger()
	return &playerService{players: players, log: l}
}

func (s *playerService) CreatePlayer(ctx context.Context, in PlayerInput) (model.Player, error) {
	start := time.Now()
	if err := newInvalidInput(validatePlayerInput(&in)); err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("player validation failed")
		return model.Player{}, err
	}

	out, err := s.players.Create(ctx, model.Player{
		Name:       in.Name,
		Nickname:   in.Nickname,
		Position:   in.Position,
		SkillLevel: in.SkillLevel,
	})
	if err != nil {
		s.log.Error().Err(err).Str("name", in.Name).Msg("create player failed")
		return model.Player{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Str("player_id", out.ID.String()).Msg("player created")
	return out, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id uuid.UUID) (model.Player, error) {
	if id == uuid.Nil {
		return model.Player{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be a valid uuid"}})
	}
	return s.players.GetByID(ctx, id)
}

func (s *playerService) ListPlayers(ctx context.Context, page repository.Page) (repository.PageResult[model.Player], error) {
	p := normalizePage(page)
	res, err := s.players.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list players failed")
		return repository.PageResult[model.Player]{}, err
	}
	return res, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id uuid.UUID, in PlayerInput) (model.Player, error) {
	ferrs := validatePlayerInput(&in)
	if id == uuid.Nil {
		ferrs = append(ferrs, FieldError{Field: "id", Message: "must be a valid uuid"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Player{}, err
	}

	out, err := s.players.Update(ctx, model.Player{
		ID:         id,
		Name:       in.Name,
		Nickname:   in.Nickname,
		Position:   in.Position,
		SkillLevel: in.SkillLevel,
	})
	if err != nil {
		s.log.Error().Err(err).Str("player_id", id.String()).Msg("update player failed")
		return model.Player{}, err
	}
	return out, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return newInvalidInput([]FieldError{{Field: "id", Message: "must be a valid uuid"}})
	}
	if err := s.players.Delete(ctx, id); err != nil {
		if err != repository.ErrNotFound {
			s.log.Error().Err(err).Str("player_id", id.String()).Msg("delete player failed")
		}
		return err
	}
	s.log.Info().Str("player_id", id.String()).Msg("player deleted")
	return nil
}

func (s *playerService) GetPlayerAggregatedStats(ctx context.Context, playerID uuid.UUID) (model.PlayerAggregatedStats, error) {
	if playerID == uuid.Nil {
		return model.PlayerAggregatedStats{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be a valid uuid"}})
	}
	stats, err := s.players.GetAggregatedStats(ctx, playerID)
	if err != nil {
		s.log.Error().Err(err).Str("player_id", playerID.String()).Msg("failed to get player aggregated stats")
		return model.PlayerAggregatedStats{}, err
	}
	return stats, nil
}
