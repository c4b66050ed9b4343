package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/balancer"
	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

type drawService struct {
	players  repository.PlayerRepository
	balancer *balancer.Balancer
	teamSize int
	log      zerolog.Logger
}

// NewDrawService builds the team draw use case. defaultTeamSize applies when
// a request does not specify players per team.
func NewDrawService(players repository.PlayerRepository, b *balancer.Balancer, defaultTeamSize int, logger zerolog.Logger) DrawService {
	if defaultTeamSize <= 0 {
		defaultTeamSize = balancer.DefaultPlayersPerTeam
	}
	l := logger.With().Str("module", "service").Str("component", "draw").Logger()
	return &drawService{players: players, balancer: b, teamSize: defaultTeamSize, log: l}
}

func (s *drawService) DrawTeams(ctx context.Context, playerIDs []uuid.UUID, mode balancer.Mode, playersPerTeam int) ([]model.Team, error) {
	start := time.Now()
	if playersPerTeam == 0 {
		playersPerTeam = s.teamSize
	}

	var ferrs []FieldError
	if len(playerIDs) < 2 {
		ferrs = append(ferrs, FieldError{Field: "player_ids", Message: "at least two players are required"})
	}
	for i, id := range playerIDs {
		if id == uuid.Nil {
			ferrs = append(ferrs, FieldError{Field: fmt.Sprintf("player_ids[%d]", i), Message: "must be a valid uuid"})
		}
	}
	if mode == "" {
		mode = balancer.ModeRandom
	}
	if mode != balancer.ModeRandom && mode != balancer.ModeBalanced {
		ferrs = append(ferrs, FieldError{Field: "mode", Message: "must be one of random, balanced"})
	}
	if playersPerTeam < 1 {
		ferrs = append(ferrs, FieldError{Field: "players_per_team", Message: "must be >= 1"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return nil, err
	}

	players, err := s.players.ListByIDs(ctx, playerIDs)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newInvalidInput([]FieldError{{Field: "player_ids", Message: "contains an unknown player"}})
		}
		s.log.Error().Err(err).Int("count", len(playerIDs)).Msg("load players for draw failed")
		return nil, err
	}

	teams, err := s.balancer.Balance(players, mode, playersPerTeam)
	if err != nil {
		switch {
		case errors.Is(err, balancer.ErrNotEnoughPlayers):
			return nil, newInvalidInput([]FieldError{{Field: "player_ids", Message: "at least two players are required"}})
		case errors.Is(err, balancer.ErrDuplicatePlayer):
			return nil, newInvalidInput([]FieldError{{Field: "player_ids", Message: "must not repeat a player"}})
		default:
			return nil, err
		}
	}

	s.log.Info().
		Dur("took", time.Since(start)).
		Str("mode", string(mode)).
		Int("players", len(players)).
		Int("teams", len(teams)).
		Msg("teams drawn")
	return teams, nil
}
