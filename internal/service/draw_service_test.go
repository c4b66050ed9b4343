package service_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/balancer"
	"github.com/peladahub/pelada-service/internal/service"
)

func newDrawService(t *testing.T, repo *fakePlayerRepo) service.DrawService {
	t.Helper()
	b := balancer.New(rand.New(rand.NewSource(1)))
	return service.NewDrawService(repo, b, 4, zerolog.Nop())
}

func seedPlayers(t *testing.T, repo *fakePlayerRepo, n int) []uuid.UUID {
	t.Helper()
	svc := service.NewPlayerService(repo, zerolog.Nop())
	ids := make([]uuid.UUID, n)
	for i := range ids {
		p, err := svc.CreatePlayer(context.Background(), service.PlayerInput{Name: "Jogador", SkillLevel: i%10 + 1})
		if err != nil {
			t.Fatalf("seed player: %v", err)
		}
		ids[i] = p.ID
	}
	return ids
}

func TestDrawService_DrawTeams(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := newDrawService(t, repo)
	ids := seedPlayers(t, repo, 8)

	teams, err := svc.DrawTeams(context.Background(), ids, balancer.ModeBalanced, 0)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("got %d teams, want 2 (default size 4)", len(teams))
	}
	total := 0
	for _, team := range teams {
		total += len(team.Players)
	}
	if total != 8 {
		t.Fatalf("%d players distributed, want 8", total)
	}
}

func TestDrawService_DefaultsToRandomMode(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := newDrawService(t, repo)
	ids := seedPlayers(t, repo, 4)

	if _, err := svc.DrawTeams(context.Background(), ids, "", 2); err != nil {
		t.Fatalf("draw with empty mode: %v", err)
	}
}

func TestDrawService_Validation(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := newDrawService(t, repo)
	ids := seedPlayers(t, repo, 4)

	cases := []struct {
		name  string
		ids   []uuid.UUID
		mode  balancer.Mode
		size  int
		field string
	}{
		{"too few players", ids[:1], balancer.ModeRandom, 4, "player_ids"},
		{"nil id", append([]uuid.UUID{uuid.Nil}, ids...), balancer.ModeRandom, 4, "player_ids[0]"},
		{"unknown mode", ids, "alphabetical", 4, "mode"},
		{"bad team size", ids, balancer.ModeRandom, -1, "players_per_team"},
		{"duplicate player", append([]uuid.UUID{ids[0]}, ids...), balancer.ModeRandom, 4, "player_ids"},
		{"unknown player", append([]uuid.UUID{uuid.New()}, ids...), balancer.ModeRandom, 4, "player_ids"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.DrawTeams(context.Background(), tc.ids, tc.mode, tc.size)
			if !errors.Is(err, service.ErrInvalidInput) {
				t.Fatalf("got %v, want invalid input", err)
			}
			if !fieldReported(err, tc.field) {
				t.Fatalf("field %s not reported in %v", tc.field, service.FieldErrors(err))
			}
		})
	}
}

func TestDrawService_RepoErrorPassesThrough(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := newDrawService(t, repo)
	ids := seedPlayers(t, repo, 4)

	repo.err = errStorageDown
	if _, err := svc.DrawTeams(context.Background(), ids, balancer.ModeRandom, 4); !errors.Is(err, errStorageDown) {
		t.Fatalf("got %v, want storage error", err)
	}
}
