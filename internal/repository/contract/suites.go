// Package contract holds repository test suites shared by every
// implementation: the in-memory stores run them unconditionally, the
// Postgres stores behind an env-gated contract test.
package contract

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

// PlayerFactory builds a fresh player repository plus its cleanup.
type PlayerFactory func(t *testing.T) (repository.PlayerRepository, func())

// MatchFactory builds a fresh match repository, a helper that persists a
// player (lineups reference roster rows), and cleanup.
type MatchFactory func(t *testing.T) (repo repository.MatchRepository, mkPlayer func(ctx context.Context, name string, skill int) (model.Player, error), cleanup func())

func RunPlayerRepositoryContract(t *testing.T, makeRepo PlayerFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		created, err := repo.Create(ctx, model.Player{Name: "Careca", Nickname: "Cabeça", Position: "ATA", SkillLevel: 7})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, created.ID)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, created.ID, got.ID)
		require.Equal(t, "Careca", got.Name)
		require.Equal(t, 7, got.SkillLevel)
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), uuid.New())
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("list_by_ids_missing_id_fails", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		p, err := repo.Create(ctx, model.Player{Name: "Zico", SkillLevel: 9})
		require.NoError(t, err)

		_, err = repo.ListByIDs(ctx, []uuid.UUID{p.ID, uuid.New()})
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("list_by_ids_keeps_order", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		a, err := repo.Create(ctx, model.Player{Name: "Ana", SkillLevel: 5})
		require.NoError(t, err)
		b, err := repo.Create(ctx, model.Player{Name: "Bia", SkillLevel: 6})
		require.NoError(t, err)

		got, err := repo.ListByIDs(ctx, []uuid.UUID{b.ID, a.ID})
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, b.ID, got[0].ID)
		require.Equal(t, a.ID, got[1].ID)
	})

	t.Run("update_and_delete", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		p, err := repo.Create(ctx, model.Player{Name: "Dida", SkillLevel: 4})
		require.NoError(t, err)

		p.SkillLevel = 6
		p.Nickname = "Paredão"
		updated, err := repo.Update(ctx, p)
		require.NoError(t, err)
		require.Equal(t, 6, updated.SkillLevel)
		require.Equal(t, "Paredão", updated.Nickname)

		require.NoError(t, repo.Delete(ctx, p.ID))
		require.ErrorIs(t, repo.Delete(ctx, p.ID), repository.ErrNotFound)
	})
}

func RunMatchRepositoryContract(t *testing.T, makeRepo MatchFactory) {
	t.Helper()

	t.Run("archive_round_trip", func(t *testing.T) {
		repo, mkPlayer, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		match := buildMatch(t, ctx, mkPlayer)
		require.NoError(t, repo.Archive(ctx, match))

		got, err := repo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		// Field-for-field: score, goal log, rosters, guest markers.
		require.Equal(t, match.ScoreHome, got.ScoreHome)
		require.Equal(t, match.ScoreAway, got.ScoreAway)
		require.Equal(t, match.EndReason, got.EndReason)
		require.ElementsMatch(t, match.GuestIDs, got.GuestIDs)
		require.Len(t, got.Goals, len(match.Goals))
		for i, g := range match.Goals {
			require.Equal(t, g.ScorerID, got.Goals[i].ScorerID)
			require.Equal(t, g.Side, got.Goals[i].Side)
			require.Equal(t, g.Minute, got.Goals[i].Minute)
		}
		require.Equal(t, playerIDs(match.HomeTeam.Players), playerIDs(got.HomeTeam.Players))
		require.Equal(t, playerIDs(match.AwayTeam.Players), playerIDs(got.AwayTeam.Players))
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), uuid.New())
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("list_newest_first", func(t *testing.T) {
		repo, mkPlayer, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		first := buildMatch(t, ctx, mkPlayer)
		first.PlayedAt = time.Now().Add(-time.Hour)
		second := buildMatch(t, ctx, mkPlayer)
		second.PlayedAt = time.Now()
		require.NoError(t, repo.Archive(ctx, first))
		require.NoError(t, repo.Archive(ctx, second))

		res, err := repo.List(ctx, repository.Page{Limit: 10})
		require.NoError(t, err)
		require.Equal(t, 2, res.Total)
		require.Equal(t, second.ID, res.Items[0].ID)
		require.Equal(t, first.ID, res.Items[1].ID)
	})
}

// buildMatch assembles a 2x2 golden-goal match from freshly persisted players.
func buildMatch(t *testing.T, ctx context.Context, mkPlayer func(ctx context.Context, name string, skill int) (model.Player, error)) model.Match {
	t.Helper()
	mk := func(name string, skill int) model.Player {
		p, err := mkPlayer(ctx, name, skill)
		require.NoError(t, err)
		return p
	}
	h1, h2 := mk("Rai", 8), mk("Edu", 5)
	a1, a2 := mk("Tico", 6), mk("Juba", 7)

	assist := h2.ID
	return model.Match{
		ID: uuid.New(),
		HomeTeam: model.Team{
			ID: uuid.New(), Name: "Time 1",
			Players:      []model.Player{h1, h2},
			AverageLevel: model.AverageSkill([]model.Player{h1, h2}),
		},
		AwayTeam: model.Team{
			ID: uuid.New(), Name: "Time 2",
			Players:      []model.Player{a1, a2},
			AverageLevel: model.AverageSkill([]model.Player{a1, a2}),
		},
		ScoreHome: 2,
		ScoreAway: 1,
		Goals: []model.Goal{
			{ID: uuid.New(), ScorerID: h1.ID, AssistID: &assist, Minute: 1, Side: model.SideHome},
			{ID: uuid.New(), ScorerID: a2.ID, Minute: 3, Side: model.SideAway},
			{ID: uuid.New(), ScorerID: h1.ID, Minute: 4, Side: model.SideHome},
		},
		GuestIDs:  []uuid.UUID{a2.ID},
		EndReason: model.EndReasonGoldenGoal,
		PlayedAt:  time.Now().Truncate(time.Microsecond),
	}
}

func playerIDs(players []model.Player) []uuid.UUID {
	ids := make([]uuid.UUID, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}
