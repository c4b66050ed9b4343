package balancer_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/peladahub/pelada-service/internal/balancer"
	"github.com/peladahub/pelada-service/internal/model"
)

func makePlayers(n int) []model.Player {
	players := make([]model.Player, n)
	for i := range players {
		players[i] = model.Player{
			ID:         uuid.New(),
			Name:       "Jogador",
			SkillLevel: i%10 + 1,
		}
	}
	return players
}

func allPlayerIDs(teams []model.Team) map[uuid.UUID]int {
	seen := map[uuid.UUID]int{}
	for _, team := range teams {
		for _, p := range team.Players {
			seen[p.ID]++
		}
	}
	return seen
}

func TestBalance_NoPlayerDroppedOrDuplicated(t *testing.T) {
	for _, mode := range []balancer.Mode{balancer.ModeRandom, balancer.ModeBalanced} {
		t.Run(string(mode), func(t *testing.T) {
			for _, n := range []int{2, 7, 8, 12, 13, 24} {
				players := makePlayers(n)
				b := balancer.New(rand.New(rand.NewSource(1)))
				teams, err := b.Balance(players, mode, 4)
				if err != nil {
					t.Fatalf("n=%d: unexpected error: %v", n, err)
				}
				seen := allPlayerIDs(teams)
				if len(seen) != n {
					t.Fatalf("n=%d: %d distinct players in output, want %d", n, len(seen), n)
				}
				for id, count := range seen {
					if count != 1 {
						t.Fatalf("n=%d: player %s appears %d times", n, id, count)
					}
				}
			}
		})
	}
}

func TestBalance_TeamCountAndNames(t *testing.T) {
	b := balancer.New(rand.New(rand.NewSource(1)))
	teams, err := b.Balance(makePlayers(13), balancer.ModeRandom, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// ceil(13/4) = 4 teams, last one short.
	if len(teams) != 4 {
		t.Fatalf("got %d teams, want 4", len(teams))
	}
	want := []string{"Time 1", "Time 2", "Time 3", "Time 4"}
	for i, team := range teams {
		if team.Name != want[i] {
			t.Fatalf("team %d named %q, want %q", i, team.Name, want[i])
		}
		if team.ID == uuid.Nil {
			t.Fatalf("team %d has no id", i)
		}
	}
}

func TestBalance_BalancedSpreadsSkill(t *testing.T) {
	// Two strong and six weak players: a naive split would stack both strong
	// ones together; the snake draft must not.
	players := []model.Player{
		{ID: uuid.New(), Name: "Craque 1", SkillLevel: 10},
		{ID: uuid.New(), Name: "Craque 2", SkillLevel: 10},
		{ID: uuid.New(), Name: "Perna de pau 1", SkillLevel: 1},
		{ID: uuid.New(), Name: "Perna de pau 2", SkillLevel: 1},
		{ID: uuid.New(), Name: "Perna de pau 3", SkillLevel: 1},
		{ID: uuid.New(), Name: "Perna de pau 4", SkillLevel: 1},
		{ID: uuid.New(), Name: "Perna de pau 5", SkillLevel: 1},
		{ID: uuid.New(), Name: "Perna de pau 6", SkillLevel: 1},
	}
	b := balancer.New(rand.New(rand.NewSource(42)))
	teams, err := b.Balance(players, balancer.ModeBalanced, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("got %d teams, want 2", len(teams))
	}
	diff := math.Abs(teams[0].AverageLevel - teams[1].AverageLevel)
	if diff > 0.01 {
		t.Fatalf("average levels %.2f vs %.2f, want equal", teams[0].AverageLevel, teams[1].AverageLevel)
	}
}

func TestBalance_RandomIsSeedDeterministic(t *testing.T) {
	players := makePlayers(12)
	draw := func() []model.Team {
		b := balancer.New(rand.New(rand.NewSource(7)))
		teams, err := b.Balance(players, balancer.ModeRandom, 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return teams
	}
	first, second := draw(), draw()
	for i := range first {
		for j := range first[i].Players {
			if first[i].Players[j].ID != second[i].Players[j].ID {
				t.Fatalf("same seed produced different draws at team %d slot %d", i, j)
			}
		}
	}
}

func TestBalance_InputErrors(t *testing.T) {
	b := balancer.New(rand.New(rand.NewSource(1)))

	if _, err := b.Balance(makePlayers(1), balancer.ModeRandom, 4); !errors.Is(err, balancer.ErrNotEnoughPlayers) {
		t.Fatalf("one player: got %v, want ErrNotEnoughPlayers", err)
	}
	if _, err := b.Balance(makePlayers(8), balancer.ModeRandom, 0); !errors.Is(err, balancer.ErrInvalidTeamSize) {
		t.Fatalf("zero team size: got %v, want ErrInvalidTeamSize", err)
	}
	if _, err := b.Balance(makePlayers(8), "alphabetical", 4); !errors.Is(err, balancer.ErrUnknownMode) {
		t.Fatalf("unknown mode: got %v, want ErrUnknownMode", err)
	}

	dup := makePlayers(4)
	dup = append(dup, dup[0])
	if _, err := b.Balance(dup, balancer.ModeRandom, 4); !errors.Is(err, balancer.ErrDuplicatePlayer) {
		t.Fatalf("duplicate player: got %v, want ErrDuplicatePlayer", err)
	}
}
