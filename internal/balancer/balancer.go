// Package balancer partitions a set of players into teams of a fixed target
// size, either randomly or balanced by skill level. It is pure: no storage,
// no transport, deterministic for a seeded random source.
package balancer

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/peladahub/pelada-service/internal/model"
)

// Mode selects the distribution policy.
type Mode string

const (
	ModeRandom   Mode = "random"
	ModeBalanced Mode = "balanced"
)

// DefaultPlayersPerTeam matches the usual pelada format.
const DefaultPlayersPerTeam = 4

var (
	ErrNotEnoughPlayers = errors.New("at least two players are required")
	ErrInvalidTeamSize  = errors.New("players per team must be positive")
	ErrDuplicatePlayer  = errors.New("duplicate player in input")
	ErrUnknownMode      = errors.New("unknown balance mode")
)

// Team display names, cycling when more teams than names are needed.
var teamNames = []string{"Time 1", "Time 2", "Time 3", "Time 4", "Time 5", "Time 6"}

// Balancer allocates players into teams. The random source is injected so
// callers can seed it for reproducible draws.
type Balancer struct {
	rng *rand.Rand
}

// New returns a Balancer backed by rng. A nil rng panics early rather than
// at first draw.
func New(rng *rand.Rand) *Balancer {
	if rng == nil {
		panic("balancer: nil random source")
	}
	return &Balancer{rng: rng}
}

// Balance splits players into teams of playersPerTeam under the given mode.
// Passing playersPerTeam <= 0 is an error; use DefaultPlayersPerTeam explicitly.
// The union of the returned rosters is exactly the input set: no player is
// dropped or duplicated.
func (b *Balancer) Balance(players []model.Player, mode Mode, playersPerTeam int) ([]model.Team, error) {
	if len(players) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	if playersPerTeam <= 0 {
		return nil, ErrInvalidTeamSize
	}
	seen := make(map[uuid.UUID]struct{}, len(players))
	for _, p := range players {
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	switch mode {
	case ModeRandom:
		return b.balanceRandom(players, playersPerTeam), nil
	case ModeBalanced:
		return balanceBySkill(players, playersPerTeam), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// balanceRandom shuffles uniformly (Fisher-Yates via rand.Shuffle) and slices
// into contiguous chunks; the final chunk holds the remainder.
func (b *Balancer) balanceRandom(players []model.Player, size int) []model.Team {
	shuffled := make([]model.Player, len(players))
	copy(shuffled, players)
	b.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	total := totalTeams(len(players), size)
	teams := make([]model.Team, 0, total)
	for i := 0; i < total; i++ {
		lo := i * size
		hi := lo + size
		if hi > len(shuffled) {
			hi = len(shuffled)
		}
		teams = append(teams, newTeam(i, shuffled[lo:hi]))
	}
	return teams
}

// balanceBySkill sorts by skill level descending (ties keep input order) and
// distributes via snake draft: 0..k-1, then k-1..0, repeating. Spreading the
// strongest players first keeps team skill sums close to equal.
func balanceBySkill(players []model.Player, size int) []model.Team {
	sorted := make([]model.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SkillLevel > sorted[j].SkillLevel
	})

	total := totalTeams(len(players), size)
	rosters := make([][]model.Player, total)

	idx, dir := 0, 1
	for _, p := range sorted {
		rosters[idx] = append(rosters[idx], p)
		idx += dir
		if idx >= total || idx < 0 {
			dir = -dir
			idx += dir
		}
	}

	teams := make([]model.Team, 0, total)
	for i, roster := range rosters {
		teams = append(teams, newTeam(i, roster))
	}
	return teams
}

func totalTeams(n, size int) int {
	return (n + size - 1) / size
}

func newTeam(index int, roster []model.Player) model.Team {
	players := make([]model.Player, len(roster))
	copy(players, roster)
	return model.Team{
		ID:           uuid.New(),
		Name:         teamNames[index%len(teamNames)],
		Players:      players,
		AverageLevel: model.AverageSkill(players),
	}
}
