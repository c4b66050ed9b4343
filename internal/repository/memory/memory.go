// Package memory provides in-memory implementations of the repository
// contracts. They back the service when Postgres is not configured — the
// mobile client's mock-data mode — and double as fakes in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

// PlayerRepository is a mutex-guarded map store.
type PlayerRepository struct {
	mu      sync.RWMutex
	players map[uuid.UUID]model.Player
	matches *MatchRepository // optional; enables aggregated stats
}

// NewPlayerRepository builds an empty roster store. Passing the match store
// lets GetAggregatedStats compute totals; nil yields zero stats.
func NewPlayerRepository(matches *MatchRepository) *PlayerRepository {
	return &PlayerRepository{players: map[uuid.UUID]model.Player{}, matches: matches}
}

func (r *PlayerRepository) Create(_ context.Context, p model.Player) (model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, exists := r.players[p.ID]; exists {
		return model.Player{}, repository.ErrAlreadyExists
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.players[p.ID] = p
	return p, nil
}

func (r *PlayerRepository) GetByID(_ context.Context, id uuid.UUID) (model.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *PlayerRepository) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		p, ok := r.players[id]
		if !ok {
			return nil, repository.ErrNotFound
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PlayerRepository) List(_ context.Context, page repository.Page) (repository.PageResult[model.Player], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]model.Player, 0, len(r.players))
	for _, p := range r.players {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID.String() < all[j].ID.String()
	})
	return paginate(all, page), nil
}

func (r *PlayerRepository) Update(_ context.Context, p model.Player) (model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.players[p.ID]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = time.Now()
	r.players[p.ID] = p
	return p, nil
}

func (r *PlayerRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.players, id)
	return nil
}

func (r *PlayerRepository) GetAggregatedStats(ctx context.Context, playerID uuid.UUID) (model.PlayerAggregatedStats, error) {
	var stats model.PlayerAggregatedStats
	if r.matches == nil {
		return stats, nil
	}
	r.matches.mu.RLock()
	defer r.matches.mu.RUnlock()
	for _, m := range r.matches.matches {
		side, played := lineupSide(m, playerID)
		if played {
			stats.GamesPlayed++
			switch winner := winnerSide(m); {
			case winner == nil:
				stats.Draws++
			case *winner == side:
				stats.Wins++
			default:
				stats.Losses++
			}
		}
		for _, g := range m.Goals {
			if g.ScorerID == playerID {
				stats.Goals++
			}
			if g.AssistID != nil && *g.AssistID == playerID {
				stats.Assists++
			}
		}
	}
	return stats, nil
}

func lineupSide(m model.Match, playerID uuid.UUID) (model.Side, bool) {
	if m.HomeTeam.HasPlayer(playerID) {
		return model.SideHome, true
	}
	if m.AwayTeam.HasPlayer(playerID) {
		return model.SideAway, true
	}
	return "", false
}

// winnerSide resolves the match outcome; nil means a true draw.
// A coin toss counts as a win for the drawn side, matching the archive rules.
func winnerSide(m model.Match) *model.Side {
	switch {
	case m.ScoreHome > m.ScoreAway:
		s := model.SideHome
		return &s
	case m.ScoreAway > m.ScoreHome:
		s := model.SideAway
		return &s
	default:
		return m.DrawWinner
	}
}

// MatchRepository keeps archived matches in memory, newest last.
type MatchRepository struct {
	mu      sync.RWMutex
	matches []model.Match
	byID    map[uuid.UUID]int
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{byID: map[uuid.UUID]int{}}
}

func (r *MatchRepository) Archive(_ context.Context, m model.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[m.ID]; exists {
		return repository.ErrAlreadyExists
	}
	r.byID[m.ID] = len(r.matches)
	r.matches = append(r.matches, m)
	return nil
}

func (r *MatchRepository) GetByID(_ context.Context, id uuid.UUID) (model.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[id]
	if !ok {
		return model.Match{}, repository.ErrNotFound
	}
	return r.matches[i], nil
}

func (r *MatchRepository) List(_ context.Context, page repository.Page) (repository.PageResult[model.Match], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]model.Match, 0, len(r.matches))
	for i := len(r.matches) - 1; i >= 0; i-- { // newest first
		all = append(all, r.matches[i])
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].PlayedAt.After(all[j].PlayedAt) })
	return paginate(all, page), nil
}

// Pinger always reports ready; there is no dependency behind the memory mode.
type Pinger struct{}

func (Pinger) Ping(context.Context) error { return nil }

func paginate[T any](items []T, page repository.Page) repository.PageResult[T] {
	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	res := repository.PageResult[T]{Total: len(items), Items: []T{}}
	if offset >= len(items) {
		return res
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	res.Items = append(res.Items, items[offset:end]...)
	return res
}

var (
	_ repository.PlayerRepository = (*PlayerRepository)(nil)
	_ repository.MatchRepository  = (*MatchRepository)(nil)
	_ repository.Pinger           = (Pinger{})
)
