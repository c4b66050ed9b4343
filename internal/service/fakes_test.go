package service_test

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

type fakePlayerRepo struct {
	players map[uuid.UUID]model.Player
	err     error // forced error for every call when set
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: map[uuid.UUID]model.Player{}}
}

func (f *fakePlayerRepo) Create(_ context.Context, p model.Player) (model.Player, error) {
	if f.err != nil {
		return model.Player{}, f.err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.players[p.ID] = p
	return p, nil
}

func (f *fakePlayerRepo) GetByID(_ context.Context, id uuid.UUID) (model.Player, error) {
	if f.err != nil {
		return model.Player{}, f.err
	}
	p, ok := f.players[id]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakePlayerRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		p, ok := f.players[id]
		if !ok {
			return nil, repository.ErrNotFound
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePlayerRepo) List(_ context.Context, _ repository.Page) (repository.PageResult[model.Player], error) {
	if f.err != nil {
		return repository.PageResult[model.Player]{}, f.err
	}
	var res repository.PageResult[model.Player]
	for _, p := range f.players {
		res.Items = append(res.Items, p)
	}
	sort.Slice(res.Items, func(i, j int) bool { return res.Items[i].Name < res.Items[j].Name })
	res.Total = len(res.Items)
	return res, nil
}

func (f *fakePlayerRepo) Update(_ context.Context, p model.Player) (model.Player, error) {
	if f.err != nil {
		return model.Player{}, f.err
	}
	if _, ok := f.players[p.ID]; !ok {
		return model.Player{}, repository.ErrNotFound
	}
	f.players[p.ID] = p
	return p, nil
}

func (f *fakePlayerRepo) Delete(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.players[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.players, id)
	return nil
}

func (f *fakePlayerRepo) GetAggregatedStats(_ context.Context, id uuid.UUID) (model.PlayerAggregatedStats, error) {
	if f.err != nil {
		return model.PlayerAggregatedStats{}, f.err
	}
	if _, ok := f.players[id]; !ok {
		return model.PlayerAggregatedStats{}, repository.ErrNotFound
	}
	return model.PlayerAggregatedStats{GamesPlayed: 3, Wins: 2, Losses: 1, Goals: 4}, nil
}

var _ repository.PlayerRepository = (*fakePlayerRepo)(nil)

type fakeMatchRepo struct {
	matches []model.Match
	err     error
}

func (f *fakeMatchRepo) Archive(_ context.Context, m model.Match) error {
	if f.err != nil {
		return f.err
	}
	f.matches = append(f.matches, m)
	return nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id uuid.UUID) (model.Match, error) {
	if f.err != nil {
		return model.Match{}, f.err
	}
	for _, m := range f.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Match{}, repository.ErrNotFound
}

func (f *fakeMatchRepo) List(_ context.Context, _ repository.Page) (repository.PageResult[model.Match], error) {
	if f.err != nil {
		return repository.PageResult[model.Match]{}, f.err
	}
	return repository.PageResult[model.Match]{Items: f.matches, Total: len(f.matches)}, nil
}

var _ repository.MatchRepository = (*fakeMatchRepo)(nil)

// fakePublisher records published matches and can simulate a dead broker.
type fakePublisher struct {
	published []model.Match
	err       error
}

func (f *fakePublisher) MatchArchived(_ context.Context, m model.Match) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, m)
	return nil
}

func (f *fakePublisher) Close() {}

var errStorageDown = errors.New("storage down")
