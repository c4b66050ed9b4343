package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

type playerRepository struct{ pool *pgxpool.Pool }

func NewPlayerRepository(pool *pgxpool.Pool) repository.PlayerRepository {
	return &playerRepository{pool: pool}
}

const playerColumns = `id, name, nickname, position, skill_level, created_at, updated_at`

func scanPlayer(row pgx.Row) (model.Player, error) {
	var out model.Player
	err := row.Scan(&out.ID, &out.Name, &out.Nickname, &out.Position, &out.SkillLevel, &out.CreatedAt, &out.UpdatedAt)
	return out, err
}

func (r *playerRepository) Create(ctx context.Context, p model.Player) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO players (id, name, nickname, position, skill_level)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+playerColumns,
		p.ID, p.Name, p.Nickname, p.Position, p.SkillLevel,
	)
	out, err := scanPlayer(row)
	if err != nil {
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *playerRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	out, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, repository.ErrNotFound
		}
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

// ListByIDs keeps the caller's order and fails with ErrNotFound when any id
// is missing, so a team draw can never silently lose a player.
func (r *playerRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	byID := make(map[uuid.UUID]model.Player, len(ids))
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	out := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, repository.ErrNotFound
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *playerRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Player], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Player]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+playerColumns+`, COUNT(*) OVER() AS total
		 FROM players
		 ORDER BY name, id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Player]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Player]{Items: make([]model.Player, 0, limit)}
	for rows.Next() {
		var pl model.Player
		var total int
		if err := rows.Scan(&pl.ID, &pl.Name, &pl.Nickname, &pl.Position, &pl.SkillLevel, &pl.CreatedAt, &pl.UpdatedAt, &total); err != nil {
			return repository.PageResult[model.Player]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, pl)
		res.Total = total
	}
	return res, rows.Err()
}

func (r *playerRepository) Update(ctx context.Context, p model.Player) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`UPDATE players
		 SET name = $2, nickname = $3, position = $4, skill_level = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+playerColumns,
		p.ID, p.Name, p.Nickname, p.Position, p.SkillLevel,
	)
	out, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, repository.ErrNotFound
		}
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *playerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetAggregatedStats computes career totals from archived matches.
// Outcomes follow the archival rules: a coin toss counts as a win for the
// drawn winner, a level score with no toss counts as a draw for both sides.
func (r *playerRepository) GetAggregatedStats(ctx context.Context, playerID uuid.UUID) (model.PlayerAggregatedStats, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.PlayerAggregatedStats{}, err
	}

	query := `
		WITH outcomes AS (
			-- One row per match with the winning side resolved, NULL on a true draw.
			SELECT
				m.id,
				CASE
					WHEN m.score_home > m.score_away THEN 'home'
					WHEN m.score_away > m.score_home THEN 'away'
					ELSE m.draw_winner
				END AS winner_side
			FROM matches m
		),
		appearances AS (
			SELECT l.match_id, l.side, o.winner_side
			FROM match_lineups l
			JOIN outcomes o ON o.id = l.match_id
			WHERE l.player_id = $1
		)
		SELECT
			COALESCE(COUNT(*), 0) AS games_played,
			COALESCE(SUM(CASE WHEN winner_side = side THEN 1 ELSE 0 END), 0) AS wins,
			COALESCE(SUM(CASE WHEN winner_side IS NOT NULL AND winner_side <> side THEN 1 ELSE 0 END), 0) AS losses,
			COALESCE(SUM(CASE WHEN winner_side IS NULL THEN 1 ELSE 0 END), 0) AS draws,
			COALESCE((SELECT COUNT(*) FROM goals g WHERE g.scorer_id = $1), 0) AS goals,
			COALESCE((SELECT COUNT(*) FROM goals g WHERE g.assist_id = $1), 0) AS assists
		FROM appearances
	`

	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx, query, playerID)

	var stats model.PlayerAggregatedStats
	if err := row.Scan(&stats.GamesPlayed, &stats.Wins, &stats.Losses, &stats.Draws, &stats.Goals, &stats.Assists); err != nil {
		return model.PlayerAggregatedStats{}, repository.MapPgError(err)
	}
	return stats, nil
}

var _ repository.PlayerRepository = (*playerRepository)(nil)
