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

type matchRepository struct {
	pool *pgxpool.Pool
	txm  repository.TxManager
}

func NewMatchRepository(pool *pgxpool.Pool) repository.MatchRepository {
	return &matchRepository{pool: pool, txm: NewTxManager(pool)}
}

// Archive stores the match, both lineups and the goal log in one transaction.
func (r *matchRepository) Archive(ctx context.Context, m model.Match) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	return r.txm.WithinTx(ctx, func(ctx context.Context) error {
		exec := getQ(ctx, r.pool)
		_, err := exec.Exec(ctx,
			`INSERT INTO matches (
				id, home_team_id, home_team_name, away_team_id, away_team_name,
				score_home, score_away, end_reason, draw_winner, played_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			m.ID, m.HomeTeam.ID, m.HomeTeam.Name, m.AwayTeam.ID, m.AwayTeam.Name,
			m.ScoreHome, m.ScoreAway, m.EndReason, drawWinnerValue(m.DrawWinner), m.PlayedAt,
		)
		if err != nil {
			return err
		}
		guests := make(map[uuid.UUID]bool, len(m.GuestIDs))
		for _, id := range m.GuestIDs {
			guests[id] = true
		}
		if err := insertLineup(ctx, exec, m.ID, model.SideHome, m.HomeTeam.Players, guests); err != nil {
			return err
		}
		if err := insertLineup(ctx, exec, m.ID, model.SideAway, m.AwayTeam.Players, guests); err != nil {
			return err
		}
		for i, g := range m.Goals {
			_, err := exec.Exec(ctx,
				`INSERT INTO goals (id, match_id, scorer_id, assist_id, side, minute, seq)
				 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				g.ID, m.ID, g.ScorerID, g.AssistID, g.Side, g.Minute, i,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func insertLineup(ctx context.Context, exec q, matchID uuid.UUID, side model.Side, players []model.Player, guests map[uuid.UUID]bool) error {
	for i, p := range players {
		_, err := exec.Exec(ctx,
			`INSERT INTO match_lineups (match_id, player_id, side, position, guest)
			 VALUES ($1,$2,$3,$4,$5)`,
			matchID, p.ID, side, i, guests[p.ID],
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func drawWinnerValue(s *model.Side) any {
	if s == nil {
		return nil
	}
	return string(*s)
}

func (r *matchRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT id, home_team_id, home_team_name, away_team_id, away_team_name,
		        score_home, score_away, end_reason, draw_winner, played_at
		 FROM matches WHERE id = $1`, id,
	)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, repository.ErrNotFound
		}
		return model.Match{}, repository.MapPgError(err)
	}
	matches := []model.Match{m}
	if err := r.attachDetails(ctx, matches); err != nil {
		return model.Match{}, err
	}
	return matches[0], nil
}

func (r *matchRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Match], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Match]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT id, home_team_id, home_team_name, away_team_id, away_team_name,
		        score_home, score_away, end_reason, draw_winner, played_at,
		        COUNT(*) OVER() AS total
		 FROM matches
		 ORDER BY played_at DESC, id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Match]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Match]{Items: make([]model.Match, 0, limit)}
	for rows.Next() {
		var m model.Match
		var drawWinner *string
		var total int
		if err := rows.Scan(&m.ID, &m.HomeTeam.ID, &m.HomeTeam.Name, &m.AwayTeam.ID, &m.AwayTeam.Name,
			&m.ScoreHome, &m.ScoreAway, &m.EndReason, &drawWinner, &m.PlayedAt, &total); err != nil {
			return repository.PageResult[model.Match]{}, repository.MapPgError(err)
		}
		m.DrawWinner = sideFromString(drawWinner)
		res.Items = append(res.Items, m)
		res.Total = total
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.Match]{}, repository.MapPgError(err)
	}
	if err := r.attachDetails(ctx, res.Items); err != nil {
		return repository.PageResult[model.Match]{}, err
	}
	return res, nil
}

func scanMatch(row pgx.Row) (model.Match, error) {
	var m model.Match
	var drawWinner *string
	err := row.Scan(&m.ID, &m.HomeTeam.ID, &m.HomeTeam.Name, &m.AwayTeam.ID, &m.AwayTeam.Name,
		&m.ScoreHome, &m.ScoreAway, &m.EndReason, &drawWinner, &m.PlayedAt)
	m.DrawWinner = sideFromString(drawWinner)
	return m, err
}

func sideFromString(s *string) *model.Side {
	if s == nil {
		return nil
	}
	side := model.Side(*s)
	return &side
}

// attachDetails loads lineups and goal logs for the given matches in two
// bulk queries and stitches them back in memory.
func (r *matchRepository) attachDetails(ctx context.Context, matches []model.Match) error {
	if len(matches) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(matches))
	idx := make(map[uuid.UUID]int, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
		idx[m.ID] = i
	}
	exec := getQ(ctx, r.pool)

	rows, err := exec.Query(ctx,
		`SELECT l.match_id, l.side, l.guest, p.id, p.name, p.nickname, p.position, p.skill_level, p.created_at, p.updated_at
		 FROM match_lineups l
		 JOIN players p ON p.id = l.player_id
		 WHERE l.match_id = ANY($1)
		 ORDER BY l.match_id, l.side, l.position`, ids,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var matchID uuid.UUID
		var side model.Side
		var guest bool
		var p model.Player
		if err := rows.Scan(&matchID, &side, &guest, &p.ID, &p.Name, &p.Nickname, &p.Position, &p.SkillLevel, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return repository.MapPgError(err)
		}
		i := idx[matchID]
		if side == model.SideHome {
			matches[i].HomeTeam.Players = append(matches[i].HomeTeam.Players, p)
		} else {
			matches[i].AwayTeam.Players = append(matches[i].AwayTeam.Players, p)
		}
		if guest {
			matches[i].GuestIDs = append(matches[i].GuestIDs, p.ID)
		}
	}
	if err := rows.Err(); err != nil {
		return repository.MapPgError(err)
	}
	for i := range matches {
		matches[i].HomeTeam.AverageLevel = model.AverageSkill(matches[i].HomeTeam.Players)
		matches[i].AwayTeam.AverageLevel = model.AverageSkill(matches[i].AwayTeam.Players)
	}

	goalRows, err := exec.Query(ctx,
		`SELECT match_id, id, scorer_id, assist_id, side, minute
		 FROM goals
		 WHERE match_id = ANY($1)
		 ORDER BY match_id, seq`, ids,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	defer goalRows.Close()
	for goalRows.Next() {
		var matchID uuid.UUID
		var g model.Goal
		if err := goalRows.Scan(&matchID, &g.ID, &g.ScorerID, &g.AssistID, &g.Side, &g.Minute); err != nil {
			return repository.MapPgError(err)
		}
		i := idx[matchID]
		matches[i].Goals = append(matches[i].Goals, g)
	}
	return goalRows.Err()
}

var _ repository.MatchRepository = (*matchRepository)(nil)
