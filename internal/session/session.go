// Package session owns the single active match session of a pelada day and
// the commands that drive it: clock, score, goal log, guest players and the
// king-of-the-court rotation queue.
package session

import (
	"context"
	"time"

	"github.com/peladahub/pelada-service/internal/model"
)

// DefaultRules reflect the usual pelada format: six-minute segments,
// sudden death at two goals, the current king keeps the field on an
// unresolved tie.
var DefaultRules = Rules{
	MatchDuration:       6 * time.Minute,
	GoldenGoalThreshold: 2,
	TieBreak:            TieBreakHomeStays,
}

// TieBreakPolicy decides the winner of a rotation when the score is level and
// no coin-toss result was supplied.
type TieBreakPolicy string

const (
	// TieBreakHomeStays keeps the slot-0 team on the field.
	TieBreakHomeStays TieBreakPolicy = "home_stays"
	// TieBreakAwayAdvances hands the field to the challenger instead.
	TieBreakAwayAdvances TieBreakPolicy = "away_advances"
)

// Rules carries the configurable bits of a session.
type Rules struct {
	MatchDuration       time.Duration
	GoldenGoalThreshold int // negative disables sudden death, 0 means the default
	TieBreak            TieBreakPolicy
}

func (r Rules) durationSeconds() int { return int(r.MatchDuration / time.Second) }

// Archiver receives finished matches. The engine calls it once per Finish and
// never retries; retry policy belongs to the implementation.
type Archiver interface {
	Archive(ctx context.Context, m model.Match) error
}

// state is the whole mutable session. The two active slots are modeled
// explicitly next to the waiting queue so the "at least two teams" invariant
// is structural rather than checked ad hoc.
type state struct {
	active bool

	home  model.Team
	away  model.Team
	queue []model.Team

	scoreHome int
	scoreAway int

	remaining int // seconds on the countdown clock
	running   bool

	goals      []model.Goal
	guestsHome []model.Player
	guestsAway []model.Player
}

// Snapshot is a read-only copy of the session for the UI and the live feed.
type Snapshot struct {
	Active          bool           `json:"active"`
	HomeTeam        model.Team     `json:"home_team"`
	AwayTeam        model.Team     `json:"away_team"`
	Queue           []model.Team   `json:"queue"`
	ScoreHome       int            `json:"score_home"`
	ScoreAway       int            `json:"score_away"`
	GameTimeSeconds int            `json:"game_time_seconds"`
	Running         bool           `json:"running"`
	GoldenGoal      bool           `json:"golden_goal"`
	Goals           []model.Goal   `json:"goals"`
	GuestsHome      []model.Player `json:"guests_home"`
	GuestsAway      []model.Player `json:"guests_away"`
}
