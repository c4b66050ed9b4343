// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Side identifies one of the two active slots of a running match.
// Exactly two values exist; everything else is invalid input.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool { return s == SideHome || s == SideAway }

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// EndReason explains why a match segment ended.
type EndReason string

const (
	EndReasonTimeExpired EndReason = "time_expired"
	EndReasonGoldenGoal  EndReason = "golden_goal"
	EndReasonCoinToss    EndReason = "coin_toss"
)

// Player represents a roster member. Identity data is immutable once created;
// only the roster layer writes it.
type Player struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Nickname   string    `json:"nickname,omitempty"`
	Position   string    `json:"position,omitempty"`
	SkillLevel int       `json:"skill_level"` // 1..10
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Team is a value object produced by the balancer. Player order is draft order.
type Team struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Players      []Player  `json:"players"`
	AverageLevel float64   `json:"average_level"`
}

// HasPlayer reports whether id is an official member of the team.
func (t Team) HasPlayer(id uuid.UUID) bool {
	for _, p := range t.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// AverageSkill computes the arithmetic mean of member skill levels, 0 for an empty team.
func AverageSkill(players []Player) float64 {
	if len(players) == 0 {
		return 0
	}
	total := 0
	for _, p := range players {
		total += p.SkillLevel
	}
	return float64(total) / float64(len(players))
}

// Goal is a single scoring event. Immutable once appended to a session's log.
type Goal struct {
	ID       uuid.UUID  `json:"id"`
	ScorerID uuid.UUID  `json:"scorer_id"`
	AssistID *uuid.UUID `json:"assist_id,omitempty"` // must differ from ScorerID
	Minute   int        `json:"minute"`              // elapsed match time, whole minutes
	Side     Side       `json:"side"`
}

// Match is the archival record handed to persistence once a segment finishes.
// Team rosters are the lineups as they stood at kickoff, guests included.
// Never mutated after creation.
type Match struct {
	ID         uuid.UUID   `json:"id"`
	HomeTeam   Team        `json:"home_team"`
	AwayTeam   Team        `json:"away_team"`
	ScoreHome  int         `json:"score_home"`
	ScoreAway  int         `json:"score_away"`
	Goals      []Goal      `json:"goals"`
	GuestIDs   []uuid.UUID `json:"guest_ids,omitempty"` // lineup members borrowed from waiting teams
	EndReason  EndReason   `json:"end_reason"`
	DrawWinner *Side       `json:"draw_winner,omitempty"` // set only when a coin toss broke a tie
	PlayedAt   time.Time   `json:"played_at"`
}

// PlayerAggregatedStats holds per-player totals computed from archived matches.
// Read-only query result, never persisted directly.
type PlayerAggregatedStats struct {
	GamesPlayed int `json:"games_played"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	Draws       int `json:"draws"`
	Goals       int `json:"goals"`
	Assists     int `json:"assists"`
}
