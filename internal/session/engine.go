package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
)

// Engine drives the single active session through its state machine.
// Every command locks, validates the whole transition, then mutates — a tick
// and a command never interleave partially, and a rejected command leaves the
// state untouched.
type Engine struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	rules    Rules
	archiver Archiver
	log      zerolog.Logger

	st   state
	stop chan struct{} // non-nil while the clock goroutine runs

	subs    map[int]chan Snapshot
	nextSub int
}

// NewEngine builds an engine with the given rules. Zero-valued rule fields
// fall back to DefaultRules. The clock is injected so tests can drive time.
func NewEngine(rules Rules, archiver Archiver, clock clockwork.Clock, logger zerolog.Logger) *Engine {
	if rules.MatchDuration <= 0 {
		rules.MatchDuration = DefaultRules.MatchDuration
	}
	if rules.GoldenGoalThreshold == 0 {
		rules.GoldenGoalThreshold = DefaultRules.GoldenGoalThreshold
	}
	if rules.TieBreak == "" {
		rules.TieBreak = DefaultRules.TieBreak
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		clock:    clock,
		rules:    rules,
		archiver: archiver,
		log:      logger.With().Str("module", "session").Logger(),
		subs:     map[int]chan Snapshot{},
	}
}

// Rules returns the rules the engine was built with.
func (e *Engine) Rules() Rules { return e.rules }

// Start replaces any prior session unconditionally with a fresh one:
// score 0-0, full clock, empty goal log, no guests, clock not running.
func (e *Engine) Start(teams []model.Team) error {
	if len(teams) < 2 {
		return ErrNotEnoughTeams
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopClockLocked()
	queue := make([]model.Team, len(teams)-2)
	copy(queue, teams[2:])
	e.st = state{
		active:    true,
		home:      teams[0],
		away:      teams[1],
		queue:     queue,
		remaining: e.rules.durationSeconds(),
	}
	e.log.Info().
		Str("home", teams[0].Name).
		Str("away", teams[1].Name).
		Int("waiting", len(queue)).
		Msg("session started")
	e.notifyLocked()
	return nil
}

// Pause stops the clock.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.st.active {
		return ErrNoActiveSession
	}
	e.stopClockLocked()
	e.notifyLocked()
	return nil
}

// Resume restarts the clock. It is a silent no-op once the golden-goal
// condition holds or the clock has run out.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.st.active {
		return ErrNoActiveSession
	}
	if e.goldenLocked() || e.st.remaining == 0 || e.st.running {
		return nil
	}
	e.st.running = true
	e.startClockLocked()
	e.notifyLocked()
	return nil
}

// Tick advances the countdown by one second, flooring at zero. Reaching zero
// forces the clock to stop. The internal clock goroutine calls this once per
// elapsed second while running; it is exported so the transition is directly
// testable.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.st.active || !e.st.running || e.st.remaining == 0 {
		return
	}
	e.st.remaining--
	if e.st.remaining == 0 {
		e.stopClockLocked()
		e.log.Info().Int("score_home", e.st.scoreHome).Int("score_away", e.st.scoreAway).Msg("time expired")
	}
	e.notifyLocked()
}

// RecordGoal appends a goal for the named side and bumps its score. The
// scorer (and the assist, when present) must belong to that side's effective
// roster: official players plus current guests. Reaching the golden-goal
// threshold stops the clock and locks scoring until Rotate or End.
func (e *Engine) RecordGoal(side model.Side, scorerID uuid.UUID, assistID *uuid.UUID) (model.Goal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.st.active {
		return model.Goal{}, ErrNoActiveSession
	}
	if !side.Valid() {
		return model.Goal{}, ErrInvalidSide
	}
	if e.goldenLocked() {
		return model.Goal{}, ErrGoldenGoalLocked
	}
	roster := e.effectiveRosterLocked(side)
	if !rosterHas(roster, scorerID) {
		return model.Goal{}, ErrUnknownScorer
	}
	if assistID != nil {
		if *assistID == scorerID || !rosterHas(roster, *assistID) {
			return model.Goal{}, ErrInvalidAssist
		}
	}

	elapsed := e.rules.durationSeconds() - e.st.remaining
	goal := model.Goal{
		ID:       uuid.New(),
		ScorerID: scorerID,
		AssistID: assistID,
		Minute:   elapsed / 60,
		Side:     side,
	}
	e.st.goals = append(e.st.goals, goal)
	if side == model.SideHome {
		e.st.scoreHome++
	} else {
		e.st.scoreAway++
	}
	if e.goldenLocked() {
		e.stopClockLocked()
		e.log.Info().Str("side", string(side)).Msg("golden goal")
	}
	e.log.Debug().
		Str("side", string(side)).
		Str("scorer_id", scorerID.String()).
		Int("minute", goal.Minute).
		Msg("goal recorded")
	e.notifyLocked()
	return goal, nil
}

// AddGuest borrows a waiting-queue player onto an active side short of its
// own roster. A player can guest on at most one side at a time and never on
// a side they already officially belong to. The player stays on their own
// team; rotation-time conflict filtering handles the return.
func (e *Engine) AddGuest(side model.Side, playerID uuid.UUID) (model.Player, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.st.active {
		return model.Player{}, ErrNoActiveSession
	}
	if !side.Valid() {
		return model.Player{}, ErrInvalidSide
	}
	player, ok := e.queuedPlayerLocked(playerID)
	if !ok {
		return model.Player{}, ErrNotInQueue
	}
	if rosterHas(e.st.guestsHome, playerID) || rosterHas(e.st.guestsAway, playerID) {
		return model.Player{}, ErrAlreadyGuest
	}
	if e.activeTeamLocked(side).HasPlayer(playerID) {
		return model.Player{}, ErrAlreadyOnSide
	}

	if side == model.SideHome {
		e.st.guestsHome = append(e.st.guestsHome, player)
	} else {
		e.st.guestsAway = append(e.st.guestsAway, player)
	}
	e.log.Info().Str("side", string(side)).Str("player", player.Name).Msg("guest added")
	e.notifyLocked()
	return player, nil
}

// Finish stops the clock, builds the immutable match record and hands it to
// the archiver. The engine's own transition to "stopped" happens regardless
// of the archive outcome; an archive failure is returned but never retried
// here. drawWinner is honored only when the score is level.
func (e *Engine) Finish(ctx context.Context, drawWinner *model.Side) (model.Match, error) {
	e.mu.Lock()
	if !e.st.active {
		e.mu.Unlock()
		return model.Match{}, ErrNoActiveSession
	}
	if drawWinner != nil && !drawWinner.Valid() {
		e.mu.Unlock()
		return model.Match{}, ErrInvalidSide
	}
	e.stopClockLocked()

	goals := make([]model.Goal, len(e.st.goals))
	copy(goals, e.st.goals)

	match := model.Match{
		ID:        uuid.New(),
		HomeTeam:  teamWithGuests(e.st.home, e.st.guestsHome),
		AwayTeam:  teamWithGuests(e.st.away, e.st.guestsAway),
		ScoreHome: e.st.scoreHome,
		ScoreAway: e.st.scoreAway,
		Goals:     goals,
		GuestIDs:  guestIDs(e.st.guestsHome, e.st.guestsAway),
		PlayedAt:  e.clock.Now(),
	}
	switch {
	case e.goldenLocked():
		match.EndReason = model.EndReasonGoldenGoal
	case e.st.scoreHome == e.st.scoreAway && drawWinner != nil:
		match.EndReason = model.EndReasonCoinToss
		match.DrawWinner = drawWinner
	default:
		match.EndReason = model.EndReasonTimeExpired
	}
	e.notifyLocked()
	e.mu.Unlock()

	// Hand-off outside the lock: archival must not serialize against commands.
	if err := e.archiver.Archive(ctx, match); err != nil {
		e.log.Error().Err(err).Str("match_id", match.ID.String()).Msg("archive failed")
		return match, err
	}
	e.log.Info().
		Str("match_id", match.ID.String()).
		Int("score_home", match.ScoreHome).
		Int("score_away", match.ScoreAway).
		Str("end_reason", string(match.EndReason)).
		Msg("match archived")
	return match, nil
}

// Rotate applies the king-of-the-court rotation: the winner keeps slot 0, the
// head of the waiting queue becomes the challenger, the loser goes to the
// back. Winner resolution order: explicit coin-toss team id, then score, then
// the configured tie-break policy. Returns the names of winning-side guests
// removed because they officially belong to the incoming challenger.
func (e *Engine) Rotate(drawWinnerTeamID *uuid.UUID) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.st.active {
		return nil, ErrNoActiveSession
	}

	winnerSide := model.SideHome
	switch {
	case drawWinnerTeamID != nil:
		switch *drawWinnerTeamID {
		case e.st.home.ID:
			winnerSide = model.SideHome
		case e.st.away.ID:
			winnerSide = model.SideAway
		default:
			return nil, ErrUnknownDrawTeam
		}
	case e.st.scoreHome != e.st.scoreAway:
		if e.st.scoreAway > e.st.scoreHome {
			winnerSide = model.SideAway
		}
	case e.rules.TieBreak == TieBreakAwayAdvances:
		winnerSide = model.SideAway
	}

	winner := e.activeTeamLocked(winnerSide)
	loser := e.activeTeamLocked(winnerSide.Other())
	winnerGuests := e.st.guestsHome
	if winnerSide == model.SideAway {
		winnerGuests = e.st.guestsAway
	}

	// New ordering: [winner, queue..., loser].
	var challenger model.Team
	newQueue := make([]model.Team, 0, len(e.st.queue))
	if len(e.st.queue) > 0 {
		challenger = e.st.queue[0]
		newQueue = append(newQueue, e.st.queue[1:]...)
		newQueue = append(newQueue, loser)
	} else {
		challenger = loser
	}

	// Guests who officially belong to the incoming challenger return to their
	// team; the rest stay on the winning side for the next segment.
	var kept []model.Player
	var removed []string
	for _, g := range winnerGuests {
		if challenger.HasPlayer(g.ID) {
			removed = append(removed, g.Name)
			continue
		}
		kept = append(kept, g)
	}

	e.stopClockLocked()
	e.st.home = winner
	e.st.away = challenger
	e.st.queue = newQueue
	e.st.scoreHome = 0
	e.st.scoreAway = 0
	e.st.remaining = e.rules.durationSeconds()
	e.st.goals = nil
	e.st.guestsHome = kept
	e.st.guestsAway = nil

	e.log.Info().
		Str("king", winner.Name).
		Str("challenger", challenger.Name).
		Strs("removed_guests", removed).
		Msg("rotated")
	e.notifyLocked()
	return removed, nil
}

// End clears the session back to its zero state. Irreversible: a new session
// must be started from scratch.
func (e *Engine) End() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.st.active {
		return ErrNoActiveSession
	}
	e.stopClockLocked()
	e.st = state{}
	e.log.Info().Msg("session ended")
	e.notifyLocked()
	return nil
}

// Snapshot returns a read-only copy of the current session.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe registers a listener that receives a snapshot after every state
// change. Slow listeners drop updates instead of blocking commands. The
// returned func cancels the subscription and closes the channel.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	ch := make(chan Snapshot, 8)
	e.subs[id] = ch
	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(c)
		}
	}
}

// --- internals, all called with e.mu held ---

func (e *Engine) goldenLocked() bool {
	t := e.rules.GoldenGoalThreshold
	return t > 0 && (e.st.scoreHome >= t || e.st.scoreAway >= t)
}

func (e *Engine) activeTeamLocked(side model.Side) model.Team {
	if side == model.SideHome {
		return e.st.home
	}
	return e.st.away
}

// effectiveRosterLocked is the side's official players plus current guests.
func (e *Engine) effectiveRosterLocked(side model.Side) []model.Player {
	team := e.activeTeamLocked(side)
	guests := e.st.guestsHome
	if side == model.SideAway {
		guests = e.st.guestsAway
	}
	roster := make([]model.Player, 0, len(team.Players)+len(guests))
	roster = append(roster, team.Players...)
	roster = append(roster, guests...)
	return roster
}

func (e *Engine) queuedPlayerLocked(id uuid.UUID) (model.Player, bool) {
	for _, t := range e.st.queue {
		for _, p := range t.Players {
			if p.ID == id {
				return p, true
			}
		}
	}
	return model.Player{}, false
}

func (e *Engine) startClockLocked() {
	if e.stop != nil {
		return
	}
	stop := make(chan struct{})
	e.stop = stop
	go e.runClock(stop)
}

func (e *Engine) stopClockLocked() {
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	e.st.running = false
}

// runClock fires Tick once per elapsed second until stopped. The single
// writer stays the mutex: the goroutine only ever mutates through Tick.
func (e *Engine) runClock(stop <-chan struct{}) {
	ticker := e.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.Chan():
			e.Tick()
		case <-stop:
			return
		}
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Active:          e.st.active,
		HomeTeam:        e.st.home,
		AwayTeam:        e.st.away,
		Queue:           append([]model.Team(nil), e.st.queue...),
		ScoreHome:       e.st.scoreHome,
		ScoreAway:       e.st.scoreAway,
		GameTimeSeconds: e.st.remaining,
		Running:         e.st.running,
		GoldenGoal:      e.st.active && e.goldenLocked(),
		Goals:           append([]model.Goal(nil), e.st.goals...),
		GuestsHome:      append([]model.Player(nil), e.st.guestsHome...),
		GuestsAway:      append([]model.Player(nil), e.st.guestsAway...),
	}
	return snap
}

func (e *Engine) notifyLocked() {
	if len(e.subs) == 0 {
		return
	}
	snap := e.snapshotLocked()
	for _, ch := range e.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func rosterHas(players []model.Player, id uuid.UUID) bool {
	for _, p := range players {
		if p.ID == id {
			return true
		}
	}
	return false
}

func guestIDs(home, away []model.Player) []uuid.UUID {
	if len(home)+len(away) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(home)+len(away))
	for _, g := range home {
		ids = append(ids, g.ID)
	}
	for _, g := range away {
		ids = append(ids, g.ID)
	}
	return ids
}

func teamWithGuests(t model.Team, guests []model.Player) model.Team {
	players := make([]model.Player, 0, len(t.Players)+len(guests))
	players = append(players, t.Players...)
	players = append(players, guests...)
	out := t
	out.Players = players
	return out
}
