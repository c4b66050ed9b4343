package session

import (
	"errors"
	"fmt"
)

// ErrCommandRejected is the marker for every synchronous precondition failure.
// Commands reject whole: when one of these comes back, no state was mutated.
var ErrCommandRejected = errors.New("command rejected")

var (
	ErrNoActiveSession  = fmt.Errorf("%w: no active session", ErrCommandRejected)
	ErrNotEnoughTeams   = fmt.Errorf("%w: at least two teams are required", ErrCommandRejected)
	ErrInvalidSide      = fmt.Errorf("%w: side must be home or away", ErrCommandRejected)
	ErrGoldenGoalLocked = fmt.Errorf("%w: golden goal reached, rotate or end the session first", ErrCommandRejected)
	ErrUnknownScorer    = fmt.Errorf("%w: scorer is not on that side", ErrCommandRejected)
	ErrInvalidAssist    = fmt.Errorf("%w: assist must come from a different player on the same side", ErrCommandRejected)
	ErrNotInQueue       = fmt.Errorf("%w: player is not on a waiting team", ErrCommandRejected)
	ErrAlreadyGuest     = fmt.Errorf("%w: player is already a guest", ErrCommandRejected)
	ErrAlreadyOnSide    = fmt.Errorf("%w: player is already an official member of that side", ErrCommandRejected)
	ErrUnknownDrawTeam  = fmt.Errorf("%w: draw winner is not one of the active teams", ErrCommandRejected)
)
