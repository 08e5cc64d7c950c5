package teenpatti

import (
	"errors"
	"fmt"
)

// ErrPlayerNotFound is returned when a player is not seated in the room
var ErrPlayerNotFound = errors.New("player not found")

// ErrRoomFull is returned when every seat is taken
var ErrRoomFull = errors.New("the room is full")

// ErrInsufficientBalance is returned when a player cannot afford to sit down
var ErrInsufficientBalance = errors.New("balance is too low to join this table")

// ErrNotPlaying is returned when a betting action is attempted outside of a round
var ErrNotPlaying = errors.New("no round is in progress")

// ErrNotInRound is returned when a player who is not contesting the pot tries to act
var ErrNotInRound = errors.New("you are not in this round")

// ErrNotYourTurn is returned when a player acts out of turn
var ErrNotYourTurn = errors.New("it is not your turn")

// ErrInvalidAmount is returned when a bet is outside of the legal range
var ErrInvalidAmount = errors.New("invalid bet amount")

// ErrShowNotAllowed is returned when a show is requested with other than two players left, or before betting
var ErrShowNotAllowed = errors.New("show is not allowed")

// ErrSideShowNotAllowed is returned when a side show request is not legal
var ErrSideShowNotAllowed = errors.New("side show is not allowed")

// ErrNoPendingSideShow is returned when responding to a side show that does not exist
var ErrNoPendingSideShow = errors.New("there is no side show to respond to")

// ErrNotRoundEnd is returned when a between-rounds operation is attempted during a round
var ErrNotRoundEnd = errors.New("the round has not ended")

// ErrNoConsentPhase is returned when a consent answer arrives outside of the consent phase
var ErrNoConsentPhase = errors.New("not waiting for players to continue")

// ErrCannotStart is returned when a round cannot be started
var ErrCannotStart = errors.New("not enough players to start")

// ActionError is a rejected action with enough context for the client to recover
type ActionError struct {
	Err        error  `json:"-"`
	Message    string `json:"message"`
	TurnUserID string `json:"turnUserId,omitempty"`
	MinBet     int    `json:"minBet,omitempty"`
	MaxBet     int    `json:"maxBet,omitempty"`
}

func (a *ActionError) Error() string {
	return a.Message
}

// Unwrap returns the underlying sentinel error
func (a *ActionError) Unwrap() error {
	return a.Err
}

// newActionError decorates err with whose turn it is and, when relevant, the legal bet range for p
func (g *Game) newActionError(err error, p *Participant, format string, a ...interface{}) *ActionError {
	msg := err.Error()
	if format != "" {
		msg = fmt.Sprintf(format, a...)
	}

	ae := &ActionError{
		Err:     err,
		Message: msg,
	}

	if cur := g.currentParticipant(); cur != nil && g.state == StatePlaying {
		ae.TurnUserID = cur.UserID
	}

	if p != nil && g.state == StatePlaying && p.inPlay() {
		opts := g.betOptions(p)
		ae.MinBet = opts.MinBet
		ae.MaxBet = opts.MaxBet
	}

	return ae
}

// OptionsError is a table configuration error
type OptionsError struct {
	Field  string
	Reason string
}

func (o OptionsError) Error() string {
	return fmt.Sprintf("invalid table option %s: %s", o.Field, o.Reason)
}
