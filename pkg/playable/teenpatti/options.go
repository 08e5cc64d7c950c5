package teenpatti

import "time"

// Options are the table settings for a room
type Options struct {
	Boot       int // ante paid by every player at the start of a round
	BetCeiling int // largest single bet, 0 for no limit
	MinPlayers int
	MaxPlayers int
	MinBalance int // balance needed to sit down

	TurnTimeLimit time.Duration
	Rake          float64 // fraction of the pot retained by the house

	// MaxConsecutiveTimeouts removes a player after this many timed out turns in a row, 0 disables
	MaxConsecutiveTimeouts int
}

// DefaultOptions returns the default options for a table
func DefaultOptions() Options {
	return Options{
		Boot:                   10,
		BetCeiling:             0,
		MinPlayers:             2,
		MaxPlayers:             6,
		MinBalance:             10,
		TurnTimeLimit:          30 * time.Second,
		Rake:                   0.05,
		MaxConsecutiveTimeouts: 3,
	}
}

// Validate checks the options for consistency
func (o Options) Validate() error {
	if o.Boot <= 0 {
		return OptionsError{Field: "Boot", Reason: "must be greater than zero"}
	}

	if o.MinPlayers < 2 {
		return OptionsError{Field: "MinPlayers", Reason: "must be at least 2"}
	}

	if o.MaxPlayers < o.MinPlayers {
		return OptionsError{Field: "MaxPlayers", Reason: "must be at least MinPlayers"}
	}

	// 3 cards each from a single deck
	if o.MaxPlayers*HandSize > 52 {
		return OptionsError{Field: "MaxPlayers", Reason: "not enough cards for every seat"}
	}

	if o.BetCeiling < 0 {
		return OptionsError{Field: "BetCeiling", Reason: "cannot be negative"}
	}

	if o.BetCeiling > 0 && o.BetCeiling < o.Boot {
		return OptionsError{Field: "BetCeiling", Reason: "must be at least the boot"}
	}

	if o.Rake < 0 || o.Rake >= 1 {
		return OptionsError{Field: "Rake", Reason: "must be in [0, 1)"}
	}

	if o.MinBalance < 0 {
		return OptionsError{Field: "MinBalance", Reason: "cannot be negative"}
	}

	return nil
}
