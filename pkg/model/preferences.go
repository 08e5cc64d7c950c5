package model

import (
	"context"
	"database/sql"
	"errors"
)

// Notification kinds a player can opt out of
const (
	NotifyYourTurn     = "yourTurn"
	NotifyOpponentLeft = "opponentLeft"
)

// Preferences are a player's notification preferences
type Preferences struct {
	UserID       string `json:"userId"`
	YourTurn     bool   `json:"yourTurn"`
	OpponentLeft bool   `json:"opponentLeft"`
}

// DefaultPreferences has every notification enabled
func DefaultPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:       userID,
		YourTurn:     true,
		OpponentLeft: true,
	}
}

// PreferenceStore reads and writes notification preferences
type PreferenceStore struct {
	db *sql.DB
}

// NewPreferenceStore returns a store backed by dbh
func NewPreferenceStore(dbh *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: dbh}
}

// Get returns the player's preferences, or the defaults if none were saved
func (p *PreferenceStore) Get(ctx context.Context, userID string) (*Preferences, error) {
	const query = `
SELECT your_turn, opponent_left
FROM notification_preferences
WHERE user_id = $1`

	prefs := DefaultPreferences(userID)
	err := p.db.QueryRowContext(ctx, query, userID).Scan(&prefs.YourTurn, &prefs.OpponentLeft)
	if errors.Is(err, sql.ErrNoRows) {
		return prefs, nil
	}

	if err != nil {
		return nil, err
	}

	return prefs, nil
}

// Save stores the preferences
func (p *PreferenceStore) Save(ctx context.Context, prefs *Preferences) error {
	const query = `
INSERT INTO notification_preferences (user_id, your_turn, opponent_left)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET your_turn = EXCLUDED.your_turn,
    opponent_left = EXCLUDED.opponent_left,
    updated = (NOW() AT TIME ZONE 'utc')`

	_, err := p.db.ExecContext(ctx, query, prefs.UserID, prefs.YourTurn, prefs.OpponentLeft)
	return err
}

// Allows reports whether the player wants notifications of the given kind
// Unknown kinds are always allowed.
func (p *PreferenceStore) Allows(ctx context.Context, userID, kind string) (bool, error) {
	prefs, err := p.Get(ctx, userID)
	if err != nil {
		return false, err
	}

	return prefs.Allows(kind), nil
}

// Allows reports whether notifications of kind are enabled
func (p *Preferences) Allows(kind string) bool {
	switch kind {
	case NotifyYourTurn:
		return p.YourTurn
	case NotifyOpponentLeft:
		return p.OpponentLeft
	}

	return true
}
