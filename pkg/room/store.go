package room

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"teenpatti-server/pkg/playable/teenpatti"
)

// notification kinds relayed to clients
const (
	notifyYourTurn     = "yourTurn"
	notifyOpponentLeft = "opponentLeft"
)

// BalanceStore owns player balances outside of a room
type BalanceStore interface {
	// LoadBalance returns the balance a player sits down with
	LoadBalance(ctx context.Context, userID string) (int, error)

	// SaveBalance stores the balance a player leaves the room with
	SaveBalance(ctx context.Context, roomID, userID string, balance int) error

	// SettleRound stores the seated balances after a round and records it in the match history
	SettleRound(ctx context.Context, roomID string, result *teenpatti.RoundResult) error
}

// RoundPublisher announces finished rounds
type RoundPublisher interface {
	PublishRound(ctx context.Context, roomID string, result *teenpatti.RoundResult) error
}

// NotificationPreferences decides whether a player wants a notification
type NotificationPreferences interface {
	Allows(ctx context.Context, userID, kind string) (bool, error)
}

// Settings are the timings a dealer enforces around the game
type Settings struct {
	Table teenpatti.Options

	DisconnectGrace time.Duration
	ConsentWindow   time.Duration
	NextRoundDelay  time.Duration
	StartDelay      time.Duration
}

// Dependencies are the collaborators shared by every dealer
type Dependencies struct {
	Balances    BalanceStore
	Publisher   RoundPublisher
	Preferences NotificationPreferences
	Logger      logrus.FieldLogger
}

// storeTimeout bounds every collaborator call made from a run loop
const storeTimeout = 5 * time.Second

func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}
