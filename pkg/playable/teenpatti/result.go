package teenpatti

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"teenpatti-server/pkg/deck"
)

// Reason is why a round ended
type Reason string

// round end reasons
const (
	ReasonFold       Reason = "fold"
	ReasonShow       Reason = "show"
	ReasonSideShow   Reason = "side_show"
	ReasonPlayerExit Reason = "player_exit"
	ReasonTimeout    Reason = "timeout"
)

// Reveal is a player's hand shown after the round
type Reveal struct {
	UserID      string      `json:"userId"`
	DisplayName string      `json:"displayName"`
	Cards       []deck.Card `json:"cards"`
	HandName    string      `json:"handName"`
	Folded      bool        `json:"folded"`
	Winner      bool        `json:"winner"`
	Bet         int         `json:"bet"`
}

// RoundResult is produced once per round by the resolution step
type RoundResult struct {
	RoundNumber   int       `json:"roundNumber"`
	WinnerUserID  string    `json:"winnerUserId"`
	WinnerName    string    `json:"winnerName"`
	Reason        Reason    `json:"reason"`
	Pot           int       `json:"pot"`
	Rake          int       `json:"rake"`
	Won           int       `json:"won"`
	Timestamp     time.Time `json:"timestamp"`
	CausingUserID string    `json:"causingUserId,omitempty"`
	Reveal        []Reveal  `json:"reveal"`

	// Balances holds every seated player's balance after the payout
	Balances map[string]int `json:"-"`
}

// rakeOf returns the house share of the pot, rounded down
func rakeOf(pot int, fraction float64) int {
	// 100 * 0.29 is 28.999999999999996
	return int(math.Floor(float64(pot)*fraction + 1e-9))
}

// resolveRound pays the pot to the winner and records the result
func (g *Game) resolveRound(winner *Participant, reason Reason, causingUserID string) {
	g.timer.clear()
	g.clearSideShows()

	rake := rakeOf(g.pot, g.options.Rake)
	won := g.pot - rake
	winner.balance += won

	result := &RoundResult{
		RoundNumber:   g.roundNumber,
		WinnerUserID:  winner.UserID,
		WinnerName:    winner.DisplayName,
		Reason:        reason,
		Pot:           g.pot,
		Rake:          rake,
		Won:           won,
		Timestamp:     g.now(),
		CausingUserID: causingUserID,
		Reveal:        make([]Reveal, 0, len(g.roster)),
		Balances:      make(map[string]int, len(g.participants)),
	}

	for _, p := range g.roster {
		reveal := Reveal{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Cards:       p.Hand(),
			Folded:      p.folded,
			Winner:      p == winner,
			Bet:         p.roundBet,
		}

		if len(p.hand) == HandSize {
			reveal.HandName = HandName(p.hand)
		}

		result.Reveal = append(result.Reveal, reveal)
	}

	for _, p := range g.participants {
		result.Balances[p.UserID] = p.balance
	}

	g.state = StateRoundEnd
	g.lastResult = result

	g.logger.WithFields(logrus.Fields{
		"round":  g.roundNumber,
		"winner": winner.UserID,
		"reason": reason,
		"pot":    g.pot,
		"rake":   rake,
	}).Info("round resolved")

	if len(winner.hand) == HandSize && reason == ReasonShow {
		g.sendLogMessages(newLogMessage(winner.UserID, "{} wins ${%d} with %s", won, HandName(winner.hand)))
	} else {
		g.sendLogMessages(newLogMessage(winner.UserID, "{} wins ${%d}", won))
	}

	g.broadcast(Event{Name: EventRoundEnded, UserID: winner.UserID, Result: result})
}
