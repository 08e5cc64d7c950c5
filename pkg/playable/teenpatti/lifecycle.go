package teenpatti

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"teenpatti-server/internal/util"
	"teenpatti-server/pkg/deck"
)

// RemovalReason is why a player left their seat
type RemovalReason string

// removal reasons
const (
	RemovedExit                RemovalReason = "exit"
	RemovedDisconnect          RemovalReason = "disconnect"
	RemovedTurnTimeout         RemovalReason = "turn_timeout"
	RemovedStaleSession        RemovalReason = "stale_session"
	RemovedDeclined            RemovalReason = "declined"
	RemovedInsufficientBalance RemovalReason = "insufficient_balance"
)

// Departure is a player who left the room, with the balance they leave with
type Departure struct {
	UserID       string        `json:"userId"`
	ConnectionID string        `json:"-"`
	DisplayName  string        `json:"displayName"`
	Balance      int           `json:"-"`
	Reason       RemovalReason `json:"reason"`
}

// Join seats a player in the first free seat
// autoStart is true when the room is waiting and has enough players to start a round.
// Joining with a userID that is already seated reconnects the seat if it is in a running round,
// otherwise the old seat is replaced.
func (g *Game) Join(connID, userID, name string, balance int, avatar string) (autoStart bool, err error) {
	consent := ConsentReady
	if existing, _ := g.getParticipant(userID); existing != nil {
		if g.state == StatePlaying && existing.dealtIn {
			return false, g.ReconnectPlayer(userID, connID)
		}

		if status, ok := g.consent[userID]; ok {
			consent = status
		}

		dep, err := g.RemovePlayer(userID, RemovedStaleSession)
		if err != nil {
			return false, err
		}

		// the seat's balance is authoritative while seated
		balance = dep.Balance
	}

	if g.IsFull() {
		return false, ErrRoomFull
	}

	if balance < g.options.MinBalance {
		return false, fmt.Errorf("%w: need at least %d", ErrInsufficientBalance, g.options.MinBalance)
	}

	if name == "" {
		name = util.GetRandomName()
	}

	p := newParticipant(connID, userID, name, avatar, balance, g.freeSeat())

	idx := sort.Search(len(g.participants), func(i int) bool {
		return g.participants[i].Seat > p.Seat
	})

	g.participants = append(g.participants, nil)
	copy(g.participants[idx+1:], g.participants[idx:])
	g.participants[idx] = p

	if g.state == StatePlaying && idx <= g.turnIndex {
		g.turnIndex++
	}

	if g.consent != nil {
		g.consent[userID] = consent
	}

	g.logger.WithFields(logrus.Fields{
		"userId": userID,
		"seat":   p.Seat,
	}).Info("player joined")

	g.sendLogMessages(newLogMessage(userID, "{} sat down"))
	g.broadcast(Event{Name: EventPlayerJoined, UserID: userID})

	return g.state == StateWaiting && len(g.participants) >= g.options.MinPlayers, nil
}

func (g *Game) freeSeat() int {
	taken := make(map[int]bool, len(g.participants))
	for _, p := range g.participants {
		taken[p.Seat] = true
	}

	seat := 0
	for taken[seat] {
		seat++
	}

	return seat
}

// ReconnectPlayer points an existing seat at a new connection
func (g *Game) ReconnectPlayer(userID, connID string) error {
	p, _ := g.getParticipant(userID)
	if p == nil {
		return ErrPlayerNotFound
	}

	p.ConnectionID = connID
	p.connected = true

	g.logger.WithField("userId", userID).Info("player reconnected")
	g.broadcast(Event{Name: EventPlayerReconnected, UserID: userID})
	return nil
}

// DisconnectPlayer flags the seat as disconnected
// The seat is kept. Callers remove it with RemovePlayer once their grace period runs out.
func (g *Game) DisconnectPlayer(userID string) error {
	p, _ := g.getParticipant(userID)
	if p == nil {
		return ErrPlayerNotFound
	}

	p.connected = false
	g.broadcast(Event{Name: EventPlayerDisconnected, UserID: userID})
	return nil
}

// SeatConnectionID returns the connection currently bound to the user's seat
func (g *Game) SeatConnectionID(userID string) (string, bool) {
	p, _ := g.getParticipant(userID)
	if p == nil {
		return "", false
	}

	return p.ConnectionID, true
}

// RemovePlayer takes the player out of the room
// If that leaves one player contesting the pot, the round is resolved in their favor. If the room drops
// below the minimum number of players mid-round, the round is abandoned and the pot refunded.
func (g *Game) RemovePlayer(userID string, reason RemovalReason) (*Departure, error) {
	p, idx := g.getParticipant(userID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}

	playing := g.state == StatePlaying
	wasInPlay := playing && p.inPlay()
	wasTurn := playing && idx == g.turnIndex

	if wasTurn {
		g.timer.clear()
	}

	g.cancelSideShowsFrom(p)
	p.pendingSideShow = nil

	if wasInPlay {
		p.folded = true
		p.active = false
	}

	g.participants = append(g.participants[:idx], g.participants[idx+1:]...)
	if playing && idx < g.turnIndex {
		g.turnIndex--
	}

	delete(g.consent, userID)

	dep := &Departure{
		UserID:       p.UserID,
		ConnectionID: p.ConnectionID,
		DisplayName:  p.DisplayName,
		Balance:      p.balance,
		Reason:       reason,
	}

	g.logger.WithFields(logrus.Fields{
		"userId":  userID,
		"reason":  reason,
		"balance": p.balance,
	}).Info("player removed")

	g.sendLogMessages(newLogMessage(userID, "{} left the table"))

	// the turn is settled before anyone hears about the departure
	turnMoved := false
	if playing {
		switch {
		case wasInPlay && g.inPlayCount() == 1:
			roundReason := ReasonPlayerExit
			if reason == RemovedTurnTimeout {
				roundReason = ReasonTimeout
			}

			g.resolveRound(g.participants[g.nextInPlayIndex(0, true)], roundReason, userID)
		case len(g.participants) < g.options.MinPlayers:
			g.abandonRound()
		case wasTurn:
			g.turnIndex = g.nextInPlayIndex(idx, true)
			g.startTurn()
			turnMoved = true
		}
	}

	g.broadcast(Event{Name: EventPlayerLeft, UserID: userID, Departed: dep})
	if turnMoved {
		g.broadcast(Event{Name: EventTurnChanged, UserID: g.currentParticipant().UserID})
	}

	return dep, nil
}

// abandonRound returns the room to waiting without a result
// Every dealt player still seated gets their own bets back, and the chips of departed players are shared among them.
func (g *Game) abandonRound() {
	g.timer.clear()
	g.clearSideShows()

	var remaining []*Participant
	own := 0
	for _, p := range g.participants {
		if p.dealtIn {
			remaining = append(remaining, p)
			own += p.roundBet
		}
	}

	orphaned := g.pot - own
	for i, p := range remaining {
		refund := p.roundBet + orphaned/len(remaining)
		if i < orphaned%len(remaining) {
			refund++
		}

		p.balance += refund
	}

	if len(remaining) == 0 && g.pot > 0 {
		g.logger.WithField("pot", g.pot).Warn("abandoned round has nobody to refund")
	}

	g.logger.WithFields(logrus.Fields{
		"round": g.roundNumber,
		"pot":   g.pot,
	}).Info("round abandoned")

	for _, p := range g.participants {
		p.resetRound()
	}

	g.pot = 0
	g.stake = 0
	g.roster = nil
	g.state = StateWaiting

	g.sendLogMessages(newLogMessage("", "Not enough players, the round was called off and bets returned"))
	g.broadcast(Event{Name: EventRoundAbandoned})
}

// validateBalances removes every player who cannot pay the next boot
func (g *Game) validateBalances() []*Departure {
	var removed []*Departure
	for _, p := range append([]*Participant{}, g.participants...) {
		if p.balance >= g.options.Boot {
			continue
		}

		dep, err := g.RemovePlayer(p.UserID, RemovedInsufficientBalance)
		if err != nil {
			g.logger.WithError(err).WithField("userId", p.UserID).Error("could not remove player")
			continue
		}

		removed = append(removed, dep)
	}

	return removed
}

// StartGame shuffles, collects the boot and deals a new round
// It returns false without changing anything if a round cannot start.
func (g *Game) StartGame() bool {
	if g.state != StateWaiting || len(g.participants) < g.options.MinPlayers {
		return false
	}

	eligible := 0
	for _, p := range g.participants {
		if p.balance >= g.options.Boot {
			eligible++
		}
	}

	if eligible < 2 {
		return false
	}

	g.timer.clear()

	g.roundNumber++
	g.lastResult = nil
	g.consent = nil
	g.pot = 0
	g.raiseCount = 0
	g.stake = g.options.Boot
	g.roster = make([]*Participant, 0, eligible)

	g.deck = deck.New()
	g.deck.Shuffle(g.rng)

	for _, p := range g.participants {
		p.resetRound()
		if p.balance < g.options.Boot {
			continue
		}

		p.active = true
		p.dealtIn = true
		p.balance -= g.options.Boot
		p.roundBet = g.options.Boot
		g.pot += g.options.Boot
		g.roster = append(g.roster, p)
	}

	for i := 0; i < HandSize; i++ {
		for _, p := range g.roster {
			card, err := g.deck.Draw()
			if err != nil {
				// options validation guarantees enough cards for every seat
				panic(err)
			}

			p.hand = append(p.hand, card)
		}
	}

	g.state = StatePlaying
	g.turnIndex = g.nextInPlayIndex(0, true)

	g.logger.WithFields(logrus.Fields{
		"round":   g.roundNumber,
		"players": eligible,
		"deck":    g.deck.HashCode(),
	}).Info("round started")

	g.sendLogMessages(newLogMessage("", "Round %d started with a pot of ${%d}", g.roundNumber, g.pot))
	g.startTurn()
	g.broadcast(Event{Name: EventRoundStarted})

	return true
}

// StartNextRound removes players who cannot afford the boot and deals again if enough remain
func (g *Game) StartNextRound() (started bool, removed []*Departure, err error) {
	if g.state != StateRoundEnd {
		return false, nil, ErrNotRoundEnd
	}

	removed = g.validateBalances()

	g.lastResult = nil
	g.consent = nil
	g.state = StateWaiting

	if g.StartGame() {
		return true, removed, nil
	}

	for _, p := range g.participants {
		p.resetRound()
	}

	g.pot = 0
	g.stake = 0
	g.roster = nil

	g.broadcast(Event{Name: EventWaiting})
	return false, removed, nil
}
