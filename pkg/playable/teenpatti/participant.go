package teenpatti

import (
	"time"

	"teenpatti-server/pkg/deck"
)

// SideShowChallenge is a pending side show request waiting on its target
type SideShowChallenge struct {
	FromUserID       string    `json:"fromUserId"`
	FromConnectionID string    `json:"-"`
	Timestamp        time.Time `json:"timestamp"`
}

// Participant is a seated player in the room
type Participant struct {
	ConnectionID string
	UserID       string
	DisplayName  string
	Avatar       string
	Seat         int

	hand     []deck.Card
	folded   bool
	active   bool
	balance  int
	roundBet int
	hasSeen  bool

	// hasBet is true once the player has voluntarily bet this round (the boot does not count)
	hasBet bool

	// dealtIn is true if the player was dealt cards this round
	dealtIn   bool
	connected bool

	consecutiveTimeouts int
	pendingSideShow     *SideShowChallenge

	// sideShowAsked is true once the player has asked for a side show during their current turn
	sideShowAsked bool
}

func newParticipant(connID, userID, name, avatar string, balance, seat int) *Participant {
	return &Participant{
		ConnectionID: connID,
		UserID:       userID,
		DisplayName:  name,
		Avatar:       avatar,
		Seat:         seat,
		balance:      balance,
		connected:    true,
	}
}

// Balance returns the player's chips
func (p *Participant) Balance() int {
	return p.balance
}

// Hand returns a copy of the participant's hand
func (p *Participant) Hand() []deck.Card {
	return append([]deck.Card{}, p.hand...)
}

// inPlay is true if the player is still contesting the pot
func (p *Participant) inPlay() bool {
	return p.active && !p.folded
}

func (p *Participant) resetRound() {
	p.hand = nil
	p.folded = false
	p.active = false
	p.roundBet = 0
	p.hasSeen = false
	p.hasBet = false
	p.dealtIn = false
	p.pendingSideShow = nil
	p.sideShowAsked = false
}
