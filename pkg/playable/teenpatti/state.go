package teenpatti

import (
	"time"

	"teenpatti-server/pkg/deck"
)

// PublicParticipant is what everybody can see about a seat
type PublicParticipant struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
	Seat        int    `json:"seat"`
	Active      bool   `json:"active"`
	Folded      bool   `json:"folded"`
	Seen        bool   `json:"seen"`
	DealtIn     bool   `json:"dealtIn"`
	RoundBet    int    `json:"roundBet"`
	CardCount   int    `json:"cardCount"`
	Connected   bool   `json:"connected"`
}

// PublicState is the sanitized state of the room
// It never includes another seat's hand or balance.
type PublicState struct {
	RoomID          string                   `json:"roomId"`
	State           State                    `json:"state"`
	RoundNumber     int                      `json:"roundNumber"`
	Boot            int                      `json:"boot"`
	Pot             int                      `json:"pot"`
	Stake           int                      `json:"stake"`
	RaiseCount      int                      `json:"raiseCount"`
	TurnUserID      string                   `json:"turnUserId,omitempty"`
	TurnDeadline    *time.Time               `json:"turnDeadline,omitempty"`
	MinPlayers      int                      `json:"minPlayers"`
	MaxPlayers      int                      `json:"maxPlayers"`
	Participants    []*PublicParticipant     `json:"participants"`
	LastRoundResult *RoundResult             `json:"lastRoundResult,omitempty"`
	Consent         map[string]ConsentStatus `json:"consent,omitempty"`
}

// PrivateState is what only the seat's own player can see
type PrivateState struct {
	UserID          string             `json:"userId"`
	Balance         int                `json:"balance"`
	Seen            bool               `json:"seen"`
	Hand            []deck.Card        `json:"hand,omitempty"`
	HandName        string             `json:"handName,omitempty"`
	YourTurn        bool               `json:"yourTurn"`
	BetOptions      *BetOptions        `json:"betOptions,omitempty"`
	PendingSideShow *SideShowChallenge `json:"pendingSideShow,omitempty"`
}

// PublicState returns the state of the room that can be sent to every observer
func (g *Game) PublicState() *PublicState {
	ps := &PublicState{
		RoomID:          g.roomID,
		State:           g.state,
		RoundNumber:     g.roundNumber,
		Boot:            g.options.Boot,
		Pot:             g.pot,
		Stake:           g.stake,
		RaiseCount:      g.raiseCount,
		MinPlayers:      g.options.MinPlayers,
		MaxPlayers:      g.options.MaxPlayers,
		Participants:    make([]*PublicParticipant, len(g.participants)),
		LastRoundResult: g.lastResult,
	}

	if cur := g.currentParticipant(); cur != nil {
		ps.TurnUserID = cur.UserID
		if deadline := g.timer.deadline(); !deadline.IsZero() {
			ps.TurnDeadline = &deadline
		}
	}

	if g.consent != nil {
		ps.Consent = make(map[string]ConsentStatus, len(g.consent))
		for userID, status := range g.consent {
			ps.Consent[userID] = status
		}
	}

	for i, p := range g.participants {
		ps.Participants[i] = &PublicParticipant{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Avatar:      p.Avatar,
			Seat:        p.Seat,
			Active:      p.active,
			Folded:      p.folded,
			Seen:        p.hasSeen,
			DealtIn:     p.dealtIn,
			RoundBet:    p.roundBet,
			CardCount:   len(p.hand),
			Connected:   p.connected,
		}
	}

	return ps
}

// PrivateState returns the state only the player may see
func (g *Game) PrivateState(userID string) (*PrivateState, error) {
	p, _ := g.getParticipant(userID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}

	ps := &PrivateState{
		UserID:          p.UserID,
		Balance:         p.balance,
		Seen:            p.hasSeen,
		PendingSideShow: p.pendingSideShow,
	}

	if p.hasSeen && len(p.hand) == HandSize {
		ps.Hand = p.Hand()
		ps.HandName = HandName(p.hand)
	}

	if g.currentParticipant() == p {
		ps.YourTurn = true
		ps.BetOptions = g.betOptions(p)
	}

	return ps, nil
}

// TurnUserID returns the user whose turn it is, or an empty string outside of a round
func (g *Game) TurnUserID() string {
	if p := g.currentParticipant(); p != nil {
		return p.UserID
	}

	return ""
}

// Balance returns the seated player's balance
func (g *Game) Balance(userID string) (int, bool) {
	p, _ := g.getParticipant(userID)
	if p == nil {
		return 0, false
	}

	return p.balance, true
}
