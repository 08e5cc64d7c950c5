package teenpatti

// ConsentStatus is a player's answer to "play the next round?"
type ConsentStatus string

// consent statuses
const (
	ConsentPending ConsentStatus = "pending"
	ConsentReady   ConsentStatus = "ready"
)

// BeginConsent asks every seated player whether they want to play the next round
func (g *Game) BeginConsent() error {
	if g.state != StateRoundEnd {
		return ErrNotRoundEnd
	}

	g.consent = make(map[string]ConsentStatus, len(g.participants))
	for _, p := range g.participants {
		g.consent[p.UserID] = ConsentPending
	}

	g.broadcast(Event{Name: EventConsentRequested})
	return nil
}

// ConsentOpen returns true while the consent phase is running
func (g *Game) ConsentOpen() bool {
	return g.consent != nil
}

// RespondConsent records a player's answer
// Declining removes the player from the room.
func (g *Game) RespondConsent(userID string, accept bool) error {
	if g.consent == nil {
		return ErrNoConsentPhase
	}

	if p, _ := g.getParticipant(userID); p == nil {
		return ErrPlayerNotFound
	}

	if !accept {
		_, err := g.RemovePlayer(userID, RemovedDeclined)
		return err
	}

	g.consent[userID] = ConsentReady
	g.broadcast(Event{Name: EventConsentUpdated, UserID: userID})
	return nil
}

// AllReady returns true if every seated player has agreed to play on
func (g *Game) AllReady() bool {
	if g.consent == nil || len(g.participants) == 0 {
		return false
	}

	for _, p := range g.participants {
		if g.consent[p.UserID] != ConsentReady {
			return false
		}
	}

	return true
}

// ExpireConsent marks every player who has not answered as ready
func (g *Game) ExpireConsent() {
	if g.consent == nil {
		return
	}

	for userID, status := range g.consent {
		if status == ConsentPending {
			g.consent[userID] = ConsentReady
		}
	}

	g.broadcast(Event{Name: EventConsentUpdated})
}
