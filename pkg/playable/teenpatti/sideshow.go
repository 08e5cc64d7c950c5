package teenpatti

// SideShowNotice describes a side show for observers
type SideShowNotice struct {
	FromUserID  string `json:"fromUserId"`
	ToUserID    string `json:"toUserId"`
	Accepted    bool   `json:"accepted"`
	LoserUserID string `json:"loserUserId,omitempty"`
}

// sideShowTarget returns the only player p may challenge, or nil if p cannot side show
// The target is the nearest preceding seat still in play, and they must have seen their cards.
func (g *Game) sideShowTarget(p *Participant) *Participant {
	if g.state != StatePlaying || !p.inPlay() || !p.hasSeen || !p.hasBet {
		return nil
	}

	if g.inPlayCount() <= 2 {
		return nil
	}

	_, idx := g.getParticipant(p.UserID)
	n := len(g.participants)
	for i := 1; i < n; i++ {
		prev := g.participants[((idx-i)%n+n)%n]
		if !prev.inPlay() {
			continue
		}

		if !prev.hasSeen {
			return nil
		}

		return prev
	}

	return nil
}

// RequestSideShow challenges the preceding player to a private comparison of hands
// The requester keeps the turn until the target answers.
func (g *Game) RequestSideShow(userID, targetUserID string) error {
	p, err := g.checkTurn(userID)
	if err != nil {
		return err
	}

	target := g.sideShowTarget(p)
	if target == nil {
		return g.newActionError(ErrSideShowNotAllowed, p, "")
	}

	if target.UserID != targetUserID {
		return g.newActionError(ErrSideShowNotAllowed, p, "you can only ask %s for a side show", target.DisplayName)
	}

	if target.pendingSideShow != nil {
		return g.newActionError(ErrSideShowNotAllowed, p, "a side show is already pending")
	}

	if p.sideShowAsked {
		return g.newActionError(ErrSideShowNotAllowed, p, "you already asked for a side show this turn")
	}

	// the target answers within the requester's turn, the deadline does not move
	p.consecutiveTimeouts = 0
	p.sideShowAsked = true
	target.pendingSideShow = &SideShowChallenge{
		FromUserID:       p.UserID,
		FromConnectionID: p.ConnectionID,
		Timestamp:        g.now(),
	}

	g.sendLogMessages(newLogMessageWithPlayers([]string{p.UserID, target.UserID}, "{} asked {} for a side show"))
	g.broadcast(Event{
		Name:   EventSideShowRequested,
		UserID: p.UserID,
		SideShow: &SideShowNotice{
			FromUserID: p.UserID,
			ToUserID:   target.UserID,
		},
	})

	return nil
}

// RespondToSideShow accepts or declines the side show pending against the player
func (g *Game) RespondToSideShow(userID string, accept bool) error {
	target, _ := g.getParticipant(userID)
	if target == nil {
		return ErrPlayerNotFound
	}

	if g.state != StatePlaying {
		return ErrNotPlaying
	}

	challenge := target.pendingSideShow
	if challenge == nil {
		return ErrNoPendingSideShow
	}

	requester, _ := g.getParticipant(challenge.FromUserID)
	if requester == nil || !requester.inPlay() || !target.inPlay() || g.currentParticipant() != requester {
		return ErrNoPendingSideShow
	}

	target.pendingSideShow = nil

	notice := &SideShowNotice{
		FromUserID: requester.UserID,
		ToUserID:   target.UserID,
		Accepted:   accept,
	}

	if !accept {
		g.sendLogMessages(newLogMessage(target.UserID, "{} declined the side show"))
		g.broadcast(Event{Name: EventSideShowResolved, UserID: target.UserID, SideShow: notice})
		return nil
	}

	g.timer.clear()

	// ties go against the challenger
	loser, winner := requester, target
	if CompareHands(requester.hand, target.hand) > 0 {
		loser, winner = target, requester
	}

	loser.folded = true
	loser.active = false
	notice.LoserUserID = loser.UserID

	g.sendLogMessages(newLogMessageWithPlayers([]string{winner.UserID, loser.UserID}, "{} won the side show against {}"))

	if g.inPlayCount() == 1 {
		g.resolveRound(winner, ReasonSideShow, requester.UserID)
		return nil
	}

	g.advanceTurn()
	g.broadcast(Event{Name: EventSideShowResolved, UserID: target.UserID, SideShow: notice})
	return nil
}

// cancelSideShowsFrom withdraws any side show p has asked for
func (g *Game) cancelSideShowsFrom(p *Participant) {
	for _, other := range g.participants {
		if other.pendingSideShow != nil && other.pendingSideShow.FromUserID == p.UserID {
			other.pendingSideShow = nil
		}
	}
}

func (g *Game) clearSideShows() {
	for _, p := range g.participants {
		p.pendingSideShow = nil
	}
}
