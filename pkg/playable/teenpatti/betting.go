package teenpatti

// BetOptions are the legal wagers for a player at this moment
type BetOptions struct {
	Chaal   int `json:"chaal"`
	Raise2x int `json:"raise2x,omitempty"`
	Raise4x int `json:"raise4x,omitempty"`
	MinBet  int `json:"minBet"`
	MaxBet  int `json:"maxBet"`

	CanShow  bool `json:"canShow"`
	ShowCost int  `json:"showCost,omitempty"`

	CanSideShow          bool   `json:"canSideShow"`
	SideShowTargetUserID string `json:"sideShowTargetUserId,omitempty"`

	// AllInAmount is set when the player cannot afford the chaal, it is then the only legal bet
	AllInAmount int `json:"allInAmount,omitempty"`
}

// multiplier is 2 for a player who has seen their cards while someone still in play is blind
func (g *Game) multiplier(p *Participant) int {
	if !p.hasSeen {
		return 1
	}

	for _, other := range g.participants {
		if other != p && other.inPlay() && !other.hasSeen {
			return 2
		}
	}

	return 1
}

func (g *Game) betOptions(p *Participant) *BetOptions {
	chaal := g.stake * g.multiplier(p)
	opts := &BetOptions{Chaal: chaal}

	if p.balance < chaal {
		opts.AllInAmount = p.balance
		opts.MinBet = p.balance
		opts.MaxBet = p.balance
	} else {
		maxBet := p.balance
		if g.options.BetCeiling > 0 {
			ceiling := g.options.BetCeiling
			if ceiling < chaal {
				ceiling = chaal
			}

			if ceiling < maxBet {
				maxBet = ceiling
			}
		}

		opts.MinBet = chaal
		opts.MaxBet = maxBet

		if chaal*2 <= maxBet {
			opts.Raise2x = chaal * 2
		}

		if chaal*4 <= maxBet {
			opts.Raise4x = chaal * 4
		}
	}

	if g.inPlayCount() == 2 && p.hasBet {
		opts.CanShow = true
		opts.ShowCost = chaal
		if p.balance < chaal {
			opts.ShowCost = p.balance
		}
	}

	if target := g.sideShowTarget(p); target != nil && !p.sideShowAsked {
		opts.CanSideShow = true
		opts.SideShowTargetUserID = target.UserID
	}

	return opts
}

// GetBetOptions returns the legal wagers for the player
func (g *Game) GetBetOptions(userID string) (*BetOptions, error) {
	p, _ := g.getParticipant(userID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}

	if g.state != StatePlaying {
		return nil, ErrNotPlaying
	}

	if !p.inPlay() {
		return nil, ErrNotInRound
	}

	return g.betOptions(p), nil
}

// checkTurn returns the participant if they can act right now
func (g *Game) checkTurn(userID string) (*Participant, error) {
	p, _ := g.getParticipant(userID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}

	if g.state != StatePlaying {
		return nil, ErrNotPlaying
	}

	if !p.inPlay() {
		return nil, ErrNotInRound
	}

	if g.currentParticipant() != p {
		return nil, g.newActionError(ErrNotYourTurn, p, "")
	}

	return p, nil
}

// PlaceBet places a chaal, raise or all-in bet for the player whose turn it is
func (g *Game) PlaceBet(userID string, amount int) error {
	p, err := g.checkTurn(userID)
	if err != nil {
		g.logger.WithError(err).WithField("userId", userID).Debug("bet rejected")
		return err
	}

	if err := g.placeBet(p, amount); err != nil {
		g.logger.WithError(err).WithField("userId", userID).Debug("bet rejected")
		return err
	}

	p.consecutiveTimeouts = 0
	return nil
}

func (g *Game) placeBet(p *Participant, amount int) error {
	opts := g.betOptions(p)

	if amount <= 0 || amount > p.balance {
		return g.newActionError(ErrInvalidAmount, p, "bet must be between %d and %d", opts.MinBet, opts.MaxBet)
	}

	if opts.AllInAmount > 0 {
		if amount != opts.AllInAmount {
			return g.newActionError(ErrInvalidAmount, p, "you can only go all-in for %d", opts.AllInAmount)
		}
	} else if amount < opts.MinBet || amount > opts.MaxBet {
		return g.newActionError(ErrInvalidAmount, p, "bet must be between %d and %d", opts.MinBet, opts.MaxBet)
	}

	g.cancelSideShowsFrom(p)

	mult := g.multiplier(p)
	p.balance -= amount
	p.roundBet += amount
	p.hasBet = true
	g.pot += amount

	if amount > opts.Chaal {
		g.raiseCount++
	}

	if normalized := amount / mult; normalized > g.stake {
		g.stake = normalized
	}

	switch {
	case opts.AllInAmount > 0:
		g.sendLogMessages(newLogMessage(p.UserID, "{} is all-in for ${%d}", amount))
	case amount > opts.Chaal:
		g.sendLogMessages(newLogMessage(p.UserID, "{} raised to ${%d}", amount))
	default:
		g.sendLogMessages(newLogMessage(p.UserID, "{} paid chaal of ${%d}", amount))
	}

	g.advanceTurn()
	g.broadcast(Event{Name: EventBetPlaced, UserID: p.UserID})
	return nil
}

// SeeCards lets a blind player look at their hand
// Seeing does not consume the turn.
func (g *Game) SeeCards(userID string) error {
	p, _ := g.getParticipant(userID)
	if p == nil {
		return ErrPlayerNotFound
	}

	if g.state != StatePlaying {
		return ErrNotPlaying
	}

	if !p.inPlay() {
		return ErrNotInRound
	}

	if p.hasSeen {
		return nil
	}

	p.hasSeen = true
	g.sendLogMessages(newLogMessage(p.UserID, "{} looked at their cards"))
	g.broadcast(Event{Name: EventCardsSeen, UserID: p.UserID})
	return nil
}

// Fold folds the hand of the player whose turn it is
func (g *Game) Fold(userID string) error {
	p, err := g.checkTurn(userID)
	if err != nil {
		return err
	}

	p.consecutiveTimeouts = 0
	g.fold(p, ReasonFold)
	return nil
}

// fold removes p from the pot, resolving the round with reason if one player is left
func (g *Game) fold(p *Participant, reason Reason) {
	g.cancelSideShowsFrom(p)
	p.pendingSideShow = nil
	p.folded = true
	p.active = false

	g.sendLogMessages(newLogMessage(p.UserID, "{} folded"))

	if g.inPlayCount() == 1 {
		g.resolveRound(g.participants[g.nextInPlayIndex(0, true)], reason, p.UserID)
		return
	}

	g.advanceTurn()
	g.broadcast(Event{Name: EventFolded, UserID: p.UserID})
}

// Show pays for a showdown between the last two players
func (g *Game) Show(userID string) error {
	p, err := g.checkTurn(userID)
	if err != nil {
		return err
	}

	p.consecutiveTimeouts = 0
	return g.show(p)
}

func (g *Game) show(p *Participant) error {
	opts := g.betOptions(p)
	if !opts.CanShow {
		return g.newActionError(ErrShowNotAllowed, p, "")
	}

	g.cancelSideShowsFrom(p)

	p.balance -= opts.ShowCost
	p.roundBet += opts.ShowCost
	p.hasBet = true
	g.pot += opts.ShowCost

	g.sendLogMessages(newLogMessage(p.UserID, "{} asked for a show for ${%d}", opts.ShowCost))

	// first maximal hand in seat order wins
	var winner *Participant
	var best HandEvaluation
	for _, other := range g.participants {
		if !other.inPlay() {
			continue
		}

		eval := Evaluate(other.hand)
		if winner == nil || Compare(eval, best) > 0 {
			winner = other
			best = eval
		}
	}

	g.resolveRound(winner, ReasonShow, p.UserID)
	return nil
}

// expireTurn is called when the turn timer fires for userID
func (g *Game) expireTurn(userID string) {
	p := g.currentParticipant()
	if p == nil || p.UserID != userID || !p.inPlay() {
		return
	}

	p.consecutiveTimeouts++
	g.clearSideShows()

	log := g.logger.WithField("userId", userID)
	log.WithField("timeouts", p.consecutiveTimeouts).Info("turn timed out")
	g.sendLogMessages(newLogMessage(p.UserID, "{} ran out of time"))
	g.broadcast(Event{Name: EventTurnTimeout, UserID: userID})

	if limit := g.options.MaxConsecutiveTimeouts; limit > 0 && p.consecutiveTimeouts >= limit {
		if _, err := g.RemovePlayer(userID, RemovedTurnTimeout); err != nil {
			log.WithError(err).Error("could not remove player after repeated timeouts")
		}

		return
	}

	opts := g.betOptions(p)

	var err error
	switch {
	case p.balance >= opts.Chaal:
		err = g.placeBet(p, opts.Chaal)
	case opts.AllInAmount > 0:
		err = g.placeBet(p, opts.AllInAmount)
	case opts.CanShow && opts.ShowCost == 0:
		err = g.show(p)
	default:
		g.fold(p, ReasonTimeout)
	}

	if err != nil {
		log.WithError(err).Error("automatic action failed, folding")
		g.fold(p, ReasonTimeout)
	}
}
