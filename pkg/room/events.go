package room

import (
	"github.com/sirupsen/logrus"
	"teenpatti-server/internal/metrics"
	"teenpatti-server/pkg/playable/teenpatti"
)

// onEvent is the game's broadcast hook
// The game calls it synchronously, so this always runs on the run loop.
func (d *Dealer) onEvent(ev teenpatti.Event) {
	switch ev.Name {
	case teenpatti.EventPlayerJoined:
		metrics.SeatedPlayers.Inc()
	case teenpatti.EventPlayerLeft:
		metrics.SeatedPlayers.Dec()
		d.playerLeft(ev.Departed)
	case teenpatti.EventRoundEnded:
		d.roundEnded(ev.Result)
	case teenpatti.EventRoundAbandoned:
		metrics.Rounds.WithLabelValues("abandoned").Inc()
		d.schedule.cancel()
	}

	d.updateSummary()

	res := newEventResponse(ev)
	for _, c := range d.Clients() {
		c.Send(res)
		if connID, seated := d.game.SeatConnectionID(c.UserID()); seated && connID == c.ConnectionID() {
			d.sendPrivateState(c)
		}
	}

	d.notifyTurn()
}

// playerLeft stores the departing balance and tells the table
// NOTE: must only be called from the run loop
func (d *Dealer) playerLeft(dep *teenpatti.Departure) {
	if dep == nil {
		return
	}

	metrics.Departures.WithLabelValues(string(dep.Reason)).Inc()
	d.cancelGrace(dep.UserID)

	// a replaced session keeps its balance in the new seat
	if dep.Reason == teenpatti.RemovedStaleSession {
		return
	}

	log := d.log.WithFields(logrus.Fields{
		"userId":  dep.UserID,
		"reason":  dep.Reason,
		"balance": dep.Balance,
	})

	ctx, cancel := storeContext()
	err := d.deps.Balances.SaveBalance(ctx, d.roomID, dep.UserID, dep.Balance)
	cancel()
	if err != nil {
		log.WithError(err).Error("could not save balance")
	}

	for _, c := range d.Clients() {
		if c.UserID() == dep.UserID {
			continue
		}

		d.notify(c, notifyOpponentLeft, notification{
			Kind:   notifyOpponentLeft,
			RoomID: d.roomID,
			UserID: dep.UserID,
			Name:   dep.DisplayName,
		})
	}
}

// roundEnded settles and publishes the round, then schedules the consent phase
// NOTE: must only be called from the run loop
func (d *Dealer) roundEnded(result *teenpatti.RoundResult) {
	if result == nil {
		return
	}

	metrics.Rounds.WithLabelValues(string(result.Reason)).Inc()

	log := d.log.WithFields(logrus.Fields{
		"round":  result.RoundNumber,
		"winner": result.WinnerUserID,
	})

	ctx, cancel := storeContext()
	defer cancel()

	if err := d.deps.Balances.SettleRound(ctx, d.roomID, result); err != nil {
		log.WithError(err).Error("could not settle round")
	}

	if d.deps.Publisher != nil {
		if err := d.deps.Publisher.PublishRound(ctx, d.roomID, result); err != nil {
			log.WithError(err).Error("could not publish round")
		}
	}

	d.schedule.after(d.settings.NextRoundDelay, d.beginConsent)
}

// notifyTurn tells the player whose turn it is, once per turn
// NOTE: must only be called from the run loop
func (d *Dealer) notifyTurn() {
	turn := d.game.TurnUserID()
	if turn == d.lastTurnUserID {
		return
	}

	d.lastTurnUserID = turn
	if turn == "" {
		return
	}

	c := d.seatedClient(turn)
	if c == nil {
		return
	}

	d.notify(c, notifyYourTurn, notification{
		Kind:   notifyYourTurn,
		RoomID: d.roomID,
		UserID: turn,
	})
}

// notify sends n to the client unless they opted out of kind
func (d *Dealer) notify(c *Client, kind string, n notification) {
	if d.deps.Preferences != nil {
		ctx, cancel := storeContext()
		allowed, err := d.deps.Preferences.Allows(ctx, c.UserID(), kind)
		cancel()

		if err != nil {
			d.log.WithError(err).WithField("userId", c.UserID()).Warn("could not load notification preferences")
			return
		}

		if !allowed {
			return
		}
	}

	c.Send(newNotificationResponse(n))
}
