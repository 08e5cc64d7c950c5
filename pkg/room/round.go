package room

import (
	"github.com/sirupsen/logrus"
	"teenpatti-server/pkg/playable/teenpatti"
)

// startRound deals a round if the room is still waiting for one
// NOTE: must only be called from the run loop
func (d *Dealer) startRound() {
	if d.game.State() != teenpatti.StateWaiting {
		return
	}

	if !d.game.StartGame() {
		d.log.Debug("not enough players to start a round")
	}
}

// beginConsent asks the table whether to play on
// NOTE: must only be called from the run loop
func (d *Dealer) beginConsent() {
	if err := d.game.BeginConsent(); err != nil {
		d.log.WithError(err).Warn("could not begin consent")
		return
	}

	if d.game.AllReady() {
		d.finishConsent()
		return
	}

	d.schedule.after(d.settings.ConsentWindow, d.finishConsent)
}

// finishConsent closes the consent phase and deals the next round if enough players remain
// NOTE: must only be called from the run loop
func (d *Dealer) finishConsent() {
	d.schedule.cancel()
	if d.game.State() != teenpatti.StateRoundEnd {
		return
	}

	d.game.ExpireConsent()
	started, removed, err := d.game.StartNextRound()
	if err != nil {
		d.log.WithError(err).Error("could not start next round")
		return
	}

	d.log.WithFields(logrus.Fields{
		"started": started,
		"removed": len(removed),
	}).Debug("consent finished")
}
