package room

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"teenpatti-server/internal/metrics"
	"teenpatti-server/pkg/playable"
	"teenpatti-server/pkg/playable/teenpatti"
)

// Dealer is responsible for controlling the game in a room
// Every change to the game happens on the dealer's run loop.
type Dealer struct {
	pitBoss  *PitBoss
	roomID   string
	settings Settings
	deps     Dependencies
	log      logrus.FieldLogger

	clients map[*Client]bool
	lock    sync.RWMutex
	summary Summary

	// owned by the run loop
	game           *teenpatti.Game
	logMessages    []*playable.LogMessage
	graceTimers    map[string]*time.Timer
	schedule       *scheduler
	lastTurnUserID string

	execInRunLoop chan func()
	close         chan bool
	closeOnce     sync.Once
}

// NewDealer creates a new dealer object
// This is called from a blocking state, so it needs to return quickly
func NewDealer(pitBoss *PitBoss, roomID string, settings Settings, deps Dependencies) (*Dealer, error) {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}

	log := deps.Logger.WithField("roomId", roomID)
	game, err := teenpatti.NewGame(deps.Logger, roomID, settings.Table)
	if err != nil {
		return nil, err
	}

	d := &Dealer{
		pitBoss:       pitBoss,
		roomID:        roomID,
		settings:      settings,
		deps:          deps,
		log:           log,
		clients:       make(map[*Client]bool),
		game:          game,
		graceTimers:   make(map[string]*time.Timer),
		execInRunLoop: make(chan func(), 256),
		close:         make(chan bool),
	}

	d.schedule = &scheduler{dispatch: d.dispatch}
	game.Dispatch = d.dispatch
	game.BroadcastFn = d.onEvent
	d.updateSummary()

	return d, nil
}

// RoomID returns the room the dealer is running
func (d *Dealer) RoomID() string {
	return d.roomID
}

// Clients will return a slice of connected (at the time) clients
func (d *Dealer) Clients() []*Client {
	d.lock.RLock()
	defer d.lock.RUnlock()

	clients := make([]*Client, 0, len(d.clients))
	for client := range d.clients {
		clients = append(clients, client)
	}

	return clients
}

// ClientCount returns the number of connected clients
func (d *Dealer) ClientCount() int {
	d.lock.RLock()
	defer d.lock.RUnlock()

	return len(d.clients)
}

// Summary returns the lobby summary as of the last change
func (d *Dealer) Summary() Summary {
	d.lock.RLock()
	defer d.lock.RUnlock()

	s := d.summary
	s.Watching = len(d.clients)
	return s
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	go d.runLoop()
}

func (d *Dealer) runLoop() {
	d.log.Debug("creating dealer run loop")
	metrics.Rooms.Inc()
	defer metrics.Rooms.Dec()

	for {
		select {
		case fn := <-d.execInRunLoop:
			fn()
		case messages := <-d.game.LogChan():
			d.addLogMessages(messages)
		case <-d.close:
			d.log.Debug("terminating dealer run loop")
			d.shutdown()
			return
		}
	}
}

// dispatch queues fn on the run loop
// It is safe to call from any goroutine except the run loop itself.
func (d *Dealer) dispatch(fn func()) {
	select {
	case d.execInRunLoop <- fn:
	case <-d.close:
	}
}

// AddClient adds a client
// This method must return quickly
func (d *Dealer) AddClient(client *Client) {
	d.lock.Lock()
	client.dealer = d
	d.clients[client] = true
	d.lock.Unlock()

	d.dispatch(func() {
		d.seatClient(client)
	})
}

// RemoveClient removes a client
// This method must return quickly
func (d *Dealer) RemoveClient(client *Client) {
	d.lock.Lock()
	delete(d.clients, client)
	d.lock.Unlock()

	d.dispatch(func() {
		d.clientGone(client)
	})
}

// EndShift is called when the dealer is no longer needed
func (d *Dealer) EndShift() {
	d.closeOnce.Do(func() {
		close(d.close)
	})
}

// NOTE: must only be called from the run loop
func (d *Dealer) shutdown() {
	d.schedule.cancel()
	for userID, timer := range d.graceTimers {
		timer.Stop()
		delete(d.graceTimers, userID)
	}

	d.game.Close()
}

// seatClient gives the client a seat, or reconnects it to the one it already holds
// NOTE: must only be called from the run loop
func (d *Dealer) seatClient(client *Client) {
	userID := client.UserID()
	d.cancelGrace(userID)

	log := d.log.WithField("client", client.String())

	if connID, _ := d.game.SeatConnectionID(userID); connID == client.ConnectionID() {
		d.sendState(client)
		return
	}

	balance, seated := d.game.Balance(userID)
	if !seated {
		ctx, cancel := storeContext()
		var err error
		balance, err = d.deps.Balances.LoadBalance(ctx, userID)
		cancel()

		if err != nil {
			log.WithError(err).Error("could not load balance")
			client.Send(newErrorResponse("", errors.New("could not load your balance")))
			d.sendState(client)
			return
		}
	}

	d.supersede(client)

	autoStart, err := d.game.Join(client.ConnectionID(), userID, client.player.DisplayName, balance, client.player.Avatar)
	if err != nil {
		log.WithError(err).Info("client is watching")
		client.Send(newErrorResponse("", err))
		d.sendState(client)
		return
	}

	if autoStart {
		d.schedule.after(d.settings.StartDelay, d.startRound)
	}

	d.sendState(client)
}

// supersede kicks older connections of the same user
// NOTE: must only be called from the run loop
func (d *Dealer) supersede(client *Client) {
	for _, other := range d.Clients() {
		if other != client && other.UserID() == client.UserID() {
			other.Kick("signed in from another connection")
		}
	}
}

// clientGone starts the grace period for a dropped seat
// NOTE: must only be called from the run loop
func (d *Dealer) clientGone(client *Client) {
	userID := client.UserID()
	connID, seated := d.game.SeatConnectionID(userID)
	if !seated || connID != client.ConnectionID() {
		d.checkIdle()
		return
	}

	if err := d.game.DisconnectPlayer(userID); err != nil {
		d.log.WithError(err).WithField("userId", userID).Error("could not disconnect player")
	}

	if d.settings.DisconnectGrace <= 0 {
		d.removeDisconnected(userID, connID)
		return
	}

	d.cancelGrace(userID)
	d.graceTimers[userID] = time.AfterFunc(d.settings.DisconnectGrace, func() {
		d.dispatch(func() {
			d.removeDisconnected(userID, connID)
		})
	})
}

// removeDisconnected removes the seat if nobody reconnected to it
// NOTE: must only be called from the run loop
func (d *Dealer) removeDisconnected(userID, connID string) {
	delete(d.graceTimers, userID)

	if current, seated := d.game.SeatConnectionID(userID); seated && current == connID {
		if _, err := d.game.RemovePlayer(userID, teenpatti.RemovedDisconnect); err != nil {
			d.log.WithError(err).WithField("userId", userID).Error("could not remove player")
		}
	}

	d.checkIdle()
}

func (d *Dealer) cancelGrace(userID string) {
	if timer, ok := d.graceTimers[userID]; ok {
		timer.Stop()
		delete(d.graceTimers, userID)
	}
}

// checkIdle asks the pit boss to end the shift once nobody is connected or seated
// NOTE: must only be called from the run loop
func (d *Dealer) checkIdle() {
	if d.ClientCount() > 0 || d.game.SeatedCount() > 0 || len(d.graceTimers) > 0 {
		return
	}

	if d.pitBoss != nil {
		d.pitBoss.dealerIdle(d)
	}
}

// ReceivedMessage is called when a client sends a message to the server
func (d *Dealer) ReceivedMessage(c *Client, msg *playable.PayloadIn) {
	d.dispatch(func() {
		d.handleMessage(c, msg)
	})
}

// NOTE: must only be called from the run loop
func (d *Dealer) handleMessage(c *Client, msg *playable.PayloadIn) {
	switch msg.Action {
	case "join":
		d.seatClient(c)
		return
	case "state":
		d.sendState(c)
		return
	}

	res, err := d.game.Action(c.UserID(), msg)
	if err != nil {
		metrics.RejectedActions.WithLabelValues(msg.Action).Inc()
		d.log.WithError(err).WithField("client", c.String()).WithField("action", msg.Action).Debug("action rejected")
		c.Send(newErrorResponse(msg.Context, err))
		return
	}

	if res != nil {
		res.Context = msg.Context
		c.Send(res)
	}

	if d.game.ConsentOpen() && d.game.AllReady() {
		d.finishConsent()
	}
}

// sendState sends the public state, and the private state if the client is seated, to one client
// NOTE: must only be called from the run loop
func (d *Dealer) sendState(c *Client) {
	c.Send(&playable.Response{
		Key:   "room",
		Value: d.roomID,
		Data:  d.game.PublicState(),
	})

	if connID, seated := d.game.SeatConnectionID(c.UserID()); seated && connID == c.ConnectionID() {
		d.sendPrivateState(c)
	}

	if len(d.logMessages) > 0 {
		c.Send(newLogsResponse(d.logMessages))
	}
}

func (d *Dealer) sendPrivateState(c *Client) {
	gs, err := d.game.GetPlayerState(c.UserID())
	if err != nil {
		d.log.WithError(err).WithField("client", c.String()).Error("could not get player state")
		return
	}

	c.Send(gs)
}

// seatedClient returns the client bound to the user's seat
func (d *Dealer) seatedClient(userID string) *Client {
	connID, seated := d.game.SeatConnectionID(userID)
	if !seated {
		return nil
	}

	for _, c := range d.Clients() {
		if c.ConnectionID() == connID {
			return c
		}
	}

	return nil
}

func (d *Dealer) updateSummary() {
	opts := d.game.Options()

	d.lock.Lock()
	d.summary = Summary{
		RoomID:     d.roomID,
		State:      d.game.State(),
		Seated:     d.game.SeatedCount(),
		MaxPlayers: opts.MaxPlayers,
		Boot:       opts.Boot,
	}
	d.lock.Unlock()
}
