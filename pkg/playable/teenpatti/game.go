package teenpatti

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"teenpatti-server/internal/rng"
	"teenpatti-server/pkg/deck"
	"teenpatti-server/pkg/playable"
)

// State is the state of the room's session
type State int

const (
	// StateWaiting is when the room is open and no round is running
	StateWaiting State = iota
	// StatePlaying is when cards are dealt and betting is in progress
	StatePlaying
	// StateRoundEnd is when a result was produced and the next round has not started
	StateRoundEnd
	// StateFinished is never entered, rooms are torn down by the caller
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StatePlaying:
		return "playing"
	case StateRoundEnd:
		return "round_end"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText renders the state as its name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Game is the session of a single room
// A Game performs no locking: every method, including timer expiry delivered through Dispatch,
// must be called from a single goroutine.
type Game struct {
	roomID  string
	options Options

	deck *deck.Deck
	rng  rng.Generator

	// participants are ordered by seat
	participants []*Participant
	// roster holds everyone dealt into the current round, including players who have since left
	roster []*Participant

	pot         int
	turnIndex   int
	state       State
	stake       int
	raiseCount  int
	roundNumber int

	lastResult *RoundResult
	consent    map[string]ConsentStatus

	timer *turnTimer
	now   func() time.Time

	// BroadcastFn receives every observable state change. If nil, no broadcast is done.
	BroadcastFn func(ev Event)

	// Dispatch runs fn on the goroutine that owns the game. Timer expiry is delivered through it.
	// If nil, turns never time out.
	Dispatch func(fn func())

	logger  logrus.FieldLogger
	logChan chan []*playable.LogMessage
}

var _ playable.Playable = (*Game)(nil)

// NewGame returns a new session for a room
func NewGame(logger logrus.FieldLogger, roomID string, opts Options) (*Game, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	g := &Game{
		roomID:       roomID,
		options:      opts,
		deck:         deck.New(),
		rng:          rng.Crypto{},
		participants: make([]*Participant, 0, opts.MaxPlayers),
		state:        StateWaiting,
		timer:        &turnTimer{limit: opts.TurnTimeLimit},
		now:          time.Now,
		logger:       logger.WithField("roomId", roomID),
		logChan:      make(chan []*playable.LogMessage, 256),
	}

	return g, nil
}

// SetGenerator replaces the generator used to shuffle the deck
func (g *Game) SetGenerator(gen rng.Generator) {
	g.rng = gen
}

// Name returns "teen patti"
func (g *Game) Name() string {
	return "teen patti"
}

// RoomID returns the ID of the room
func (g *Game) RoomID() string {
	return g.roomID
}

// Options returns the table options
func (g *Game) Options() Options {
	return g.options
}

// State returns the current state
func (g *Game) State() State {
	return g.state
}

// Pot returns the chips in the pot
func (g *Game) Pot() int {
	return g.pot
}

// LastResult returns the result of the last round, if the room is between rounds
func (g *Game) LastResult() *RoundResult {
	return g.lastResult
}

// SeatedCount returns the number of seated players
func (g *Game) SeatedCount() int {
	return len(g.participants)
}

// IsFull returns true if every seat is taken
func (g *Game) IsFull() bool {
	return len(g.participants) >= g.options.MaxPlayers
}

// LogChan returns a channel for sending log messages
func (g *Game) LogChan() <-chan []*playable.LogMessage {
	return g.logChan
}

// Close stops any pending timer
func (g *Game) Close() {
	g.timer.clear()
}

func (g *Game) getParticipant(userID string) (*Participant, int) {
	for i, p := range g.participants {
		if p.UserID == userID {
			return p, i
		}
	}

	return nil, -1
}

// currentParticipant returns the player whose turn it is, or nil outside of a round
func (g *Game) currentParticipant() *Participant {
	if g.state != StatePlaying || g.turnIndex < 0 || g.turnIndex >= len(g.participants) {
		return nil
	}

	return g.participants[g.turnIndex]
}

func (g *Game) inPlayCount() int {
	n := 0
	for _, p := range g.participants {
		if p.inPlay() {
			n++
		}
	}

	return n
}

// nextInPlayIndex walks the seats after from, wrapping around, and returns the first one still contesting the pot
// If inclusive is true, from itself is checked first. Returns -1 if nobody is in play.
func (g *Game) nextInPlayIndex(from int, inclusive bool) int {
	n := len(g.participants)
	if n == 0 {
		return -1
	}

	start := 1
	if inclusive {
		start = 0
	}

	for i := start; i <= n; i++ {
		idx := ((from+i)%n + n) % n
		if g.participants[idx].inPlay() {
			return idx
		}
	}

	return -1
}

// advanceTurn moves to the next player in seat order who is still contesting the pot
func (g *Game) advanceTurn() {
	g.timer.clear()

	next := g.nextInPlayIndex(g.turnIndex, false)
	if next < 0 {
		g.logger.Error("advanceTurn called with nobody in play")
		return
	}

	g.turnIndex = next
	g.startTurn()
}

// startTurn arms the turn timer for the current player
func (g *Game) startTurn() {
	p := g.currentParticipant()
	if p == nil {
		return
	}

	p.sideShowAsked = false

	userID := p.UserID
	g.timer.start(g.now(), g.Dispatch, func() {
		g.expireTurn(userID)
	})
}

// broadcast fills in the public state and hands the event to BroadcastFn
func (g *Game) broadcast(ev Event) {
	if g.BroadcastFn == nil {
		return
	}

	ev.State = g.PublicState()
	g.BroadcastFn(ev)
}

func (g *Game) sendLogMessages(msg ...*playable.LogMessage) {
	select {
	case g.logChan <- msg:
	default:
		g.logger.Warn("log channel is full, dropping log messages")
	}
}

func newLogMessage(userID string, format string, a ...interface{}) *playable.LogMessage {
	var userIDs []string
	if userID != "" {
		userIDs = []string{userID}
	}

	return newLogMessageWithPlayers(userIDs, format, a...)
}

func newLogMessageWithPlayers(userIDs []string, format string, a ...interface{}) *playable.LogMessage {
	return &playable.LogMessage{
		UUID:    uuid.New().String(),
		UserIDs: userIDs,
		Message: fmt.Sprintf(format, a...),
		Time:    time.Now(),
	}
}
