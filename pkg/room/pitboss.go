package room

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// PitBoss is responsible for dispatching players to rooms
type PitBoss struct {
	settings Settings
	deps     Dependencies

	dealers map[string]*Dealer
	lock    sync.RWMutex

	connect    chan *Client
	disconnect chan *Client
	idle       chan *Dealer
	close      chan bool
}

// NewPitBoss returns a new dispatch object
func NewPitBoss(settings Settings, deps Dependencies) *PitBoss {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}

	return &PitBoss{
		settings:   settings,
		deps:       deps,
		dealers:    make(map[string]*Dealer),
		connect:    make(chan *Client, 256),
		disconnect: make(chan *Client, 256),
		idle:       make(chan *Dealer, 256),
		close:      make(chan bool),
	}
}

// StartShift starts the PitBoss run loop
func (p *PitBoss) StartShift() {
	go p.runLoop()
}

// EndShift stops the run loop and every dealer
func (p *PitBoss) EndShift() {
	close(p.close)
}

func (p *PitBoss) runLoop() {
	for {
		select {
		case client := <-p.connect:
			p.deps.Logger.WithField("client", client.String()).Debug("client connected")
			dealer, err := p.dealerFor(client.RoomID())
			if err != nil {
				p.deps.Logger.WithError(err).WithField("roomId", client.RoomID()).Error("could not open room")
				client.Send(newErrorResponse("", err))
				client.Kick("could not open room")
				continue
			}

			dealer.AddClient(client)
		case client := <-p.disconnect:
			p.deps.Logger.WithField("client", client.String()).Debug("client disconnected")
			p.lock.RLock()
			dealer, found := p.dealers[client.RoomID()]
			p.lock.RUnlock()

			if !found || client.dealer != dealer {
				p.deps.Logger.WithField("roomId", client.RoomID()).WithField("type", "exception").Error("room not found")
				continue
			}

			dealer.RemoveClient(client)
		case dealer := <-p.idle:
			p.lock.Lock()
			if p.dealers[dealer.RoomID()] == dealer && dealer.ClientCount() == 0 {
				delete(p.dealers, dealer.RoomID())
				dealer.EndShift()
				p.deps.Logger.WithField("roomId", dealer.RoomID()).Debug("room closed")
			}
			p.lock.Unlock()
		case <-p.close:
			p.lock.Lock()
			for roomID, dealer := range p.dealers {
				dealer.EndShift()
				delete(p.dealers, roomID)
			}
			p.lock.Unlock()
			return
		}
	}
}

// dealerFor returns the room's dealer, opening the room if needed
// NOTE: must only be called from the run loop
func (p *PitBoss) dealerFor(roomID string) (*Dealer, error) {
	p.lock.RLock()
	dealer, found := p.dealers[roomID]
	p.lock.RUnlock()

	if found {
		return dealer, nil
	}

	dealer, err := NewDealer(p, roomID, p.settings, p.deps)
	if err != nil {
		return nil, err
	}

	dealer.StartShift()

	p.lock.Lock()
	p.dealers[roomID] = dealer
	p.lock.Unlock()

	return dealer, nil
}

// ClientConnected is called when a client connects to the server
func (p *PitBoss) ClientConnected(client *Client) {
	p.connect <- client
}

// ClientDisconnected is called when a client disconnects from the server
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.disconnect <- client
}

// dealerIdle is called by a dealer that has nobody left in its room
func (p *PitBoss) dealerIdle(d *Dealer) {
	select {
	case p.idle <- d:
	default:
		d.log.Warn("pit boss is busy, room stays open")
	}
}

// Rooms returns a summary of every open room ordered by room ID
func (p *PitBoss) Rooms() []Summary {
	p.lock.RLock()
	dealers := make([]*Dealer, 0, len(p.dealers))
	for _, dealer := range p.dealers {
		dealers = append(dealers, dealer)
	}
	p.lock.RUnlock()

	rooms := make([]Summary, len(dealers))
	for i, dealer := range dealers {
		rooms[i] = dealer.Summary()
	}

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].RoomID < rooms[j].RoomID
	})

	return rooms
}

// Room returns the summary of a single open room
func (p *PitBoss) Room(roomID string) (Summary, bool) {
	p.lock.RLock()
	dealer, found := p.dealers[roomID]
	p.lock.RUnlock()

	if !found {
		return Summary{}, false
	}

	return dealer.Summary(), true
}
