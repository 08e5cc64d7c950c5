package room

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"teenpatti-server/internal/util"
	"teenpatti-server/pkg/playable"
)

// Player is the verified identity behind a connection
type Player struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
}

// Client is a client connected to the server via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	dealer *Dealer

	player       Player
	roomID       string
	connectionID string
}

// NewClient returns a new client object
func NewClient(conn *websocket.Conn, player Player, roomID string) *Client {
	return &Client{
		send:         make(chan interface{}, 256),
		Close:        make(chan string, 1),
		Conn:         conn,
		player:       player,
		roomID:       roomID,
		connectionID: util.NewConnectionID(),
	}
}

// Send send a message to the web client
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		logrus.WithField("client", c.String()).Warn("send buffer is full, dropping message")
		return false
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// Kick asks the write loop to close the connection
func (c *Client) Kick(reason string) {
	select {
	case c.Close <- reason:
	default:
	}
}

// UserID returns the ID of the connected user
func (c *Client) UserID() string {
	return c.player.UserID
}

// RoomID returns the room the client connected to
func (c *Client) RoomID() string {
	return c.roomID
}

// ConnectionID uniquely identifies this connection
func (c *Client) ConnectionID() string {
	return c.connectionID
}

// String returns a traceable identifier for the player and room
func (c *Client) String() string {
	return fmt.Sprintf("%s:%s:%s", c.player.UserID, c.roomID, c.connectionID)
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg *playable.PayloadIn) {
	if c.dealer == nil {
		logrus.WithField("msg", msg).Warn("received message, but dealer not found")
		return
	}

	c.dealer.ReceivedMessage(c, msg)
}
