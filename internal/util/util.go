package util

import (
	"github.com/google/uuid"
)

// NewConnectionID returns a unique identifier for a websocket connection
func NewConnectionID() string {
	return uuid.New().String()
}
