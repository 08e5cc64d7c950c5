package room

import (
	"errors"

	"teenpatti-server/pkg/playable"
	"teenpatti-server/pkg/playable/teenpatti"
)

// Summary describes a room for the lobby
type Summary struct {
	RoomID     string          `json:"roomId"`
	State      teenpatti.State `json:"state"`
	Seated     int             `json:"seated"`
	MaxPlayers int             `json:"maxPlayers"`
	Boot       int             `json:"boot"`
	Watching   int             `json:"watching"`
}

type notification struct {
	Kind   string `json:"kind"`
	RoomID string `json:"roomId"`
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name,omitempty"`
}

func newErrorResponse(ctx string, err error) *playable.Response {
	res := &playable.Response{
		Key:     "error",
		Value:   err.Error(),
		Context: ctx,
	}

	var actionErr *teenpatti.ActionError
	if errors.As(err, &actionErr) {
		res.Data = actionErr
	}

	return res
}

func newEventResponse(ev teenpatti.Event) *playable.Response {
	return &playable.Response{
		Key:   "event",
		Value: ev.Name,
		Data:  ev,
	}
}

func newNotificationResponse(n notification) *playable.Response {
	return &playable.Response{
		Key:   "notification",
		Value: n.Kind,
		Data:  n,
	}
}

func newLogsResponse(messages []*playable.LogMessage) *playable.Response {
	return &playable.Response{
		Key:  "logs",
		Data: messages,
	}
}
