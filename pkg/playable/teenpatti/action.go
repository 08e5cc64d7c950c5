package teenpatti

import (
	"fmt"

	"teenpatti-server/pkg/playable"
)

// Action performs an action for the player
func (g *Game) Action(userID string, message *playable.PayloadIn) (*playable.Response, error) {
	var err error

	switch message.Action {
	case "start":
		if !g.StartGame() {
			err = ErrCannotStart
		}
	case "bet":
		amount, ok := message.AdditionalData.GetInt("amount")
		if !ok {
			return nil, ErrInvalidAmount
		}

		err = g.PlaceBet(userID, amount)
	case "see":
		err = g.SeeCards(userID)
	case "fold":
		err = g.Fold(userID)
	case "show":
		err = g.Show(userID)
	case "sideShow":
		target, _ := message.AdditionalData.GetString("targetUserId")
		err = g.RequestSideShow(userID, target)
	case "sideShowResponse":
		accept, _ := message.AdditionalData.GetBool("accept")
		err = g.RespondToSideShow(userID, accept)
	case "consent":
		accept, _ := message.AdditionalData.GetBool("accept")
		err = g.RespondConsent(userID, accept)
	case "leave":
		_, err = g.RemovePlayer(userID, RemovedExit)
	default:
		return nil, fmt.Errorf("unknown action: %s", message.Action)
	}

	if err != nil {
		return nil, err
	}

	return playable.OK(message.Context), nil
}

// GetPlayerState returns the player's private state
func (g *Game) GetPlayerState(userID string) (*playable.Response, error) {
	ps, err := g.PrivateState(userID)
	if err != nil {
		return nil, err
	}

	return &playable.Response{
		Key:   "game",
		Value: "teen-patti",
		Data:  ps,
	}, nil
}
