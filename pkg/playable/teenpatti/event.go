package teenpatti

// event names
const (
	EventPlayerJoined       = "playerJoined"
	EventPlayerLeft         = "playerLeft"
	EventPlayerReconnected  = "playerReconnected"
	EventPlayerDisconnected = "playerDisconnected"
	EventRoundStarted       = "roundStarted"
	EventBetPlaced          = "betPlaced"
	EventCardsSeen          = "cardsSeen"
	EventFolded             = "folded"
	EventTurnChanged        = "turnChanged"
	EventTurnTimeout        = "turnTimeout"
	EventSideShowRequested  = "sideShowRequested"
	EventSideShowResolved   = "sideShowResolved"
	EventRoundEnded         = "roundEnded"
	EventRoundAbandoned     = "roundAbandoned"
	EventWaiting            = "waiting"
	EventConsentRequested   = "consentRequested"
	EventConsentUpdated     = "consentUpdated"
)

// Event is an observable change to the game
// State is always the public state after the change.
type Event struct {
	Name     string          `json:"event"`
	UserID   string          `json:"userId,omitempty"`
	State    *PublicState    `json:"state"`
	Result   *RoundResult    `json:"result,omitempty"`
	Departed *Departure      `json:"departed,omitempty"`
	SideShow *SideShowNotice `json:"sideShow,omitempty"`
}
