package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
	"github.com/rocketscienceinc/monstertoe-backend/internal/service"
)

const (
	actionSessionStart   = "session:start"
	actionSessionMode    = "session:mode"
	actionSessionStarter = "session:starter"
	actionSessionReset   = "session:reset"
	actionSessionLeave   = "session:leave"
	actionGameTurn       = "game:turn"
	actionAvatarSet      = "avatar:set"
	actionShopOffers     = "shop:offers"
	actionShopBuy        = "shop:buy"
	actionShopUnlockAll  = "shop:unlock-all"
	actionIconSave       = "icon:save"
	actionError          = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload carries request arguments from the client and results back to it.
type Payload struct {
	SessionID string `json:"session_id,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Seat      string `json:"seat,omitempty"`
	Cell      *int   `json:"cell,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Image     string `json:"image,omitempty"`

	Seq     uint64          `json:"seq,omitempty"`
	Session *entity.Session `json:"session,omitempty"`
	Outcome *entity.Outcome `json:"outcome,omitempty"`
	Reward  *entity.Reward  `json:"reward,omitempty"`
	Profile *entity.Profile `json:"profile,omitempty"`
	Offers  []service.Offer `json:"offers,omitempty"`

	Error string `json:"error,omitempty"`
}
