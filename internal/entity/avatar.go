package entity

import "time"

// Avatar is a collectible monster a player can put on the board.
type Avatar struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

func (that Avatar) IsFree() bool {
	return that.Cost == 0
}

// Avatars is the full catalog in display order.
var Avatars = []Avatar{
	{Key: "green", Name: "Slimey", Cost: 0},
	{Key: "blue", Name: "Derpy", Cost: 0},
	{Key: "orange", Name: "Cyclops", Cost: 50},
	{Key: "purple", Name: "Spikey", Cost: 50},
	{Key: "pink", Name: "Piggy", Cost: 100},
	{Key: "red", Name: "Boxy", Cost: 150},
}

// ToyPrizes are handed out to the winner of a round.
var ToyPrizes = []string{"🧸", "🦖", "🦄", "🤖", "🦆", "🏎️", "🚀", "🍕"}

const (
	DefaultP1Avatar = "green"
	DefaultP2Avatar = "blue"
)

func FindAvatar(key string) (Avatar, bool) {
	for _, avatar := range Avatars {
		if avatar.Key == key {
			return avatar, true
		}
	}

	return Avatar{}, false
}

func AvatarKeys() []string {
	keys := make([]string, 0, len(Avatars))
	for _, avatar := range Avatars {
		keys = append(keys, avatar.Key)
	}

	return keys
}

func FreeAvatarKeys() []string {
	keys := make([]string, 0, len(Avatars))
	for _, avatar := range Avatars {
		if avatar.IsFree() {
			keys = append(keys, avatar.Key)
		}
	}

	return keys
}

// Icon is a custom drawing a player uses instead of a catalog avatar.
type Icon struct {
	SessionID string    `json:"session_id"`
	Seat      Mark      `json:"seat"`
	PNG       []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
