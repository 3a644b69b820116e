package entity

import "slices"

// Profile is the persisted wallet of the human player: coins and unlocked avatars.
type Profile struct {
	ID        string   `json:"id"`
	Coins     int      `json:"coins"`
	Inventory []string `json:"inventory"`
}

func NewProfile(id string) *Profile {
	return &Profile{
		ID:        id,
		Inventory: FreeAvatarKeys(),
	}
}

func (that *Profile) Owns(key string) bool {
	return slices.Contains(that.Inventory, key)
}

func (that *Profile) Unlock(key string) {
	if !that.Owns(key) {
		that.Inventory = append(that.Inventory, key)
	}
}
