package apperror

import "errors"

var (
	ErrGameFinished    = errors.New("game is already finished")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionInUse    = errors.New("session is open elsewhere")
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileBusy     = errors.New("profile is being updated, try again")
	ErrIconNotFound    = errors.New("icon not found")

	ErrUnknownMode    = errors.New("unknown game mode")
	ErrUnknownSeat    = errors.New("unknown seat")
	ErrSeatLocked     = errors.New("seat is controlled by the computer")
	ErrUnknownAvatar  = errors.New("unknown avatar")
	ErrAvatarLocked   = errors.New("avatar is locked")
	ErrNotEnoughCoins = errors.New("not enough coins")
	ErrNotForSale     = errors.New("avatar is not for sale")
	ErrInvalidIcon    = errors.New("invalid icon image")
)
