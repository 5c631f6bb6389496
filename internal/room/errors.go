package room

import "github.com/pkg/errors"

// Join-time failures, reported to the requester only. Nothing in the
// simulation layer returns errors; these cover the command boundary.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrRoomNotFound  = errors.New("room not found")
	ErrNicknameTaken = errors.New("nickname already taken")
	ErrRoomFull      = errors.New("room is full")
	ErrMatchEnded    = errors.New("match has ended")
)
