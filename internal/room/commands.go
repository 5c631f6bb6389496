package room

import "hackball/internal/game"

// Conn is the transport handle the room broadcasts to. Send must never
// block the caller: implementations queue with drop-on-backpressure and
// return an error only when the connection is gone.
type Conn interface {
	Send(b []byte) error
	Close() error
}

// Commands placed on a room's inbox. Only the room goroutine touches
// entity state, so command application needs no locks.

type joinCmd struct {
	conn     Conn
	nickname string
	team     game.Team // empty means auto-balance
	reply    chan<- joinReply
}

type joinReply struct {
	playerID string
	isHost   bool
	err      error
}

type inputCmd struct {
	playerID string
	intent   game.Intent
}

type leaveCmd struct {
	playerID string
}

type changeTeamCmd struct {
	requesterID string
	targetID    string
	team        game.Team
}

type kickPlayerCmd struct {
	requesterID string
	targetID    string
}

type transferHostCmd struct {
	requesterID string
	targetID    string
}
