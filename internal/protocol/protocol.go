// Package protocol defines the wire schema between clients and the server.
// Every frame in either direction is a JSON envelope {"type": ..., "data": ...}.
package protocol

// Inbound message types.
const (
	MsgJoin         = "join"
	MsgInput        = "input"
	MsgChangeTeam   = "changeTeam"
	MsgKickPlayer   = "kickPlayer"
	MsgTransferHost = "transferHost"
)

// Outbound message types.
const (
	MsgInit     = "init"
	MsgPlayers  = "players"
	MsgState    = "state"
	MsgScore    = "score"
	MsgMatchEnd = "matchEnd"
	MsgError    = "error"
)

// Error kinds reported to the offending client only.
const (
	ErrKindInvalidInput  = "invalidInput"
	ErrKindRoomNotFound  = "roomNotFound"
	ErrKindNicknameTaken = "nicknameTaken"
	ErrKindRoomFull      = "roomFull"
	ErrKindMatchEnded    = "matchEnded"
	ErrKindUnauthorized  = "unauthorized"
)

// Join is the first frame a client sends. An empty RoomID requests a new
// room; a non-empty one joins an existing room. Team is optional: the
// server auto-balances when it is empty.
type Join struct {
	Nickname string `json:"nickname"`
	RoomID   string `json:"roomId,omitempty"`
	Team     string `json:"team,omitempty"`
}

// Input carries the latest movement intent. Kick is a discrete shot flag,
// consumed by the next tick.
type Input struct {
	Up    bool `json:"up,omitempty"`
	Down  bool `json:"down,omitempty"`
	Left  bool `json:"left,omitempty"`
	Right bool `json:"right,omitempty"`
	Kick  bool `json:"kick,omitempty"`
}

// ChangeTeam reassigns another player's team (host only).
type ChangeTeam struct {
	TargetID string `json:"targetId"`
	Team     string `json:"team"`
}

// KickPlayer forcibly removes a player from the room (host only).
type KickPlayer struct {
	TargetID string `json:"targetId"`
}

// TransferHost hands host privileges to another player (host only).
type TransferHost struct {
	TargetID string `json:"targetId"`
}

// Init is the join-accept reply carrying the assigned identity and the
// initial snapshot.
type Init struct {
	PlayerID    string  `json:"playerId"`
	RoomID      string  `json:"roomId"`
	IsHost      bool    `json:"isHost"`
	FieldWidth  float64 `json:"fieldWidth"`
	FieldHeight float64 `json:"fieldHeight"`
	TickRate    int     `json:"tickRate"`
	Snapshot    State   `json:"snapshot"`
}

// PlayerInfo is the roster entry broadcast on every membership change.
type PlayerInfo struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Team     string `json:"team"`
	IsHost   bool   `json:"isHost"`
}

// Players is broadcast whenever the roster, teams or host change.
type Players struct {
	Players []PlayerInfo `json:"players"`
}

// PlayerSnapshot is one player's state within a State broadcast.
type PlayerSnapshot struct {
	ID       string  `json:"id"`
	Nickname string  `json:"nickname"`
	Team     string  `json:"team"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
}

// BallSnapshot is the ball's state within a State broadcast.
type BallSnapshot struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// Score is the goal count, broadcast inside State and on every goal.
type Score struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

// State is the post-tick snapshot broadcast to every room member.
type State struct {
	Tick          int64            `json:"tick"`
	Players       []PlayerSnapshot `json:"players"`
	Ball          BallSnapshot     `json:"ball"`
	Score         Score            `json:"score"`
	TimeRemaining float64          `json:"timeRemaining"` // seconds
}

// ScoreEvent is emitted once per goal.
type ScoreEvent struct {
	Score  Score  `json:"score"`
	Scorer string `json:"scorer"`
}

// MatchEnd carries the final score when the match clock expires.
type MatchEnd struct {
	Score Score `json:"score"`
}

// Error is reported to the requester only; it never reaches other clients.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
