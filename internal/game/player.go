package game

// Team is the side a player defends. Red defends the left goal line, blue
// the right. The names double as wire values.
type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Valid reports whether t is one of the two playable teams.
func (t Team) Valid() bool {
	return t == TeamRed || t == TeamBlue
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

// Intent is the player's current desired movement, set by input commands and
// consumed each tick. Kick is one-shot: the tick that applies it clears it.
type Intent struct {
	Up, Down, Left, Right bool
	Kick                  bool
}

// Player is mutable simulation state owned by a room. Position is always
// clamped to [Radius, dim-Radius] on both axes after integration.
type Player struct {
	ID       string
	Nickname string
	Team     Team

	X, Y   float64
	VX, VY float64
	Radius float64

	Intent Intent

	IsHost  bool
	JoinSeq int // insertion order, decides host promotion
}

// NewPlayer creates a player at the kickoff spot for its team.
func NewPlayer(id, nickname string, team Team, seq int, f Field) *Player {
	p := &Player{
		ID:       id,
		Nickname: nickname,
		Team:     team,
		Radius:   PlayerRadius,
		JoinSeq:  seq,
	}
	p.X, p.Y = f.SpawnPoint(team, seq)
	return p
}

// Ball is the single match ball. Speed decays geometrically each tick and
// the ball is reset to field center with zero velocity after any goal.
type Ball struct {
	X, Y     float64
	VX, VY   float64
	Radius   float64
	Friction float64
}

// NewBall returns a ball at rest in the center of the field.
func NewBall(f Field) Ball {
	return Ball{
		X:        f.Width / 2,
		Y:        f.Height / 2,
		Radius:   BallRadius,
		Friction: BallFriction,
	}
}

// Reset places the ball at field center with zero velocity.
func (b *Ball) Reset(f Field) {
	b.X, b.Y = f.Width/2, f.Height/2
	b.VX, b.VY = 0, 0
}

// Score holds the two goal counters. Both are monotonically non-decreasing
// and incremented exactly once per goal event.
type Score struct {
	Red  int
	Blue int
}

// Add credits one goal to the given team.
func (s *Score) Add(t Team) {
	if t == TeamRed {
		s.Red++
	} else {
		s.Blue++
	}
}
