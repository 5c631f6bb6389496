package game

// State is the full simulation state of one match. It is owned exclusively
// by the room goroutine; nothing outside the room mutates it.
type State struct {
	Tick    int64
	Players map[string]*Player
	Ball    Ball
	Score   Score
}

// NewState returns an empty match state with the ball at kickoff.
func NewState(f Field) State {
	return State{
		Players: make(map[string]*Player),
		Ball:    NewBall(f),
	}
}
