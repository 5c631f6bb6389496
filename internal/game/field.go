package game

// Field is the rectangular pitch. The goal mouths are vertical spans of
// height GoalMouth centered on each goal line (x=0 and x=Width).
type Field struct {
	Width     float64
	Height    float64
	GoalMouth float64
}

// DefaultField matches the canonical 1000x600 pitch with a 150px goal mouth.
func DefaultField() Field {
	return Field{Width: 1000, Height: 600, GoalMouth: 150}
}

// InMouth reports whether a y coordinate falls within the goal-mouth span.
func (f Field) InMouth(y float64) bool {
	half := f.GoalMouth / 2
	return y >= f.Height/2-half && y <= f.Height/2+half
}

// SpawnPoint returns the kickoff position for the n-th player of a team:
// red lines up on the left half, blue on the right, spread vertically.
func (f Field) SpawnPoint(team Team, n int) (float64, float64) {
	x := f.Width * 0.25
	if team == TeamBlue {
		x = f.Width * 0.75
	}
	rows := int(f.Height/(4*PlayerRadius)) - 1
	if rows < 1 {
		rows = 1
	}
	y := f.Height/2 + float64((n%rows+1)/2)*4*PlayerRadius*float64(1-2*(n%2))
	if y < PlayerRadius {
		y = PlayerRadius
	}
	if y > f.Height-PlayerRadius {
		y = f.Height - PlayerRadius
	}
	return x, y
}
