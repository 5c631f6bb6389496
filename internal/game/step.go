package game

import "math"

// Goal reports a scoring event produced by a tick.
type Goal struct {
	Scorer Team
	Score  Score
}

// Step advances the simulation one tick: player intent and movement, then
// player-ball contact, then ball integration and goal detection. Returns a
// non-nil Goal if the ball crossed a goal mouth this tick.
func Step(s *State, f Field) *Goal {
	s.Tick++

	for _, p := range s.Players {
		stepPlayer(p, f)
	}

	applyContacts(s)

	return stepBall(s, f)
}

// stepPlayer applies movement intent as a fixed acceleration along the
// intent vector, then integrates, decays and clamps within the field.
func stepPlayer(p *Player, f Field) {
	ax, ay := 0.0, 0.0
	if p.Intent.Up {
		ay -= 1
	}
	if p.Intent.Down {
		ay += 1
	}
	if p.Intent.Left {
		ax -= 1
	}
	if p.Intent.Right {
		ax += 1
	}
	if ax != 0 || ay != 0 {
		mag := math.Hypot(ax, ay)
		p.VX += ax / mag * PlayerAccel
		p.VY += ay / mag * PlayerAccel
	}

	p.VX, p.VY = LimitSpeed(p.VX, p.VY, PlayerMaxSpeed)
	p.X, p.VX = Integrate(p.X, p.VX, PlayerFriction)
	p.Y, p.VY = Integrate(p.Y, p.VY, PlayerFriction)
	p.X, p.VX = ClampStop(p.X, p.VX, p.Radius, f.Width-p.Radius)
	p.Y, p.VY = ClampStop(p.Y, p.VY, p.Radius, f.Height-p.Radius)
}

// applyContacts resolves player-ball contact. Impulses from all contacting
// players accumulate (never overwrite). A held kick flag in range applies a
// strong one-shot impulse; otherwise slow contact dribbles (sticks) and fast
// contact bounces. Direction is always ball-minus-player so the ball is
// pushed away. The kick flag is consumed by this tick whether or not it
// connected.
func applyContacts(s *State) {
	b := &s.Ball
	var ix, iy float64

	for _, p := range s.Players {
		kicked := p.Intent.Kick
		p.Intent.Kick = false

		dx := b.X - p.X
		dy := b.Y - p.Y
		dist := math.Hypot(dx, dy)
		if dist >= p.Radius+b.Radius+ContactSlack {
			continue
		}
		if dist < MinSeparation {
			continue
		}
		nx, ny := dx/dist, dy/dist

		if kicked {
			ix += nx * KickImpulse
			iy += ny * KickImpulse
			continue
		}

		rel := math.Hypot(b.VX-p.VX, b.VY-p.VY)
		if rel > BounceThreshold {
			ix += nx * rel * BounceScale
			iy += ny * rel * BounceScale
		} else {
			ix += nx * DribbleForce
			iy += ny * DribbleForce
		}
	}

	b.VX += ix
	b.VY += iy
}

// stepBall integrates the ball, detects goals, and bounces off walls.
// A crossing inside the goal mouth is a goal and short-circuits the wall
// bounce for that tick; the same crossing outside the mouth is a bounce.
func stepBall(s *State, f Field) *Goal {
	b := &s.Ball
	b.X, b.VX = Integrate(b.X, b.VX, b.Friction)
	b.Y, b.VY = Integrate(b.Y, b.VY, b.Friction)

	if speed := Speed(b.VX, b.VY); speed < RestSpeed {
		b.VX, b.VY = 0, 0
	}

	// Goal lines first: red defends x=0, blue defends x=Width.
	if b.X-b.Radius <= 0 && f.InMouth(b.Y) {
		s.Score.Add(TeamBlue)
		b.Reset(f)
		return &Goal{Scorer: TeamBlue, Score: s.Score}
	}
	if b.X+b.Radius >= f.Width && f.InMouth(b.Y) {
		s.Score.Add(TeamRed)
		b.Reset(f)
		return &Goal{Scorer: TeamRed, Score: s.Score}
	}

	b.X, b.VX = Reflect(b.X, b.VX, b.Radius, f.Width-b.Radius, WallRestitution)
	b.Y, b.VY = Reflect(b.Y, b.VY, b.Radius, f.Height-b.Radius, WallRestitution)
	return nil
}
