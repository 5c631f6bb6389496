package game

import (
	"math"
	"testing"
)

// TestIntegrate tests position advance and geometric velocity decay
func TestIntegrate(t *testing.T) {
	p, v := Integrate(100, 10, 0.9)
	if p != 110 {
		t.Errorf("Position should be 110, got %v", p)
	}
	if v != 9 {
		t.Errorf("Velocity should be 9, got %v", v)
	}
}

// TestIntegrateConvergence tests that repeated integration with friction
// below 1 converges instead of diverging
func TestIntegrateConvergence(t *testing.T) {
	p, v := 0.0, 10.0
	for i := 0; i < 2000; i++ {
		p, v = Integrate(p, v, BallFriction)
	}
	if math.Abs(v) > 0.001 {
		t.Errorf("Velocity should have decayed to ~0, got %v", v)
	}
	// Geometric series: total travel is bounded by v0/(1-friction)
	bound := 10.0 / (1 - BallFriction)
	if p > bound {
		t.Errorf("Travel %v exceeded geometric bound %v", p, bound)
	}
}

// TestReflect tests the reflect-with-damping boundary policy
func TestReflect(t *testing.T) {
	tests := []struct {
		name        string
		p, v        float64
		wantP, want float64
	}{
		{"below lower bound", -10, -5, 8, 4},
		{"above upper bound", 105, 5, 96, -4},
		{"inside bounds", 50, 5, 50, 5},
		{"exactly on bound", 0, -5, 0, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, v := Reflect(tt.p, tt.v, 0, 100, 0.8)
			if math.Abs(p-tt.wantP) > 1e-9 || math.Abs(v-tt.want) > 1e-9 {
				t.Errorf("Reflect(%v, %v) = (%v, %v), want (%v, %v)",
					tt.p, tt.v, p, v, tt.wantP, tt.want)
			}
		})
	}
}

// TestClampStop tests the clamp-and-stop boundary policy
func TestClampStop(t *testing.T) {
	tests := []struct {
		name        string
		p, v        float64
		wantP, want float64
	}{
		{"below lower bound", -3, -5, 0, 0},
		{"above upper bound", 120, 7, 100, 0},
		{"inside bounds", 42, -2, 42, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, v := ClampStop(tt.p, tt.v, 0, 100)
			if p != tt.wantP || v != tt.want {
				t.Errorf("ClampStop(%v, %v) = (%v, %v), want (%v, %v)",
					tt.p, tt.v, p, v, tt.wantP, tt.want)
			}
		})
	}
}

// TestLimitSpeed tests velocity magnitude capping
func TestLimitSpeed(t *testing.T) {
	vx, vy := LimitSpeed(30, 40, 5)
	if math.Abs(Speed(vx, vy)-5) > 1e-9 {
		t.Errorf("Speed should be capped at 5, got %v", Speed(vx, vy))
	}
	// Direction must be preserved: 3-4-5 triangle
	if math.Abs(vx-3) > 1e-9 || math.Abs(vy-4) > 1e-9 {
		t.Errorf("Direction should be preserved, got (%v, %v)", vx, vy)
	}

	vx, vy = LimitSpeed(1, 2, 5)
	if vx != 1 || vy != 2 {
		t.Errorf("Velocity below cap should pass through, got (%v, %v)", vx, vy)
	}
}

// TestInMouth tests the goal mouth span on the default field
func TestInMouth(t *testing.T) {
	f := DefaultField()

	if !f.InMouth(300) {
		t.Error("Field center height should be inside the goal mouth")
	}
	if !f.InMouth(225) || !f.InMouth(375) {
		t.Error("Mouth edges should be inside the span")
	}
	if f.InMouth(224) || f.InMouth(376) {
		t.Error("Just outside the mouth span should not count")
	}
}

// TestSpawnPointInsideField tests that spawn positions respect boundaries
func TestSpawnPointInsideField(t *testing.T) {
	f := DefaultField()
	for n := 0; n < 20; n++ {
		for _, team := range []Team{TeamRed, TeamBlue} {
			x, y := f.SpawnPoint(team, n)
			if x < PlayerRadius || x > f.Width-PlayerRadius {
				t.Errorf("Spawn x for %s #%d out of bounds: %v", team, n, x)
			}
			if y < PlayerRadius || y > f.Height-PlayerRadius {
				t.Errorf("Spawn y for %s #%d out of bounds: %v", team, n, y)
			}
		}
	}

	rx, _ := f.SpawnPoint(TeamRed, 0)
	bx, _ := f.SpawnPoint(TeamBlue, 0)
	if rx >= f.Width/2 || bx <= f.Width/2 {
		t.Errorf("Red should spawn left of center and blue right, got %v / %v", rx, bx)
	}
}
