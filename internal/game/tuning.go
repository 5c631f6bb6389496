package game

// Simulation tuning. All speeds and forces are in pixels per tick at 60 TPS.
const (
	PlayerRadius = 15.0
	BallRadius   = 10.0

	PlayerAccel    = 0.55 // per tick while an intent flag is held
	PlayerFriction = 0.90
	PlayerMaxSpeed = 6.0

	BallFriction    = 0.985
	WallRestitution = 0.8 // damping on wall reflection

	ContactSlack = 2.0  // extra reach on player-ball contact
	KickImpulse  = 11.0 // one-shot impulse for a discrete kick
	DribbleForce = 0.45 // continuous low-force coupling while touching
	BounceScale  = 0.6  // fraction of relative speed returned on a bounce

	// Contact below this relative speed sticks (dribble), above it bounces.
	BounceThreshold = 3.0

	// Separations below this are skipped to guard impulse math against
	// division by zero.
	MinSeparation = 1e-6

	// Ball speed below this snaps to zero so a free ball comes to rest
	// instead of decaying forever.
	RestSpeed = 0.01
)
