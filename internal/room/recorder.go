package room

import "time"

// Recorder receives simulation metrics. The api package provides the
// prometheus-backed implementation; tests and bare rooms use NopRecorder.
type Recorder interface {
	ObserveTick(d time.Duration)
	RoomOpened()
	RoomClosed()
	PlayerJoined()
	PlayerLeft()
	GoalScored(team string)
	MatchEnded()
	CommandDropped()
}

// NopRecorder discards all metrics.
type NopRecorder struct{}

func (NopRecorder) ObserveTick(time.Duration) {}
func (NopRecorder) RoomOpened()               {}
func (NopRecorder) RoomClosed()               {}
func (NopRecorder) PlayerJoined()             {}
func (NopRecorder) PlayerLeft()               {}
func (NopRecorder) GoalScored(string)         {}
func (NopRecorder) MatchEnded()               {}
func (NopRecorder) CommandDropped()           {}
