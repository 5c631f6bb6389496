package room

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Match event sourcing: goals, joins and match ends are appended to a JSONL
// file by an async writer. The log is bounded and rate-limited so a flooding
// room can never stall a tick loop or grow the file without bound.

// EventType classifies a match event.
type EventType string

const (
	EventRoomCreated EventType = "room_created"
	EventRoomClosed  EventType = "room_closed"
	EventPlayerJoin  EventType = "player_join"
	EventPlayerLeave EventType = "player_leave"
	EventGoal        EventType = "goal"
	EventMatchEnd    EventType = "match_end"
)

// Event is one match-log record.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"` // unix nano, stamped on emit
	Room      string    `json:"room"`
	Player    string    `json:"player,omitempty"`
	Payload   any       `json:"payload,omitempty"`
}

// JoinPayload details a join/leave event.
type JoinPayload struct {
	Nickname string `json:"nickname"`
	Team     string `json:"team,omitempty"`
}

// GoalPayload details a goal or match-end event.
type GoalPayload struct {
	Scorer string `json:"scorer,omitempty"`
	Red    int    `json:"red"`
	Blue   int    `json:"blue"`
}

const (
	eventBufferSize = 1024
	maxEventsPerSec = 1000
	flushInterval   = 100 * time.Millisecond
)

// EventLog is a bounded, rate-limited JSONL event sink with an async writer.
// A nil *EventLog is valid and discards everything.
type EventLog struct {
	limiter *rate.Limiter
	buffer  chan Event

	stopChan chan struct{}
	stopOnce sync.Once
	writerWg sync.WaitGroup
	running  atomic.Bool

	file *os.File

	dropped atomic.Uint64
	total   atomic.Uint64
}

// NewEventLog creates an event log. Start must be called before events are
// recorded.
func NewEventLog() *EventLog {
	return &EventLog{
		limiter:  rate.NewLimiter(maxEventsPerSec, maxEventsPerSec/10),
		buffer:   make(chan Event, eventBufferSize),
		stopChan: make(chan struct{}),
	}
}

// Start opens the output file and begins the writer goroutine. An empty
// path disables the log.
func (el *EventLog) Start(path string) error {
	if el == nil || el.running.Load() || path == "" {
		return nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	el.file = file
	el.running.Store(true)
	el.writerWg.Add(1)
	go el.writerLoop()
	return nil
}

// Stop flushes and closes the log.
func (el *EventLog) Stop() {
	if el == nil {
		return
	}
	el.stopOnce.Do(func() {
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()
		if el.file != nil {
			el.file.Close()
		}
	})
}

// Emit records an event. Returns false if the log is stopped, rate limited
// or full; emission never blocks the caller.
func (el *EventLog) Emit(ev Event) bool {
	if el == nil || !el.running.Load() {
		return false
	}
	if !el.limiter.Allow() {
		el.dropped.Add(1)
		return false
	}
	ev.Timestamp = time.Now().UnixNano()
	select {
	case el.buffer <- ev:
		el.total.Add(1)
		return true
	default:
		el.dropped.Add(1)
		return false
	}
}

// Stats reports counters for monitoring.
func (el *EventLog) Stats() (total, dropped uint64) {
	if el == nil {
		return 0, 0
	}
	return el.total.Load(), el.dropped.Load()
}

func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	enc := json.NewEncoder(el.file)
	for {
		select {
		case <-el.stopChan:
			el.drain(enc)
			return
		case <-ticker.C:
			el.drain(enc)
		}
	}
}

func (el *EventLog) drain(enc *json.Encoder) {
	for {
		select {
		case ev := <-el.buffer:
			_ = enc.Encode(ev)
		default:
			return
		}
	}
}
