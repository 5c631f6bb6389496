package room

import (
	"crypto/rand"
	"log"
	"math/big"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"hackball/internal/game"
)

// Room codes are short, case-insensitive and unambiguous (no 0/O/1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

// codePattern accepts normalized join codes before room lookup.
var codePattern = regexp.MustCompile(`^[A-Z0-9]{5,6}$`)

// RoomInfo is the public listing entry for an active room.
type RoomInfo struct {
	Code    string `json:"code"`
	Players int    `json:"players"`
}

// Registry maps external connections to (room, player) pairs: create, join,
// lookup, teardown. It holds only lookup references; each room's entities
// are owned by the room's own goroutine.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	opts   Options
	events *EventLog
	rec    Recorder
}

// NewRegistry creates an empty registry. All rooms it creates share the
// given options, event log and metrics recorder.
func NewRegistry(opts Options, events *EventLog, rec Recorder) *Registry {
	if rec == nil {
		rec = NopRecorder{}
	}
	return &Registry{
		rooms:  make(map[string]*Room),
		opts:   opts,
		events: events,
		rec:    rec,
	}
}

// ValidNickname enforces the 1..15 character display-name rule.
func ValidNickname(nickname string) bool {
	n := utf8.RuneCountInString(nickname)
	return n >= 1 && n <= 15
}

// ParseTeam maps a wire team value to a game team. Empty requests
// auto-balancing.
func ParseTeam(s string) (game.Team, error) {
	switch s {
	case "":
		return "", nil
	case string(game.TeamRed):
		return game.TeamRed, nil
	case string(game.TeamBlue):
		return game.TeamBlue, nil
	default:
		return "", ErrInvalidInput
	}
}

// Create generates a fresh collision-checked room code, starts the room
// and inserts the requester as its first player and host.
func (reg *Registry) Create(conn Conn, nickname string, team game.Team) (*Room, string, bool, error) {
	if !ValidNickname(nickname) {
		return nil, "", false, ErrInvalidInput
	}

	reg.mu.Lock()
	var code string
	for {
		code = generateCode(codeLength)
		if _, exists := reg.rooms[code]; !exists {
			break
		}
	}
	rm := New(code, reg.opts, reg.events, reg.rec, reg.remove)
	reg.rooms[code] = rm
	go rm.Run()
	reg.mu.Unlock()

	reg.rec.RoomOpened()
	reg.events.Emit(Event{Type: EventRoomCreated, Room: code})
	log.Printf("room %s created", code)

	playerID, isHost, err := rm.Join(conn, nickname, team)
	if err != nil {
		// First join into a fresh room cannot collide; a failure here means
		// the room died underneath us.
		return nil, "", false, err
	}
	return rm, playerID, isHost, nil
}

// Join inserts a player into an existing room. The code is normalized to
// uppercase and pattern-checked before lookup.
func (reg *Registry) Join(conn Conn, code, nickname string, team game.Team) (*Room, string, bool, error) {
	if !ValidNickname(nickname) {
		return nil, "", false, ErrInvalidInput
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if !codePattern.MatchString(code) {
		return nil, "", false, ErrInvalidInput
	}

	reg.mu.RLock()
	rm, ok := reg.rooms[code]
	reg.mu.RUnlock()
	if !ok {
		return nil, "", false, ErrRoomNotFound
	}

	playerID, isHost, err := rm.Join(conn, nickname, team)
	if err != nil {
		return nil, "", false, err
	}
	return rm, playerID, isHost, nil
}

// Rooms lists active rooms for the HTTP API, sorted by code.
func (reg *Registry) Rooms() []RoomInfo {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]RoomInfo, 0, len(reg.rooms))
	for code, rm := range reg.rooms {
		out = append(out, RoomInfo{Code: code, Players: rm.NumPlayers()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Count returns the number of active rooms.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Shutdown stops every room. Used on process exit.
func (reg *Registry) Shutdown() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for code, rm := range reg.rooms {
		rm.Stop()
		delete(reg.rooms, code)
	}
}

// remove is the room's OnEmpty callback.
func (reg *Registry) remove(code string) {
	reg.mu.Lock()
	rm, ok := reg.rooms[code]
	if ok {
		delete(reg.rooms, code)
	}
	reg.mu.Unlock()
	if !ok {
		return
	}
	rm.Stop()
	reg.rec.RoomClosed()
	reg.events.Emit(Event{Type: EventRoomClosed, Room: code})
	log.Printf("room %s closed", code)
}

func generateCode(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = codeAlphabet[idx.Int64()]
	}
	return string(b)
}
