package room

import (
	"testing"
	"time"

	"hackball/internal/game"
	"hackball/internal/protocol"
)

type fakeConn struct {
	sendCh chan []byte
	closed chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		sendCh: make(chan []byte, 256),
		closed: make(chan struct{}),
	}
}

func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	select {
	case f.sendCh <- cp:
	default:
	}
	return nil
}

func (f *fakeConn) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

func testOptions() Options {
	return Options{
		TickRate:      100, // fast ticks keep the tests short
		MatchDuration: time.Hour,
		MaxPlayers:    4,
	}
}

func startRoom(t *testing.T, opts Options) *Room {
	t.Helper()
	r := New("TEST42", opts, nil, nil, nil)
	go r.Run()
	t.Cleanup(r.Stop)
	return r
}

// waitFor drains a connection until a frame of the wanted type decodes into
// T, or fails the test on timeout.
func waitFor[T any](t *testing.T, fc *fakeConn, msgType string) T {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil || env.Type != msgType {
				continue
			}
			out, err := protocol.DecodePayload[T](env)
			if err != nil {
				t.Fatalf("decode %q payload: %v", msgType, err)
			}
			return out
		case <-timeout:
			t.Fatalf("timed out waiting for %q", msgType)
			panic("unreachable")
		}
	}
}

func TestJoinRepliesWithIdentityAndInit(t *testing.T) {
	r := startRoom(t, testOptions())

	fc := newFakeConn()
	id, isHost, err := r.Join(fc, "ana", "")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a player id")
	}
	if !isHost {
		t.Error("first player should be host")
	}

	init := waitFor[protocol.Init](t, fc, protocol.MsgInit)
	if init.PlayerID != id || init.RoomID != "TEST42" || !init.IsHost {
		t.Errorf("unexpected init: %+v", init)
	}
	if init.FieldWidth != 1000 || init.FieldHeight != 600 {
		t.Errorf("init should carry default field dims, got %vx%v", init.FieldWidth, init.FieldHeight)
	}
}

func TestSecondJoinIsNotHostAndAutoBalances(t *testing.T) {
	r := startRoom(t, testOptions())

	fc1 := newFakeConn()
	_, _, err := r.Join(fc1, "ana", "")
	if err != nil {
		t.Fatalf("join 1: %v", err)
	}
	fc2 := newFakeConn()
	_, isHost, err := r.Join(fc2, "bob", "")
	if err != nil {
		t.Fatalf("join 2: %v", err)
	}
	if isHost {
		t.Error("second player should not be host")
	}

	roster := waitFor[protocol.Players](t, fc2, protocol.MsgPlayers)
	if len(roster.Players) != 2 {
		t.Fatalf("roster should have 2 players, got %d", len(roster.Players))
	}
	if roster.Players[0].Team == roster.Players[1].Team {
		t.Errorf("auto-balance should split teams, both on %s", roster.Players[0].Team)
	}
}

func TestDuplicateNicknameRejected(t *testing.T) {
	r := startRoom(t, testOptions())

	fc1 := newFakeConn()
	if _, _, err := r.Join(fc1, "ana", ""); err != nil {
		t.Fatalf("join 1: %v", err)
	}
	fc2 := newFakeConn()
	if _, _, err := r.Join(fc2, "ana", ""); err != ErrNicknameTaken {
		t.Fatalf("expected ErrNicknameTaken, got %v", err)
	}
	if r.NumPlayers() != 1 {
		t.Errorf("rejected join should not change membership, got %d players", r.NumPlayers())
	}
}

func TestRoomFullRejected(t *testing.T) {
	opts := testOptions()
	opts.MaxPlayers = 2
	r := startRoom(t, opts)

	names := []string{"ana", "bob"}
	for _, n := range names {
		if _, _, err := r.Join(newFakeConn(), n, ""); err != nil {
			t.Fatalf("join %s: %v", n, err)
		}
	}
	if _, _, err := r.Join(newFakeConn(), "carol", ""); err != ErrRoomFull {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestInputMovesPlayerInSnapshots(t *testing.T) {
	r := startRoom(t, testOptions())

	fc := newFakeConn()
	id, _, err := r.Join(fc, "mover", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	r.Input(id, game.Intent{Right: true})

	first := waitFor[protocol.State](t, fc, protocol.MsgState)
	var firstX float64
	for _, p := range first.Players {
		if p.ID == id {
			firstX = p.X
		}
	}

	// The intent keeps accelerating, so any later snapshot must be to the
	// right of an earlier one.
	time.Sleep(50 * time.Millisecond)
	later := waitFor[protocol.State](t, fc, protocol.MsgState)
	var laterX float64
	for _, p := range later.Players {
		if p.ID == id {
			laterX = p.X
		}
	}
	if laterX <= firstX {
		t.Errorf("expected x to increase, first=%v later=%v", firstX, laterX)
	}
}

func TestHostLeaveLongestTenuredPromoted(t *testing.T) {
	r := startRoom(t, testOptions())

	fcHost := newFakeConn()
	hostID, _, err := r.Join(fcHost, "host", "")
	if err != nil {
		t.Fatalf("join host: %v", err)
	}
	fc2 := newFakeConn()
	id2, _, err := r.Join(fc2, "second", "")
	if err != nil {
		t.Fatalf("join second: %v", err)
	}
	fc3 := newFakeConn()
	if _, _, err := r.Join(fc3, "third", ""); err != nil {
		t.Fatalf("join third: %v", err)
	}

	r.Leave(hostID)

	timeout := time.After(2 * time.Second)
	for {
		select {
		case b := <-fc2.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil || env.Type != protocol.MsgPlayers {
				continue
			}
			roster, err := protocol.DecodePayload[protocol.Players](env)
			if err != nil {
				t.Fatalf("decode roster: %v", err)
			}
			// Only rosters from after the host left matter.
			gone := true
			for _, p := range roster.Players {
				if p.ID == hostID {
					gone = false
				}
			}
			if !gone {
				continue
			}
			for _, p := range roster.Players {
				if p.IsHost && p.ID != id2 {
					t.Fatalf("wrong player promoted: %s", p.ID)
				}
				if p.ID == id2 && p.IsHost {
					return // earliest-joined survivor got the room
				}
			}
		case <-timeout:
			t.Fatal("timed out waiting for post-leave roster")
		}
	}
}

func TestLastLeaveTearsDownRoom(t *testing.T) {
	emptied := make(chan string, 1)
	r := New("TEST42", testOptions(), nil, nil, func(code string) {
		emptied <- code
	})
	go r.Run()
	defer r.Stop()

	fc := newFakeConn()
	id, _, err := r.Join(fc, "ana", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	r.Leave(id)

	select {
	case code := <-emptied:
		if code != "TEST42" {
			t.Errorf("onEmpty should carry the room code, got %q", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for onEmpty")
	}

	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("room should stop after emptying")
	}

	if _, _, err := r.Join(newFakeConn(), "bob", ""); err != ErrRoomNotFound {
		t.Errorf("joining a torn-down room should fail, got %v", err)
	}
}

func TestNonHostLobbyCommandsRejected(t *testing.T) {
	r := startRoom(t, testOptions())

	fcHost := newFakeConn()
	hostID, _, err := r.Join(fcHost, "host", "")
	if err != nil {
		t.Fatalf("join host: %v", err)
	}
	fc2 := newFakeConn()
	id2, _, err := r.Join(fc2, "peon", "")
	if err != nil {
		t.Fatalf("join peon: %v", err)
	}

	r.KickPlayer(id2, hostID)

	errMsg := waitFor[protocol.Error](t, fc2, protocol.MsgError)
	if errMsg.Kind != protocol.ErrKindUnauthorized {
		t.Errorf("expected unauthorized error, got %q", errMsg.Kind)
	}
	if r.NumPlayers() != 2 {
		t.Errorf("membership should be untouched, got %d", r.NumPlayers())
	}
}

func TestHostCannotKickSelf(t *testing.T) {
	r := startRoom(t, testOptions())

	fc := newFakeConn()
	hostID, _, err := r.Join(fc, "host", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	r.KickPlayer(hostID, hostID)

	// Give the command time to land; the host must survive.
	time.Sleep(100 * time.Millisecond)
	if r.NumPlayers() != 1 {
		t.Errorf("self-kick should be a no-op, got %d players", r.NumPlayers())
	}
}

func TestHostKicksPlayer(t *testing.T) {
	r := startRoom(t, testOptions())

	fcHost := newFakeConn()
	hostID, _, err := r.Join(fcHost, "host", "")
	if err != nil {
		t.Fatalf("join host: %v", err)
	}
	fc2 := newFakeConn()
	id2, _, err := r.Join(fc2, "target", "")
	if err != nil {
		t.Fatalf("join target: %v", err)
	}

	r.KickPlayer(hostID, id2)

	select {
	case <-fc2.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("kicked player's connection should be closed")
	}
	if r.NumPlayers() != 1 {
		t.Errorf("expected 1 player after kick, got %d", r.NumPlayers())
	}
}

func TestTransferHost(t *testing.T) {
	r := startRoom(t, testOptions())

	fcHost := newFakeConn()
	hostID, _, err := r.Join(fcHost, "host", "")
	if err != nil {
		t.Fatalf("join host: %v", err)
	}
	fc2 := newFakeConn()
	id2, _, err := r.Join(fc2, "heir", "")
	if err != nil {
		t.Fatalf("join heir: %v", err)
	}

	r.TransferHost(hostID, id2)

	timeout := time.After(2 * time.Second)
	for {
		select {
		case b := <-fc2.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil || env.Type != protocol.MsgPlayers {
				continue
			}
			roster, err := protocol.DecodePayload[protocol.Players](env)
			if err != nil {
				t.Fatalf("decode roster: %v", err)
			}
			hosts := 0
			var current string
			for _, p := range roster.Players {
				if p.IsHost {
					hosts++
					current = p.ID
				}
			}
			if hosts == 1 && current == id2 {
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for host transfer roster")
		}
	}
}

func TestChangeTeamByHost(t *testing.T) {
	r := startRoom(t, testOptions())

	fcHost := newFakeConn()
	hostID, _, err := r.Join(fcHost, "host", "red")
	if err != nil {
		t.Fatalf("join host: %v", err)
	}
	fc2 := newFakeConn()
	id2, _, err := r.Join(fc2, "switcher", "red")
	if err != nil {
		t.Fatalf("join switcher: %v", err)
	}

	r.ChangeTeam(hostID, id2, game.TeamBlue)

	timeout := time.After(2 * time.Second)
	for {
		select {
		case b := <-fc2.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil || env.Type != protocol.MsgPlayers {
				continue
			}
			roster, err := protocol.DecodePayload[protocol.Players](env)
			if err != nil {
				t.Fatalf("decode roster: %v", err)
			}
			for _, p := range roster.Players {
				if p.ID == id2 && p.Team == "blue" {
					return
				}
			}
		case <-timeout:
			t.Fatal("timed out waiting for team change roster")
		}
	}
}

func TestMatchEndStopsSimulationAndRejectsJoins(t *testing.T) {
	opts := testOptions()
	opts.MatchDuration = 50 * time.Millisecond
	r := startRoom(t, opts)

	fc := newFakeConn()
	if _, _, err := r.Join(fc, "ana", ""); err != nil {
		t.Fatalf("join: %v", err)
	}

	end := waitFor[protocol.MatchEnd](t, fc, protocol.MsgMatchEnd)
	if end.Score.Red != 0 || end.Score.Blue != 0 {
		t.Errorf("untouched match should end 0-0, got %d-%d", end.Score.Red, end.Score.Blue)
	}

	if _, _, err := r.Join(newFakeConn(), "late", ""); err != ErrMatchEnded {
		t.Errorf("joining after full time should fail, got %v", err)
	}

	// The room must stay addressable for the end screen, not tear down.
	select {
	case <-r.Done():
		t.Error("room should stay up after match end while players remain")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPendingKickSurvivesIntentOverwrite(t *testing.T) {
	// Exercise the handler directly, without the goroutine, to pin the
	// kick-latching rule.
	r := New("TEST42", testOptions(), nil, nil, nil)

	fc := newFakeConn()
	reply := make(chan joinReply, 1)
	r.handleJoin(joinCmd{conn: fc, nickname: "ana", reply: reply})
	rep := <-reply
	if rep.err != nil {
		t.Fatalf("join: %v", rep.err)
	}

	r.handleInput(inputCmd{playerID: rep.playerID, intent: game.Intent{Kick: true}})
	r.handleInput(inputCmd{playerID: rep.playerID, intent: game.Intent{Right: true}})

	p := r.state.Players[rep.playerID]
	if !p.Intent.Kick {
		t.Error("pending kick should survive a later intent without it")
	}
	if !p.Intent.Right {
		t.Error("movement intent should be the latest one")
	}
}
