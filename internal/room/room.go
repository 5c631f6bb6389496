package room

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"hackball/internal/game"
	"hackball/internal/protocol"
)

// Phase is the room lifecycle state.
type Phase int

const (
	PhaseActive Phase = iota
	PhaseEnded
)

// Options configures one room. Zero values fall back to defaults.
type Options struct {
	TickRate      int           // simulation ticks per second
	MatchDuration time.Duration // match clock
	MaxPlayers    int           // join capacity
	DestroyOnEnd  bool          // tear down on match end instead of keeping the end screen
	Field         game.Field
}

func (o Options) withDefaults() Options {
	if o.TickRate <= 0 {
		o.TickRate = 60
	}
	if o.MatchDuration <= 0 {
		o.MatchDuration = 3 * time.Minute
	}
	if o.MaxPlayers <= 0 {
		o.MaxPlayers = 12
	}
	if o.Field.Width == 0 {
		o.Field = game.DefaultField()
	}
	return o
}

// Room owns one match: its entities, score, tick loop and broadcast fan-out.
// All mutable state is touched only by the Run goroutine; everything outside
// talks to it through the inbox.
type Room struct {
	code string
	opts Options

	inbox    chan any
	quit     chan struct{}
	stopOnce sync.Once

	state   game.State
	clients map[string]Conn
	nextID  int
	nextSeq int

	phase     Phase
	startedAt time.Time

	count atomic.Int32 // player count, readable off the room goroutine

	onEmpty func(code string)
	events  *EventLog
	rec     Recorder
}

// New creates a room. Run must be started by the caller (the registry does
// this) and stops when the last player leaves.
func New(code string, opts Options, events *EventLog, rec Recorder, onEmpty func(code string)) *Room {
	opts = opts.withDefaults()
	if rec == nil {
		rec = NopRecorder{}
	}
	return &Room{
		code:    code,
		opts:    opts,
		inbox:   make(chan any, 256),
		quit:    make(chan struct{}),
		state:   game.NewState(opts.Field),
		clients: make(map[string]Conn),
		nextID:  1,
		phase:   PhaseActive,
		onEmpty: onEmpty,
		events:  events,
		rec:     rec,
	}
}

// Code returns the room identifier.
func (r *Room) Code() string { return r.code }

// NumPlayers returns the current player count. Safe from any goroutine.
func (r *Room) NumPlayers() int { return int(r.count.Load()) }

// Done is closed when the room has been torn down.
func (r *Room) Done() <-chan struct{} { return r.quit }

// Stop tears the room down and stops its tick scheduling.
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.quit)
	})
}

// Run is the room's only goroutine: fixed-interval ticker plus command
// inbox. Tick cadence is 60 Hz by default; commands mutate intent and
// membership only, never physics.
func (r *Room) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(r.opts.TickRate))
	defer ticker.Stop()

	r.startedAt = time.Now()

	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.inbox:
			r.handle(cmd)
		case <-ticker.C:
			if r.phase != PhaseActive {
				continue
			}
			start := time.Now()
			r.tick()
			r.rec.ObserveTick(time.Since(start))
		}
	}
}

// tick runs one simulation step and broadcasts the post-tick snapshot.
func (r *Room) tick() {
	if goal := game.Step(&r.state, r.opts.Field); goal != nil {
		r.rec.GoalScored(string(goal.Scorer))
		r.events.Emit(Event{Type: EventGoal, Room: r.code, Payload: GoalPayload{
			Scorer: string(goal.Scorer),
			Red:    goal.Score.Red,
			Blue:   goal.Score.Blue,
		}})
		log.Printf("room %s: goal for %s (%d-%d)", r.code, goal.Scorer, goal.Score.Red, goal.Score.Blue)
		r.broadcast(protocol.MsgScore, protocol.ScoreEvent{
			Score:  protocol.Score{Red: goal.Score.Red, Blue: goal.Score.Blue},
			Scorer: string(goal.Scorer),
		})
	}

	if time.Since(r.startedAt) >= r.opts.MatchDuration {
		r.endMatch()
		return
	}

	r.broadcast(protocol.MsgState, r.buildState())
}

// endMatch transitions Active -> Ended: final snapshot, match-end event,
// no further simulation. The room stays addressable until empty unless
// DestroyOnEnd is set.
func (r *Room) endMatch() {
	r.phase = PhaseEnded
	r.rec.MatchEnded()
	final := protocol.Score{Red: r.state.Score.Red, Blue: r.state.Score.Blue}
	log.Printf("room %s: match ended %d-%d", r.code, final.Red, final.Blue)
	r.events.Emit(Event{Type: EventMatchEnd, Room: r.code, Payload: GoalPayload{
		Red:  final.Red,
		Blue: final.Blue,
	}})
	r.broadcast(protocol.MsgState, r.buildState())
	r.broadcast(protocol.MsgMatchEnd, protocol.MatchEnd{Score: final})

	if r.opts.DestroyOnEnd {
		for id := range r.clients {
			r.removePlayer(id)
		}
		r.teardown()
	}
}

func (r *Room) handle(cmd any) {
	switch c := cmd.(type) {
	case joinCmd:
		r.handleJoin(c)
	case inputCmd:
		r.handleInput(c)
	case leaveCmd:
		r.handleLeave(c.playerID)
	case changeTeamCmd:
		r.handleChangeTeam(c)
	case kickPlayerCmd:
		r.handleKickPlayer(c)
	case transferHostCmd:
		r.handleTransferHost(c)
	}
}

func (r *Room) handleJoin(c joinCmd) {
	if r.phase == PhaseEnded {
		c.reply <- joinReply{err: ErrMatchEnded}
		return
	}
	if len(r.state.Players) >= r.opts.MaxPlayers {
		c.reply <- joinReply{err: ErrRoomFull}
		return
	}
	for _, p := range r.state.Players {
		if p.Nickname == c.nickname {
			c.reply <- joinReply{err: ErrNicknameTaken}
			return
		}
	}

	team := c.team
	if !team.Valid() {
		team = r.smallerTeam()
	}

	id := playerID(r.nextID)
	r.nextID++
	seq := r.nextSeq
	r.nextSeq++

	p := game.NewPlayer(id, c.nickname, team, seq, r.opts.Field)
	p.IsHost = len(r.state.Players) == 0
	r.state.Players[id] = p
	r.clients[id] = c.conn
	r.count.Store(int32(len(r.clients)))
	r.rec.PlayerJoined()
	r.events.Emit(Event{Type: EventPlayerJoin, Room: r.code, Player: id, Payload: JoinPayload{
		Nickname: c.nickname,
		Team:     string(team),
	}})
	log.Printf("room %s: %s joined as %s (%s)", r.code, c.nickname, id, team)

	c.reply <- joinReply{playerID: id, isHost: p.IsHost}

	r.sendTo(c.conn, protocol.MsgInit, protocol.Init{
		PlayerID:    id,
		RoomID:      r.code,
		IsHost:      p.IsHost,
		FieldWidth:  r.opts.Field.Width,
		FieldHeight: r.opts.Field.Height,
		TickRate:    r.opts.TickRate,
		Snapshot:    r.buildState(),
	})
	r.broadcastRoster()
}

func (r *Room) handleInput(c inputCmd) {
	p, ok := r.state.Players[c.playerID]
	if !ok {
		return
	}
	// A kick already pending survives until the tick consumes it.
	kick := p.Intent.Kick || c.intent.Kick
	p.Intent = c.intent
	p.Intent.Kick = kick
}

func (r *Room) handleLeave(playerID string) {
	p, ok := r.state.Players[playerID]
	if !ok {
		return
	}
	wasHost := p.IsHost
	nickname := p.Nickname
	r.removePlayer(playerID)
	r.rec.PlayerLeft()
	r.events.Emit(Event{Type: EventPlayerLeave, Room: r.code, Player: playerID, Payload: JoinPayload{
		Nickname: nickname,
	}})
	log.Printf("room %s: %s left", r.code, nickname)

	if len(r.state.Players) == 0 {
		r.teardown()
		return
	}
	if wasHost {
		r.promoteHost()
	}
	r.broadcastRoster()
}

func (r *Room) handleChangeTeam(c changeTeamCmd) {
	if !r.isHost(c.requesterID) {
		r.reportUnauthorized(c.requesterID, "changeTeam requires host")
		return
	}
	target, ok := r.state.Players[c.targetID]
	if !ok || !c.team.Valid() {
		return
	}
	target.Team = c.team
	// Position resyncs on the next state broadcast.
	r.broadcastRoster()
}

func (r *Room) handleKickPlayer(c kickPlayerCmd) {
	if !r.isHost(c.requesterID) {
		r.reportUnauthorized(c.requesterID, "kickPlayer requires host")
		return
	}
	if _, ok := r.state.Players[c.targetID]; !ok || c.targetID == c.requesterID {
		return
	}
	log.Printf("room %s: host kicked %s", r.code, c.targetID)
	r.handleLeave(c.targetID)
}

func (r *Room) handleTransferHost(c transferHostCmd) {
	if !r.isHost(c.requesterID) {
		r.reportUnauthorized(c.requesterID, "transferHost requires host")
		return
	}
	target, ok := r.state.Players[c.targetID]
	if !ok {
		return
	}
	// Exactly one host at any instant: both flags flip inside this handler.
	r.state.Players[c.requesterID].IsHost = false
	target.IsHost = true
	r.broadcastRoster()
}

// removePlayer drops a player and closes its connection. Host promotion and
// roster broadcasts are the caller's concern.
func (r *Room) removePlayer(playerID string) {
	if conn, ok := r.clients[playerID]; ok {
		_ = conn.Close()
		delete(r.clients, playerID)
	}
	delete(r.state.Players, playerID)
	r.count.Store(int32(len(r.clients)))
}

// promoteHost makes the earliest-joined remaining player host.
func (r *Room) promoteHost() {
	var next *game.Player
	for _, p := range r.state.Players {
		if next == nil || p.JoinSeq < next.JoinSeq {
			next = p
		}
	}
	if next != nil {
		next.IsHost = true
		log.Printf("room %s: %s promoted to host", r.code, next.Nickname)
	}
}

// teardown stops tick scheduling and releases the room. A still-ticking
// empty room is a leak, so this must run as soon as the room empties.
func (r *Room) teardown() {
	r.Stop()
	if r.onEmpty != nil {
		r.onEmpty(r.code)
	}
}

func (r *Room) isHost(playerID string) bool {
	p, ok := r.state.Players[playerID]
	return ok && p.IsHost
}

func (r *Room) smallerTeam() game.Team {
	red, blue := 0, 0
	for _, p := range r.state.Players {
		if p.Team == game.TeamRed {
			red++
		} else {
			blue++
		}
	}
	if blue < red {
		return game.TeamBlue
	}
	return game.TeamRed
}

func (r *Room) reportUnauthorized(playerID, msg string) {
	conn, ok := r.clients[playerID]
	if !ok {
		return
	}
	r.sendTo(conn, protocol.MsgError, protocol.Error{
		Kind:    protocol.ErrKindUnauthorized,
		Message: msg,
	})
}

// broadcast fans one frame out to every member. A failed send marks the
// connection dead and reaps it; it never aborts the tick for the others.
func (r *Room) broadcast(msgType string, payload any) {
	b, err := protocol.Encode(msgType, payload)
	if err != nil {
		return
	}
	var failed []string
	for id, conn := range r.clients {
		if err := conn.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.handleLeave(id)
	}
}

func (r *Room) sendTo(conn Conn, msgType string, payload any) {
	b, err := protocol.Encode(msgType, payload)
	if err != nil {
		return
	}
	_ = conn.Send(b)
}

func (r *Room) broadcastRoster() {
	r.broadcast(protocol.MsgPlayers, r.buildRoster())
}

// Enqueue methods, callable from any goroutine. The inbox is bounded and
// drops on overflow so a flooding client cannot stall the tick loop.

func (r *Room) enqueue(cmd any) {
	select {
	case r.inbox <- cmd:
	case <-r.quit:
	default:
		r.rec.CommandDropped()
	}
}

// Join inserts a player, blocking until the room goroutine replies or the
// room is torn down.
func (r *Room) Join(conn Conn, nickname string, team game.Team) (playerID string, isHost bool, err error) {
	reply := make(chan joinReply, 1)
	select {
	case r.inbox <- joinCmd{conn: conn, nickname: nickname, team: team, reply: reply}:
	case <-r.quit:
		return "", false, ErrRoomNotFound
	}
	select {
	case rep := <-reply:
		return rep.playerID, rep.isHost, rep.err
	case <-r.quit:
		return "", false, ErrRoomNotFound
	}
}

// Input records a player's latest movement intent, consumed next tick.
func (r *Room) Input(playerID string, intent game.Intent) {
	r.enqueue(inputCmd{playerID: playerID, intent: intent})
}

// Leave removes a player; issued on disconnect.
func (r *Room) Leave(playerID string) {
	r.enqueue(leaveCmd{playerID: playerID})
}

// ChangeTeam reassigns a player's team. Host only.
func (r *Room) ChangeTeam(requesterID, targetID string, team game.Team) {
	r.enqueue(changeTeamCmd{requesterID: requesterID, targetID: targetID, team: team})
}

// KickPlayer forcibly removes a player. Host only.
func (r *Room) KickPlayer(requesterID, targetID string) {
	r.enqueue(kickPlayerCmd{requesterID: requesterID, targetID: targetID})
}

// TransferHost hands host privileges to another player. Host only.
func (r *Room) TransferHost(requesterID, targetID string) {
	r.enqueue(transferHostCmd{requesterID: requesterID, targetID: targetID})
}
