package room

import (
	"fmt"
	"sort"
	"time"

	"hackball/internal/game"
	"hackball/internal/protocol"
)

func playerID(n int) string {
	return fmt.Sprintf("p%d", n)
}

// ordered returns the room's players in join order so snapshots and rosters
// are deterministic.
func (r *Room) ordered() []*game.Player {
	players := make([]*game.Player, 0, len(r.state.Players))
	for _, p := range r.state.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].JoinSeq < players[j].JoinSeq })
	return players
}

// buildState assembles the post-tick snapshot.
func (r *Room) buildState() protocol.State {
	ordered := r.ordered()
	players := make([]protocol.PlayerSnapshot, 0, len(ordered))
	for _, p := range ordered {
		players = append(players, protocol.PlayerSnapshot{
			ID:       p.ID,
			Nickname: p.Nickname,
			Team:     string(p.Team),
			X:        p.X,
			Y:        p.Y,
			VX:       p.VX,
			VY:       p.VY,
		})
	}

	return protocol.State{
		Tick:    r.state.Tick,
		Players: players,
		Ball: protocol.BallSnapshot{
			X:  r.state.Ball.X,
			Y:  r.state.Ball.Y,
			VX: r.state.Ball.VX,
			VY: r.state.Ball.VY,
		},
		Score:         protocol.Score{Red: r.state.Score.Red, Blue: r.state.Score.Blue},
		TimeRemaining: r.timeRemaining().Seconds(),
	}
}

func (r *Room) buildRoster() protocol.Players {
	ordered := r.ordered()
	infos := make([]protocol.PlayerInfo, 0, len(ordered))
	for _, p := range ordered {
		infos = append(infos, protocol.PlayerInfo{
			ID:       p.ID,
			Nickname: p.Nickname,
			Team:     string(p.Team),
			IsHost:   p.IsHost,
		})
	}
	return protocol.Players{Players: infos}
}

func (r *Room) timeRemaining() time.Duration {
	if r.phase == PhaseEnded {
		return 0
	}
	left := r.opts.MatchDuration - time.Since(r.startedAt)
	if left < 0 {
		left = 0
	}
	return left
}
