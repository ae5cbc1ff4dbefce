// Reaction: wait through a randomized delay, then tap as fast as possible.
//
// The tap control arms only after a locally scheduled 1-3s delay fires,
// and the delay callback checks that the surface is still live before
// arming. Nothing is sent to the room server before the control is armed.

package main

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	reactionDelayMin = time.Second
	reactionDelayVar = 2 * time.Second
)

type reactionMove struct {
	ReactionMS int `json:"reaction_ms"`
}

type reactionResults struct {
	Winner        string             `json:"winner"`
	ReactionTimes map[string]float64 `json:"reaction_times"`
}

type reactionGame struct {
	ctx     PluginContext
	surface Surface

	armed   bool
	done    bool
	armedAt time.Time
	status  string
}

func newReactionGame(ctx PluginContext) Plugin {
	return &reactionGame{ctx: ctx}
}

func (g *reactionGame) Mount(s Surface, game *ActiveGame) {
	g.surface = s
	g.status = "Get ready..."
	g.render()
	g.arm()
}

func (g *reactionGame) arm() {
	delay := reactionDelayMin + time.Duration(g.ctx.Rand.Int63n(int64(reactionDelayVar)))
	g.ctx.Schedule(delay, func() {
		if !g.surface.Alive() || g.done {
			return
		}
		g.armed = true
		g.armedAt = time.Now()
		g.status = "TAP NOW"
		g.render()
	})
}

func (g *reactionGame) OnMoveResponse(resp *MoveResponse) {
	if !g.surface.Alive() {
		return
	}

	if resp.Success {
		g.status = "Waiting for opponent..."
	} else {
		// Rejected tap, e.g. flagged as early: unlock and rearm.
		g.done = false
		g.armed = false
		g.status = resp.Message
		g.arm()
	}
	g.render()
}

func (g *reactionGame) OnEnded(results json.RawMessage) {
	var res reactionResults
	if err := json.Unmarshal(results, &res); err != nil {
		return
	}

	won := res.Winner == g.ctx.PlayerID

	headline := "You Lost"
	if won {
		headline = "You Won!"
	}

	lines := make([]string, 0, 2)
	if ms, ok := res.ReactionTimes[g.ctx.PlayerID]; ok {
		lines = append(lines, fmt.Sprintf("Your time: %.0f ms", ms))
	}
	for id, ms := range res.ReactionTimes {
		if id != g.ctx.PlayerID {
			lines = append(lines, fmt.Sprintf("Opponent: %.0f ms", ms))
		}
	}

	g.surface.Render(View{Status: headline, Lines: lines})

	if g.ctx.Mode == ModeChallenge && !won {
		g.ctx.Challenge(g.ctx.DisplayName)
	}
}

func (g *reactionGame) render() {
	g.surface.Render(View{
		Status: g.status,
		Controls: []Control{{
			ID:       "tap",
			Label:    "tap",
			Disabled: !g.armed || g.done,
		}},
		OnInput: func(_, _ string) {
			g.tap()
		},
	})
}

func (g *reactionGame) tap() {
	if !g.armed || g.done {
		return
	}
	g.done = true
	elapsed := time.Since(g.armedAt)
	g.status = fmt.Sprintf("%d ms", elapsed.Milliseconds())
	g.ctx.submitMove(reactionMove{ReactionMS: int(elapsed.Milliseconds())})
	g.render()
}
