// Would You Rather: both players answer the same prompt and the reveal
// shows whether they agreed. There is no winner; the fun is the reveal.
//
// The room server only records choices; whether a round matched is
// derived here from the two recorded choices. Round history is additive,
// and the displayed prompt only advances when a snapshot carries a
// strictly newer round number. The advance itself is delayed briefly so
// the match reveal stays on screen.

package main

import (
	"encoding/json"
	"fmt"
	"time"
)

const wyrAdvanceDelay = 500 * time.Millisecond

type wyrMove struct {
	Choice string `json:"choice"` // "a" or "b"
}

type wyrQuestion struct {
	A string `json:"a"`
	B string `json:"b"`
}

type wyrRound struct {
	Round    int               `json:"round"`
	Question wyrQuestion       `json:"question"`
	Choices  map[string]string `json:"choices"`
}

// matched reports whether the recorded choices agree; ok is false until
// both players have one on record.
func (r wyrRound) matched(selfID string) (match, ok bool) {
	mine, here := r.Choices[selfID]
	if !here {
		return false, false
	}
	for id, choice := range r.Choices {
		if id != selfID {
			return choice == mine, true
		}
	}
	return false, false
}

type wyrState struct {
	Question  wyrQuestion       `json:"question"`
	Round     int               `json:"round"`
	MaxRounds int               `json:"max_rounds"`
	Choices   map[string]string `json:"choices"`
	Rounds    []wyrRound        `json:"rounds"`
}

type wyrResults struct {
	ResultType string     `json:"result_type"`
	MaxRounds  int        `json:"max_rounds"`
	Rounds     []wyrRound `json:"rounds"`
}

type wyrGame struct {
	ctx     PluginContext
	surface Surface

	round     int
	maxRounds int
	question  wyrQuestion
	answered  bool
	advancing bool
	shown     int
	history   []string
	status    string
}

func newWouldYouRatherGame(ctx PluginContext) Plugin {
	return &wyrGame{ctx: ctx, round: 1}
}

func (g *wyrGame) Mount(s Surface, game *ActiveGame) {
	g.surface = s
	g.status = "Would you rather..."

	var st wyrState
	if err := json.Unmarshal(game.StateData, &st); err == nil {
		if st.Round > 0 {
			g.round = st.Round
		}
		g.maxRounds = st.MaxRounds
		g.question = st.Question
		g.answered = st.Choices[g.ctx.PlayerID] != ""
	}

	g.render()
}

func (g *wyrGame) OnMoveResponse(resp *MoveResponse) {
	if !g.surface.Alive() {
		return
	}

	if resp.Success {
		g.status = "Waiting for the other answer..."
	} else {
		g.answered = false
		g.status = resp.Message
	}
	g.render()
}

func (g *wyrGame) OnMoveMade(room *RoomSnapshot) {
	if !g.surface.Alive() || room.CurrentGame == nil {
		return
	}

	var st wyrState
	if err := json.Unmarshal(room.CurrentGame.StateData, &st); err != nil {
		return
	}

	if len(st.Rounds) > g.shown {
		last := st.Rounds[len(st.Rounds)-1]
		if match, ok := last.matched(g.ctx.PlayerID); ok {
			verdict := "you disagreed"
			if match {
				verdict = "you matched!"
			}
			g.history = append(g.history, fmt.Sprintf("Round %d: %s", last.Round, verdict))
			g.shown = len(st.Rounds)
		}
	}

	if st.Round > g.round && !g.advancing {
		// Hold the reveal on screen, then move to the next prompt.
		g.advancing = true
		g.ctx.Schedule(wyrAdvanceDelay, func() {
			if !g.surface.Alive() {
				return
			}
			g.advancing = false
			g.round = st.Round
			g.question = st.Question
			g.answered = false
			g.status = "Would you rather..."
			g.render()
		})
	} else if st.Choices[g.ctx.PlayerID] != "" {
		g.answered = true
	}

	g.render()
}

func (g *wyrGame) OnEnded(results json.RawMessage) {
	var res wyrResults
	if err := json.Unmarshal(results, &res); err != nil {
		return
	}

	matches := 0
	for _, round := range res.Rounds {
		if match, ok := round.matched(g.ctx.PlayerID); ok && match {
			matches++
		}
	}

	g.surface.Render(View{
		Status: "That's a wrap",
		Lines: append(g.history,
			fmt.Sprintf("You matched on %d of %d rounds", matches, len(res.Rounds))),
	})

	// No winner here, so challenge mode flips a coin for who owes one.
	if g.ctx.Mode == ModeChallenge && g.ctx.Rand.Intn(2) == 0 {
		g.ctx.Challenge(g.ctx.DisplayName)
	}
}

func (g *wyrGame) render() {
	lines := make([]string, 0, len(g.history)+2)
	if g.maxRounds > 0 {
		lines = append(lines, fmt.Sprintf("Round %d of %d", g.round, g.maxRounds))
	}
	lines = append(lines, g.history...)

	g.surface.Render(View{
		Status: g.status,
		Lines:  lines,
		Controls: []Control{
			{ID: "a", Label: g.question.A, Disabled: g.answered || g.advancing},
			{ID: "b", Label: g.question.B, Disabled: g.answered || g.advancing},
		},
		OnInput: func(id, _ string) {
			g.submit(id)
		},
	})
}

func (g *wyrGame) submit(choice string) {
	if g.answered || g.advancing {
		return
	}
	if choice != "a" && choice != "b" {
		return
	}
	g.answered = true
	g.status = "Waiting for the other answer..."
	g.ctx.submitMove(wyrMove{Choice: choice})
	g.render()
}
