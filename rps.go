// Rock Paper Scissors: simultaneous hidden choices, best-of-N.
//
// The choice controls lock as soon as a choice is submitted and unlock
// only when a snapshot carries a strictly newer round index; a duplicate
// broadcast of the current round never flips them. Completed rounds are
// mapped from the server's p1/p2 labels to mine/theirs using the player
// ordering of the snapshot being displayed, never an ordering captured
// earlier.

package main

import (
	"encoding/json"
	"fmt"
)

type rpsMove struct {
	Choice string `json:"choice"`
	Round  int    `json:"round"`
}

type rpsRound struct {
	Round    int    `json:"round"`
	P1Choice string `json:"p1_choice"`
	P2Choice string `json:"p2_choice"`
	Winner   string `json:"winner"` // player id, empty on a tie
	Result   string `json:"result"`
}

type rpsState struct {
	CurrentRound int               `json:"current_round"`
	BestOf       int               `json:"best_of"`
	Rounds       []rpsRound        `json:"rounds"`
	Choices      map[string]string `json:"choices"`
}

type rpsResults struct {
	Winner string         `json:"winner"`
	Scores map[string]int `json:"scores"`
	BestOf int            `json:"best_of"`
}

type rpsGame struct {
	ctx     PluginContext
	surface Surface

	round  int  // round submissions are tagged with
	shown  int  // completed rounds already displayed
	chosen bool // submitted for the current round
	status string
	result []string // last displayed round block
}

func newRPSGame(ctx PluginContext) Plugin {
	return &rpsGame{ctx: ctx, round: 1}
}

func (g *rpsGame) Mount(s Surface, game *ActiveGame) {
	g.surface = s
	g.shown = 0
	g.result = nil
	g.status = "Make your choice"

	var st rpsState
	if err := json.Unmarshal(game.StateData, &st); err == nil {
		if st.CurrentRound > 0 {
			g.round = st.CurrentRound
		}
		g.chosen = st.Choices[g.ctx.PlayerID] != ""
	}

	g.render()
}

func (g *rpsGame) OnMoveResponse(resp *MoveResponse) {
	if !g.surface.Alive() {
		return
	}

	if resp.Success {
		g.status = "Waiting for opponent..."
	} else {
		// Rejected submission: unlock the controls and say why.
		g.chosen = false
		g.status = resp.Message
	}
	g.render()
}

func (g *rpsGame) OnMoveMade(room *RoomSnapshot) {
	if !g.surface.Alive() || room.CurrentGame == nil {
		return
	}

	var st rpsState
	if err := json.Unmarshal(room.CurrentGame.StateData, &st); err != nil {
		return
	}

	if st.CurrentRound > g.round {
		// A strictly newer round resets the choice state; a duplicate
		// broadcast of the same round must not.
		g.round = st.CurrentRound
		g.chosen = st.Choices[g.ctx.PlayerID] != ""
		if !g.chosen {
			g.status = "Make your choice"
		}
	} else if st.Choices[g.ctx.PlayerID] != "" {
		g.chosen = true
		g.status = "Waiting for opponent..."
	}

	if len(st.Rounds) > g.shown {
		last := st.Rounds[len(st.Rounds)-1]
		if last.P1Choice != "" && last.P2Choice != "" {
			g.showRound(room, last)
			g.shown = len(st.Rounds)
		}
	}

	g.render()
}

// showRound maps the round's p1/p2 choices onto this player using the
// ordering of the snapshot currently on screen.
func (g *rpsGame) showRound(room *RoomSnapshot, round rpsRound) {
	mine, theirs := round.P2Choice, round.P1Choice
	if len(room.Players) > 0 && room.Players[0].PlayerID == g.ctx.PlayerID {
		mine, theirs = round.P1Choice, round.P2Choice
	}

	var outcome string
	switch {
	case round.Winner == "":
		outcome = "Tie"
	case round.Winner == g.ctx.PlayerID:
		outcome = "You win the round"
	default:
		outcome = "You lose the round"
	}

	g.result = []string{
		fmt.Sprintf("Round %d: you played %s, opponent played %s", round.Round, mine, theirs),
		outcome,
	}
}

func (g *rpsGame) OnEnded(results json.RawMessage) {
	var res rpsResults
	if err := json.Unmarshal(results, &res); err != nil {
		return
	}

	won := res.Winner == g.ctx.PlayerID

	headline := "You Lost"
	if won {
		headline = "You Won!"
	}

	mine := res.Scores[g.ctx.PlayerID]
	theirs := 0
	for id, score := range res.Scores {
		if id != g.ctx.PlayerID {
			theirs = score
		}
	}

	g.surface.Render(View{
		Status: headline,
		Lines: []string{
			fmt.Sprintf("Best of %d", res.BestOf),
			fmt.Sprintf("You: %d  Opponent: %d", mine, theirs),
		},
	})

	if g.ctx.Mode == ModeChallenge && !won {
		g.ctx.Challenge(g.ctx.DisplayName)
	}
}

func (g *rpsGame) render() {
	controls := make([]Control, 0, 3)
	for _, choice := range []string{"rock", "paper", "scissors"} {
		controls = append(controls, Control{
			ID:       choice,
			Label:    choice,
			Disabled: g.chosen,
		})
	}

	g.surface.Render(View{
		Status:   g.status,
		Lines:    g.result,
		Controls: controls,
		OnInput: func(id, _ string) {
			g.submit(id)
		},
	})
}

func (g *rpsGame) submit(choice string) {
	if g.chosen {
		return
	}
	g.chosen = true
	g.status = "Waiting for opponent..."
	g.ctx.submitMove(rpsMove{Choice: choice, Round: g.round})
	g.render()
}
