// Quick Math: first correct answer wins. The answer control locks the
// moment a submission is in flight and unlocks only if the room server
// reports the answer was wrong.

package main

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type quickMathMove struct {
	Answer int `json:"answer"`
}

type quickMathState struct {
	Question string `json:"question"`
}

type quickMathVerdict struct {
	Correct bool `json:"correct"`
}

type quickMathResults struct {
	Winner        string         `json:"winner"`
	Question      string         `json:"question"`
	CorrectAnswer int            `json:"correct_answer"`
	ResultType    string         `json:"result_type"`
	Answers       map[string]int `json:"answers"`
}

type quickMathGame struct {
	ctx     PluginContext
	surface Surface

	question string
	locked   bool
	status   string
}

func newQuickMathGame(ctx PluginContext) Plugin {
	return &quickMathGame{ctx: ctx}
}

func (g *quickMathGame) Mount(s Surface, game *ActiveGame) {
	g.surface = s
	g.status = "Answer as fast as you can"

	var st quickMathState
	if err := json.Unmarshal(game.StateData, &st); err == nil {
		g.question = st.Question
	}

	g.render()
}

func (g *quickMathGame) OnMoveResponse(resp *MoveResponse) {
	if !g.surface.Alive() {
		return
	}

	var verdict quickMathVerdict
	if len(resp.Data) > 0 {
		_ = json.Unmarshal(resp.Data, &verdict)
	}

	switch {
	case !resp.Success:
		g.locked = false
		g.status = resp.Message
	case verdict.Correct:
		g.status = "Correct!"
	default:
		// One answer per player per round; a wrong one just waits for
		// the opponent.
		g.status = "Wrong answer"
	}
	g.render()
}

func (g *quickMathGame) OnEnded(results json.RawMessage) {
	var res quickMathResults
	if err := json.Unmarshal(results, &res); err != nil {
		return
	}

	question := res.Question
	if question == "" {
		question = g.question
	}

	won := res.Winner != "" && res.Winner == g.ctx.PlayerID

	var headline string
	switch {
	case res.Winner == "":
		headline = "Nobody got it"
	case won:
		headline = "You Won!"
	default:
		headline = "You Lost"
	}

	g.surface.Render(View{
		Status: headline,
		Lines:  []string{fmt.Sprintf("%s = %d", question, res.CorrectAnswer)},
	})

	if g.ctx.Mode == ModeChallenge && res.Winner != "" && !won {
		g.ctx.Challenge(g.ctx.DisplayName)
	}
}

func (g *quickMathGame) render() {
	g.surface.Render(View{
		Status: g.status,
		Lines:  []string{g.question},
		Controls: []Control{{
			ID:       "answer",
			Label:    "answer <n>",
			Disabled: g.locked,
		}},
		OnInput: func(_, value string) {
			g.submit(value)
		},
	})
}

func (g *quickMathGame) submit(value string) {
	if g.locked {
		return
	}

	answer, err := strconv.Atoi(value)
	if err != nil {
		g.status = "Answers are whole numbers"
		g.render()
		return
	}

	g.locked = true
	g.status = "Checking..."
	g.ctx.submitMove(quickMathMove{Answer: answer})
	g.render()
}
