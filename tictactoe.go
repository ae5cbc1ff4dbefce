// Tic Tac Toe: alternating turns on a 3x3 board.
//
// Whose turn it is always comes from the latest snapshot's current_player
// field, never from counting locally observed moves. Cell occupancy is
// monotonic: once a cell has been seen filled it stays filled on screen
// even if a stale or duplicate broadcast arrives with it empty.

package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type tttMove struct {
	Position int `json:"position"`
}

type tttState struct {
	Board          []string          `json:"board"`
	PlayerToSymbol map[string]string `json:"player_to_symbol"`
	CurrentPlayer  string            `json:"current_player"`
}

type tttResults struct {
	Winner string         `json:"winner"` // player id, or empty on a draw
	Scores map[string]int `json:"scores"`
}

type tttGame struct {
	ctx     PluginContext
	surface Surface

	board  [9]string
	symbol string
	myTurn bool
	status string
}

func newTicTacToeGame(ctx PluginContext) Plugin {
	return &tttGame{ctx: ctx}
}

func (g *tttGame) Mount(s Surface, game *ActiveGame) {
	g.surface = s

	var st tttState
	if err := json.Unmarshal(game.StateData, &st); err == nil {
		g.apply(st)
	}

	g.render()
}

// apply merges a snapshot into the local board. Filled cells only ever
// accumulate.
func (g *tttGame) apply(st tttState) {
	for i := 0; i < len(g.board) && i < len(st.Board); i++ {
		if st.Board[i] != "" {
			g.board[i] = st.Board[i]
		}
	}

	g.symbol = st.PlayerToSymbol[g.ctx.PlayerID]
	g.myTurn = st.CurrentPlayer == g.ctx.PlayerID

	if g.myTurn {
		g.status = fmt.Sprintf("Your turn (%s)", g.symbol)
	} else {
		g.status = "Opponent's turn"
	}
}

func (g *tttGame) OnMoveResponse(resp *MoveResponse) {
	if !g.surface.Alive() {
		return
	}

	if !resp.Success {
		g.status = resp.Message
		g.render()
	}
}

func (g *tttGame) OnMoveMade(room *RoomSnapshot) {
	if !g.surface.Alive() || room.CurrentGame == nil {
		return
	}

	var st tttState
	if err := json.Unmarshal(room.CurrentGame.StateData, &st); err != nil {
		return
	}

	g.apply(st)
	g.render()
}

func (g *tttGame) OnEnded(results json.RawMessage) {
	var res tttResults
	if err := json.Unmarshal(results, &res); err != nil {
		return
	}

	headline := "Draw"
	switch res.Winner {
	case "":
	case g.ctx.PlayerID:
		headline = "You Won!"
	default:
		headline = "You Lost"
	}

	g.surface.Render(View{
		Status: headline,
		Lines:  g.boardLines(),
	})

	if g.ctx.Mode == ModeChallenge && res.Winner != "" && res.Winner != g.ctx.PlayerID {
		g.ctx.Challenge(g.ctx.DisplayName)
	}
}

func (g *tttGame) boardLines() []string {
	lines := make([]string, 0, 3)
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			cell := g.board[row*3+col]
			if cell == "" {
				cell = "."
			}
			cells[col] = cell
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return lines
}

func (g *tttGame) render() {
	controls := make([]Control, 0, 9)
	for i := range g.board {
		controls = append(controls, Control{
			ID:       strconv.Itoa(i),
			Label:    strconv.Itoa(i),
			Disabled: !g.myTurn || g.board[i] != "",
		})
	}

	g.surface.Render(View{
		Status:   g.status,
		Lines:    g.boardLines(),
		Controls: controls,
		OnInput: func(id, _ string) {
			g.submit(id)
		},
	})
}

func (g *tttGame) submit(id string) {
	pos, err := strconv.Atoi(id)
	if err != nil || pos < 0 || pos >= len(g.board) {
		return
	}
	if !g.myTurn || g.board[pos] != "" {
		return
	}
	g.ctx.submitMove(tttMove{Position: pos})
}
