package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type terminalHarness struct {
	ui      *terminalUI
	adapter *fakeAdapter
	out     *bytes.Buffer
	session *Session
	timers  *timerQueue
}

// newTerminalHarness wires a real terminal UI to a real session over the
// loopback adapter.
func newTerminalHarness(t *testing.T) *terminalHarness {
	t.Helper()

	cfg := testConfig()
	out := &bytes.Buffer{}
	adapter := &fakeAdapter{}
	ui := newTerminalUI(cfg, out)

	session := NewSession(cfg, adapter, ui)
	timers := &timerQueue{}
	session.afterFunc = timers.after
	ui.bind(session)

	return &terminalHarness{ui: ui, adapter: adapter, out: out, session: session, timers: timers}
}

func (h *terminalHarness) join(t *testing.T, others ...Player) {
	t.Helper()

	h.adapter.Dispatch(evConnectResponse, nil)
	h.adapter.Dispatch(evJoinRoomResponse, mustJSON(t, JoinRoomResponse{
		Success:     true,
		PlayerID:    playerOne.PlayerID,
		DisplayName: playerOne.DisplayName,
		Room:        roomWith(nil, append([]Player{playerOne}, others...)...),
	}))
}

func TestTerminalPhaseFrames(t *testing.T) {
	h := newTerminalHarness(t)

	t.Run("waiting frame", func(t *testing.T) {
		h.join(t)
		assert.Contains(t, h.out.String(), "Waiting for another player")
		assert.Contains(t, h.out.String(), "Swift Fox (you)")
	})

	t.Run("selection frame lists every game", func(t *testing.T) {
		h.out.Reset()
		h.adapter.Dispatch(evPlayerJoined, mustJSON(t, RosterUpdate{
			PlayerID: "p2",
			Room:     roomWith(nil, playerOne, playerTwo),
		}))

		frame := h.out.String()
		assert.Contains(t, frame, "Pick a game")
		for _, g := range []GameType{GameRPS, GameTicTacToe, GameReaction, GameQuickMath, GameWouldYouRather} {
			assert.Contains(t, frame, string(g))
		}
	})
}

func TestTerminalCommands(t *testing.T) {
	h := newTerminalHarness(t)
	h.join(t, playerTwo)

	t.Run("say sends chat", func(t *testing.T) {
		h.ui.dispatch("/say hello there")

		sent := h.adapter.lastSent(t, evChatMessage)
		msg, ok := sent.Data.(ChatMessage)
		require.True(t, ok)
		assert.Equal(t, "hello there", msg.Message)
	})

	t.Run("unknown game is rejected locally", func(t *testing.T) {
		h.out.Reset()
		h.ui.dispatch("/start checkers")

		assert.Contains(t, h.out.String(), "unknown game")
		assert.Empty(t, h.adapter.sentEvents(evStartGameRequest))
	})

	t.Run("start with challenge mode", func(t *testing.T) {
		h.ui.dispatch("/start rps challenge")

		sent := h.adapter.lastSent(t, evStartGameRequest)
		req, ok := sent.Data.(StartGameRequest)
		require.True(t, ok)
		assert.Equal(t, "rps", req.GameType)
		assert.True(t, req.ResetScores)
	})

	t.Run("switch returns to selection", func(t *testing.T) {
		h.ui.dispatch("/switch")

		assert.NotEmpty(t, h.adapter.sentEvents(evSwitchGameReq))
		assert.Equal(t, PhaseSelection, h.session.Phase())
	})
}

func TestTerminalGameInput(t *testing.T) {
	h := newTerminalHarness(t)
	h.join(t, playerTwo)

	h.adapter.Dispatch(evGameStarted, mustJSON(t, GameStarted{
		GameType: "rps",
		Room: roomWith(&ActiveGame{
			GameType:     "rps",
			PlayerScores: map[string]int{"p1": 0, "p2": 0},
			StateData:    mustJSON(t, rpsState{CurrentRound: 1, BestOf: 3}),
		}, playerOne, playerTwo),
	}))

	t.Run("enabled controls render as actionable", func(t *testing.T) {
		assert.Contains(t, h.out.String(), "(rock)")
	})

	t.Run("bare control id submits the move", func(t *testing.T) {
		h.ui.dispatch("rock")

		sent := h.adapter.lastSent(t, evGameMove)
		mv, ok := sent.Data.(GameMove)
		require.True(t, ok)
		assert.Equal(t, rpsMove{Choice: "rock", Round: 1}, mv.Move)
	})

	t.Run("locked controls render bracketed and swallow input", func(t *testing.T) {
		h.out.Reset()
		h.ui.dispatch("paper")

		assert.Len(t, h.adapter.sentEvents(evGameMove), 1)
	})

	t.Run("chat is visible during the game", func(t *testing.T) {
		h.out.Reset()
		h.adapter.Dispatch(evChatMessage, mustJSON(t, ChatMessage{
			PlayerID:    "p2",
			DisplayName: "Calm Owl",
			Message:     "good luck",
		}))

		assert.Contains(t, h.out.String(), "Calm Owl: good luck")
	})
}

func TestTerminalRunInput(t *testing.T) {
	h := newTerminalHarness(t)
	h.join(t, playerTwo)

	input := strings.NewReader("/say hi\n/leave\n")
	h.ui.runInput(context.Background(), input)

	assert.NotEmpty(t, h.adapter.sentEvents(evChatMessage))
	assert.NotEmpty(t, h.adapter.sentEvents(evLeaveRoomRequest))

	select {
	case <-h.session.Done():
	default:
		t.Fatal("session still open after /leave")
	}
}
