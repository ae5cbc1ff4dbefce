package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountQuickMath(t *testing.T, mode Mode) (*quickMathGame, *fakeSurface, *fakeAdapter, *[]string) {
	t.Helper()

	adapter := &fakeAdapter{}
	timers := &timerQueue{}
	ctx, challenged := testPluginContext(adapter, timers, mode)

	g, ok := newQuickMathGame(ctx).(*quickMathGame)
	require.True(t, ok)

	surface := &fakeSurface{}
	g.Mount(surface, &ActiveGame{
		GameType:  "quickmath",
		StateData: mustJSON(t, quickMathState{Question: "7 + 8"}),
	})

	return g, surface, adapter, challenged
}

func TestQuickMathSubmission(t *testing.T) {
	g, surface, adapter, _ := mountQuickMath(t, ModeSimple)

	t.Run("question is shown", func(t *testing.T) {
		assert.Contains(t, surface.last(t).Lines, "7 + 8")
	})

	t.Run("non-numeric input sends nothing", func(t *testing.T) {
		surface.press(t, "answer", "fifteen")
		assert.Empty(t, adapter.sentEvents(evGameMove))
		assert.Contains(t, surface.last(t).Status, "whole numbers")
	})

	t.Run("numeric answer locks the control", func(t *testing.T) {
		surface.press(t, "answer", "14")

		sent := adapter.lastSent(t, evGameMove)
		mv, ok := sent.Data.(GameMove)
		require.True(t, ok)
		assert.Equal(t, quickMathMove{Answer: 14}, mv.Move)
		assert.True(t, surface.control(t, "answer").Disabled)
	})

	t.Run("wrong verdict keeps the lock", func(t *testing.T) {
		g.OnMoveResponse(&MoveResponse{
			Success: true,
			Data:    mustJSON(t, quickMathVerdict{Correct: false}),
		})

		assert.True(t, surface.control(t, "answer").Disabled)
		assert.Contains(t, surface.last(t).Status, "Wrong")

		surface.press(t, "answer", "15")
		assert.Len(t, adapter.sentEvents(evGameMove), 1, "one answer per player per round")
	})
}

func TestQuickMathCorrectVerdict(t *testing.T) {
	g, surface, _, _ := mountQuickMath(t, ModeSimple)

	surface.press(t, "answer", "15")
	g.OnMoveResponse(&MoveResponse{
		Success: true,
		Data:    mustJSON(t, quickMathVerdict{Correct: true}),
	})

	assert.Equal(t, "Correct!", surface.last(t).Status)
	assert.True(t, surface.control(t, "answer").Disabled)
}

func TestQuickMathRejectedMoveUnlocks(t *testing.T) {
	g, surface, adapter, _ := mountQuickMath(t, ModeSimple)

	surface.press(t, "answer", "15")
	g.OnMoveResponse(&MoveResponse{Success: false, Message: "Invalid answer format"})

	assert.False(t, surface.control(t, "answer").Disabled)

	surface.press(t, "answer", "16")
	assert.Len(t, adapter.sentEvents(evGameMove), 2)
}

func TestQuickMathEnded(t *testing.T) {
	t.Run("loss in challenge mode", func(t *testing.T) {
		g, surface, _, challenged := mountQuickMath(t, ModeChallenge)

		g.OnEnded(mustJSON(t, quickMathResults{
			Winner:        "p2",
			Question:      "7 + 8",
			CorrectAnswer: 15,
			ResultType:    "first_correct",
			Answers:       map[string]int{"p1": 14, "p2": 15},
		}))

		view := surface.last(t)
		assert.Equal(t, "You Lost", view.Status)
		assert.Contains(t, view.Lines[0], "7 + 8 = 15")
		require.Len(t, *challenged, 1)
	})

	t.Run("nobody correct means nobody challenged", func(t *testing.T) {
		g, surface, _, challenged := mountQuickMath(t, ModeChallenge)

		g.OnEnded(mustJSON(t, quickMathResults{
			Question:      "7 + 8",
			CorrectAnswer: 15,
			ResultType:    "no_winner",
			Answers:       map[string]int{"p1": 14, "p2": 12},
		}))

		assert.Equal(t, "Nobody got it", surface.last(t).Status)
		assert.Empty(t, *challenged)
	})
}
