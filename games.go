// Game plugin contract.
//
// Each mini-game is a self-contained plugin constructed fresh on every
// game_started event and discarded when the session leaves the game
// phase. Plugins own only their transient view state; room and game state
// arrive through callback arguments and are never read from anywhere
// else. A plugin renders by replacing its surface's view wholesale, so a
// re-mount (auto-rematch) atomically swaps contents and input bindings.

package main

import (
	"encoding/json"
	"math/rand"
	"time"
)

// GameType identifies one of the built-in mini-games.
type GameType string

const (
	GameRPS            GameType = "rps"
	GameTicTacToe      GameType = "tictactoe"
	GameReaction       GameType = "reaction"
	GameQuickMath      GameType = "quickmath"
	GameWouldYouRather GameType = "would_you_rather"
)

func (t GameType) Title() string {
	switch t {
	case GameRPS:
		return "Rock Paper Scissors"
	case GameTicTacToe:
		return "Tic Tac Toe"
	case GameReaction:
		return "Reaction Time Duel"
	case GameQuickMath:
		return "Quick Math Duel"
	case GameWouldYouRather:
		return "Would You Rather"
	default:
		return string(t)
	}
}

// Mode selects whether game outcomes trigger a truth-or-dare challenge.
// Mode is session-local: it is chosen at game start and never appears in
// server snapshots.
type Mode string

const (
	ModeSimple    Mode = "simple"
	ModeChallenge Mode = "challenge"
)

// Control is one input a plugin accepts. A disabled control is rendered
// but ignores activation.
type Control struct {
	ID       string
	Label    string
	Disabled bool
}

// View is a full description of a plugin's rendered state. Rendering a
// View replaces whatever was on the surface before; repeated renders of
// structurally equal views must be safe.
type View struct {
	Status   string
	Lines    []string
	Controls []Control

	// OnInput is invoked when an enabled control is activated. value is
	// any free-form text entered after the control ID (quick-math answers).
	OnInput func(controlID, value string)
}

// Surface is where a plugin draws. Alive reports whether this surface is
// still the session's current game region; callbacks that fire after the
// plugin was unmounted check it and silently do nothing.
type Surface interface {
	Alive() bool
	Render(v View)
}

// PluginContext is the explicit session handle passed to every plugin at
// construction. There is no ambient session state.
type PluginContext struct {
	RoomID      string
	PlayerID    string
	DisplayName string
	Mode        Mode
	Adapter     Adapter
	Rand        *rand.Rand

	// Schedule runs fn after d unless the game generation it belongs to
	// has ended; the session guards staleness.
	Schedule func(d time.Duration, fn func())

	// Challenge arms the truth-or-dare presentation for target. Only
	// meaningful in ModeChallenge; at most one call per game end.
	Challenge func(target string)

	// Logf is the session's verbose logger.
	Logf func(format string, args ...any)
}

// submitMove emits a game_move with a plugin-shaped payload.
func (ctx *PluginContext) submitMove(move any) {
	if err := ctx.Adapter.Send(evGameMove, GameMove{RoomID: ctx.RoomID, Move: move}); err != nil {
		ctx.Logf("ERROR: Sending move: %v", err)
	}
}

// Plugin is the capability set every mini-game implements.
type Plugin interface {
	// Mount builds the initial view from game.StateData and binds input.
	// Must tolerate re-mounting with fresh state.
	Mount(s Surface, game *ActiveGame)

	// OnEnded renders the terminal summary and, in challenge mode,
	// triggers the penalty presentation per the game's loser rule.
	OnEnded(results json.RawMessage)
}

// MoveResponder receives the private acknowledgment addressed to the
// move's sender. Optional capability.
type MoveResponder interface {
	OnMoveResponse(resp *MoveResponse)
}

// MoveObserver reconciles the view with the broadcast room snapshot after
// any player's move. Must be idempotent under duplicate delivery.
// Optional capability.
type MoveObserver interface {
	OnMoveMade(room *RoomSnapshot)
}

var gameRegistry = map[GameType]func(ctx PluginContext) Plugin{
	GameRPS:            newRPSGame,
	GameTicTacToe:      newTicTacToeGame,
	GameReaction:       newReactionGame,
	GameQuickMath:      newQuickMathGame,
	GameWouldYouRather: newWouldYouRatherGame,
}

// newPlugin constructs a fresh plugin for t, or nil if t is unknown.
func newPlugin(t GameType, ctx PluginContext) Plugin {
	factory, ok := gameRegistry[t]
	if !ok {
		return nil
	}
	return factory(ctx)
}
