// Room session controller.
//
// The Session is the single source of truth for room-level state and the
// only subscriber to transport events. It owns the phase machine, the
// roster, the chat log, and the currently mounted game plugin; plugins
// see room state only through their callback arguments.
//
// All state is mutated under s.mu on the goroutine delivering the event
// or timer, so every handler leaves the session fully consistent before
// anything else can observe it. Delayed callbacks capture the game
// generation they belong to and silently do nothing once it has passed.

package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Phase is the coarse UI mode of the session.
type Phase string

const (
	PhaseConnecting Phase = "connecting"
	PhaseWaiting    Phase = "waiting"
	PhaseSelection  Phase = "game_selection"
	PhaseGame       Phase = "game"
	PhaseResults    Phase = "results"
)

// Region names one visibility-toggled area of the client UI.
type Region string

const (
	RegionWaiting   Region = "waiting"
	RegionSelection Region = "game_selection"
	RegionGame      Region = "game"
	RegionResults   Region = "results"
	RegionChat      Region = "chat"
)

// visibleRegions is the phase renderer: a pure mapping from phase to the
// regions shown. Chat appears whenever a game is running or just ended.
func visibleRegions(p Phase) []Region {
	switch p {
	case PhaseWaiting:
		return []Region{RegionWaiting}
	case PhaseSelection:
		return []Region{RegionSelection}
	case PhaseGame:
		return []Region{RegionGame, RegionChat}
	case PhaseResults:
		return []Region{RegionResults, RegionChat}
	default:
		return nil
	}
}

// SessionUI is the rendering side the terminal (or a test fake) provides.
// Calls arrive with session state already consistent.
type SessionUI interface {
	SetPhase(p Phase)
	SetRoster(players []Player, selfID string)
	SetScores(players []Player, scores map[string]int)
	ShowResults(lines []string)
	AppendChat(msg ChatMessage)
	Notice(text string)
	ShowChallenge(target string, ch Challenge)

	// GameSurface returns a fresh surface for a newly mounted plugin,
	// invalidating whichever surface was handed out before.
	GameSurface() Surface
}

const challengeDelay = time.Second

type Session struct {
	cfg     *Config
	adapter Adapter
	ui      SessionUI

	// afterFunc schedules delayed callbacks; replaced in tests.
	afterFunc func(d time.Duration, fn func())

	mu          sync.Mutex
	rng         *rand.Rand
	phase       Phase
	playerID    string
	displayName string
	avatarColor string
	players     []Player
	currentGame GameType
	mode        Mode
	activeGame  *ActiveGame
	plugin      Plugin
	surface     Surface
	gameSeq     int
	chat        []ChatMessage
	err         error
	closed      bool
	done        chan struct{}
}

// NewSession wires a controller to its adapter and UI and subscribes to
// every server event. Join happens on each connect_response, so a
// transport reconnect re-joins and the server's snapshot resynchronizes
// the session.
func NewSession(cfg *Config, adapter Adapter, ui SessionUI) *Session {
	name := cfg.name
	if name == "" {
		name = generateDisplayName()
	}
	color := cfg.color
	if color == "" {
		color = randomAvatarColor()
	}

	s := &Session{
		cfg:         cfg,
		adapter:     adapter,
		ui:          ui,
		afterFunc:   func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		phase:       PhaseConnecting,
		displayName: name,
		avatarColor: color,
		mode:        ModeSimple,
		done:        make(chan struct{}),
	}

	adapter.On(evConnectResponse, s.handleConnect)
	adapter.On(evJoinRoomResponse, s.handleJoinResponse)
	adapter.On(evPlayerJoined, s.handleRosterUpdate)
	adapter.On(evPlayerLeft, s.handleRosterUpdate)
	adapter.On(evStartGameResponse, s.handleStartResponse)
	adapter.On(evGameStarted, s.handleGameStarted)
	adapter.On(evGameMoveResponse, s.handleMoveResponse)
	adapter.On(evMoveMade, s.handleMoveMade)
	adapter.On(evGameEnded, s.handleGameEnded)
	adapter.On(evChatMessage, s.handleChatMessage)
	adapter.On(evChatHistory, s.handleChatHistory)
	adapter.On(evGameSwitched, s.handleGameSwitched)

	return s
}

// Done is closed when the session ends: a fatal join failure or Leave.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Do runs fn under the session's state lock. Surface input is delivered
// through it so user actions serialize with event dispatch and timer
// callbacks on the one logical thread of execution.
func (s *Session) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// ---- Outbound operations ----

// StartGame requests a new game. The phase only changes when the server
// acknowledges with game_started, so repeated calls cannot double-mutate
// local state.
func (s *Session) StartGame(t GameType, mode Mode, resetScores bool) {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()

	logf(s.cfg, "GAMES: Requesting %s (%s mode, reset=%t)", t, mode, resetScores)

	err := s.adapter.Send(evStartGameRequest, StartGameRequest{
		RoomID:      s.cfg.roomCode(),
		GameType:    string(t),
		ResetScores: resetScores,
	})
	if err != nil {
		s.ui.Notice("Could not start game: " + err.Error())
	}
}

// SwitchGame forces the session back to game selection. The local
// transition is immediate; the request also reaches the peer through the
// server's game_switched broadcast, which is handled idempotently.
func (s *Session) SwitchGame() {
	s.mu.Lock()
	s.teardownGameLocked()
	s.mode = ModeSimple
	s.setPhaseLocked(PhaseSelection)
	s.mu.Unlock()

	_ = s.adapter.Send(evSwitchGameReq, SwitchGameRequest{RoomID: s.cfg.roomCode()})
}

func (s *Session) SendChat(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	err := s.adapter.Send(evChatMessage, ChatMessage{
		RoomID:  s.cfg.roomCode(),
		Message: text,
	})
	if err != nil {
		s.ui.Notice("Could not send message: " + err.Error())
	}
}

func (s *Session) RequestChatHistory() {
	_ = s.adapter.Send(evGetChatHistory, ChatHistoryRequest{RoomID: s.cfg.roomCode()})
}

// Leave announces departure and ends the session.
func (s *Session) Leave() {
	s.mu.Lock()
	playerID := s.playerID
	closed := s.closed
	if !closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()

	if closed {
		return
	}
	_ = s.adapter.Send(evLeaveRoomRequest, LeaveRoomRequest{
		RoomID:   s.cfg.roomCode(),
		PlayerID: playerID,
	})
}

// ---- Inbound event handlers ----

func (s *Session) handleConnect(json.RawMessage) {
	err := s.adapter.Send(evJoinRoomRequest, JoinRoomRequest{
		RoomID:      s.cfg.roomCode(),
		DisplayName: s.displayName,
		AvatarColor: s.avatarColor,
	})
	if err != nil {
		logf(s.cfg, "ERROR: Joining room %s: %v", s.cfg.roomCode(), err)
	}
}

func (s *Session) handleJoinResponse(data json.RawMessage) {
	var resp JoinRoomResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return
	}

	if !resp.Success {
		s.mu.Lock()
		if !s.closed {
			s.err = fmt.Errorf("%w: %s", errRoomUnavailable, resp.Error)
			s.closed = true
			close(s.done)
		}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.playerID = resp.PlayerID
	if resp.DisplayName != "" {
		s.displayName = resp.DisplayName
	}
	if resp.AvatarColor != "" {
		s.avatarColor = resp.AvatarColor
	}

	logf(s.cfg, "JOIN: Joined %s as %q (%s)", s.cfg.roomCode(), s.displayName, s.playerID)

	s.applyRoomLocked(resp.Room)
	if len(s.players) >= 2 {
		s.setPhaseLocked(PhaseSelection)
	} else {
		s.setPhaseLocked(PhaseWaiting)
	}
}

func (s *Session) handleRosterUpdate(data json.RawMessage) {
	var upd RosterUpdate
	if err := json.Unmarshal(data, &upd); err != nil || upd.Room == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseConnecting {
		return
	}

	s.applyRoomLocked(upd.Room)

	switch {
	case len(s.players) < 2:
		// The opponent is gone; drop the game locally without waiting
		// for the server to confirm.
		s.teardownGameLocked()
		s.setPhaseLocked(PhaseWaiting)
	case s.phase == PhaseWaiting:
		s.setPhaseLocked(PhaseSelection)
	}
}

func (s *Session) handleStartResponse(data json.RawMessage) {
	var resp StartGameResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return
	}
	if !resp.Success {
		s.ui.Notice("Could not start game: " + resp.Error)
	}
}

func (s *Session) handleGameStarted(data json.RawMessage) {
	var msg GameStarted
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if msg.Room == nil || msg.Room.CurrentGame == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyRoomLocked(msg.Room)

	s.gameSeq++
	s.currentGame = GameType(msg.GameType)
	s.activeGame = msg.Room.CurrentGame

	plugin := newPlugin(s.currentGame, s.pluginContextLocked())
	if plugin == nil {
		logf(s.cfg, "ERROR: Unknown game type %q", msg.GameType)
		return
	}

	logf(s.cfg, "GAMES: Started %s in %s", s.currentGame, s.cfg.roomCode())

	s.plugin = plugin
	s.surface = s.ui.GameSurface()
	s.setPhaseLocked(PhaseGame)
	plugin.Mount(s.surface, s.activeGame)
}

func (s *Session) handleMoveResponse(data json.RawMessage) {
	var resp MoveResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if responder, ok := s.plugin.(MoveResponder); ok {
		responder.OnMoveResponse(&resp)
		return
	}
	if !resp.Success && resp.Message != "" {
		s.ui.Notice(resp.Message)
	}
}

func (s *Session) handleMoveMade(data json.RawMessage) {
	var msg MoveMade
	if err := json.Unmarshal(data, &msg); err != nil || msg.Room == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyRoomLocked(msg.Room)

	if observer, ok := s.plugin.(MoveObserver); ok {
		observer.OnMoveMade(msg.Room)
	}
}

// handleGameEnded updates the score display from the final snapshot
// before anything else renders, so scores are correct even if the
// plugin's end screen misbehaves.
func (s *Session) handleGameEnded(data json.RawMessage) {
	var msg GameEnded
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A game_ended racing a local switch arrives after the teardown
	// already happened; there is nothing to conclude and no game to
	// rematch.
	if s.plugin == nil {
		return
	}

	if msg.Room != nil {
		s.applyRoomLocked(msg.Room)
	}

	s.plugin.OnEnded(msg.Results)

	s.setPhaseLocked(PhaseResults)
	s.ui.ShowResults(resultsDetails(msg.Results))

	// Auto-rematch: after the results window, re-issue the same start
	// request with score continuity. The transition back to the game
	// phase still only happens on the server's game_started.
	seq := s.gameSeq
	game := s.currentGame
	s.afterFunc(s.cfg.resultsDelay, func() {
		s.mu.Lock()
		live := !s.closed && s.gameSeq == seq && s.phase == PhaseResults && s.currentGame == game
		s.mu.Unlock()

		if !live {
			return
		}
		logf(s.cfg, "GAMES: Auto-rematch %s in %s", game, s.cfg.roomCode())
		_ = s.adapter.Send(evStartGameRequest, StartGameRequest{
			RoomID:   s.cfg.roomCode(),
			GameType: string(game),
		})
	})
}

func (s *Session) handleChatMessage(data json.RawMessage) {
	var msg ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Message == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendChatLocked(msg)
}

func (s *Session) handleChatHistory(data json.RawMessage) {
	var history ChatHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range history.Messages {
		s.appendChatLocked(msg)
	}
}

func (s *Session) handleGameSwitched(data json.RawMessage) {
	var msg GameSwitched
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseConnecting {
		return
	}
	if msg.Room != nil {
		s.applyRoomLocked(msg.Room)
	}

	s.teardownGameLocked()
	s.mode = ModeSimple
	if len(s.players) >= 2 {
		s.setPhaseLocked(PhaseSelection)
	} else {
		s.setPhaseLocked(PhaseWaiting)
	}
}

// ---- Internal state helpers (s.mu held) ----

// applyRoomLocked replaces roster and score state wholesale from an
// authoritative snapshot. No field-level merging happens anywhere.
func (s *Session) applyRoomLocked(room *RoomSnapshot) {
	if room == nil {
		return
	}

	s.players = room.Players
	s.ui.SetRoster(s.players, s.playerID)

	s.activeGame = room.CurrentGame
	if room.CurrentGame != nil {
		s.ui.SetScores(s.players, room.CurrentGame.PlayerScores)
	}
}

func (s *Session) setPhaseLocked(p Phase) {
	if s.phase == p {
		return
	}
	s.phase = p
	s.ui.SetPhase(p)

	// Chat becomes visible with the game region; backfill it once.
	if p == PhaseGame {
		s.RequestChatHistory()
	}
}

// teardownGameLocked discards the active game reference and unmounts the
// plugin. Bumping gameSeq invalidates every timer the old generation
// scheduled.
func (s *Session) teardownGameLocked() {
	s.gameSeq++
	s.currentGame = ""
	s.activeGame = nil
	s.plugin = nil
	s.surface = nil
}

func (s *Session) appendChatLocked(msg ChatMessage) {
	s.chat = append(s.chat, msg)
	if len(s.chat) > s.cfg.chatLimit {
		s.chat = s.chat[len(s.chat)-s.cfg.chatLimit:]
	}
	s.ui.AppendChat(msg)
}

// pluginContextLocked builds the context for the plugin generation being
// mounted. Schedule and Challenge capture the current generation so
// callbacks that outlive the plugin become no-ops.
func (s *Session) pluginContextLocked() PluginContext {
	seq := s.gameSeq

	return PluginContext{
		RoomID:      s.cfg.roomCode(),
		PlayerID:    s.playerID,
		DisplayName: s.displayName,
		Mode:        s.mode,
		Adapter:     s.adapter,
		Rand:        s.rng,
		Logf:        func(format string, args ...any) { logf(s.cfg, format, args...) },
		Schedule: func(d time.Duration, fn func()) {
			s.afterFunc(d, func() {
				s.mu.Lock()
				defer s.mu.Unlock()
				if s.closed || s.gameSeq != seq {
					return
				}
				fn()
			})
		},
		Challenge: func(target string) {
			s.afterFunc(challengeDelay, func() {
				s.mu.Lock()
				live := !s.closed && s.gameSeq == seq
				var ch Challenge
				if live {
					ch = pickChallenge(s.rng)
				}
				s.mu.Unlock()

				if live {
					s.ui.ShowChallenge(target, ch)
				}
			})
		},
	}
}

// resultsDetails builds the generic results panel: per-round outcomes and
// reaction times when the payload carries them. Game-specific summaries
// belong to the plugins.
func resultsDetails(results json.RawMessage) []string {
	var summary resultsSummary
	if err := json.Unmarshal(results, &summary); err != nil {
		return []string{"Game results unavailable"}
	}

	var lines []string
	for i, round := range summary.Rounds {
		lines = append(lines, fmt.Sprintf("Round %d: %s", i+1, round.Result))
	}
	for _, ms := range sortedReactionTimes(summary.ReactionTimes) {
		lines = append(lines, fmt.Sprintf("%.0fms", ms))
	}
	return lines
}

func sortedReactionTimes(times map[string]float64) []float64 {
	out := make([]float64, 0, len(times))
	for _, ms := range times {
		out = append(out, ms)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
