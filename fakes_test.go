package main

import (
	"encoding/json"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type sentEvent struct {
	Event string
	Data  any
}

// fakeAdapter records outgoing sends and doubles as a loopback event
// channel through the embedded Bus.
type fakeAdapter struct {
	Bus

	mu   sync.Mutex
	err  error
	sent []sentEvent
}

func (f *fakeAdapter) Send(event string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEvent{Event: event, Data: data})
	return nil
}

func (f *fakeAdapter) sentEvents(event string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []sentEvent
	for _, s := range f.sent {
		if s.Event == event {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeAdapter) lastSent(t *testing.T, event string) sentEvent {
	t.Helper()

	sent := f.sentEvents(event)
	require.NotEmpty(t, sent, "no %s sent", event)
	return sent[len(sent)-1]
}

// fakeSurface records rendered views. When created through fakeUI it
// honors the handed-out-surface liveness rule; standalone surfaces are
// always live.
type fakeSurface struct {
	ui    *fakeUI
	views []View
}

func (s *fakeSurface) Alive() bool {
	return s.ui == nil || s.ui.surface == s
}

func (s *fakeSurface) Render(v View) {
	s.views = append(s.views, v)
}

func (s *fakeSurface) last(t *testing.T) View {
	t.Helper()
	require.NotEmpty(t, s.views, "nothing rendered")
	return s.views[len(s.views)-1]
}

func (s *fakeSurface) control(t *testing.T, id string) Control {
	t.Helper()
	for _, c := range s.last(t).Controls {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("no control %q in last view", id)
	return Control{}
}

// press activates a control the way the terminal would: only if it
// exists and is enabled in the most recent view.
func (s *fakeSurface) press(t *testing.T, id, value string) {
	t.Helper()

	v := s.last(t)
	for _, c := range v.Controls {
		if c.ID == id {
			if !c.Disabled && v.OnInput != nil {
				v.OnInput(id, value)
			}
			return
		}
	}
}

type challengeCall struct {
	Target string
	Ch     Challenge
}

// fakeUI records every SessionUI call plus a coarse ordered event log
// for assertions about call ordering.
type fakeUI struct {
	order      []string
	phases     []Phase
	roster     []Player
	selfID     string
	scores     map[string]int
	results    [][]string
	chat       []ChatMessage
	notices    []string
	challenges []challengeCall
	surface    *fakeSurface
}

func (u *fakeUI) SetPhase(p Phase) {
	u.phases = append(u.phases, p)
	u.order = append(u.order, "phase:"+string(p))
}

func (u *fakeUI) SetRoster(players []Player, selfID string) {
	u.roster = players
	u.selfID = selfID
	u.order = append(u.order, "roster")
}

func (u *fakeUI) SetScores(players []Player, scores map[string]int) {
	u.scores = scores
	u.order = append(u.order, "scores")
}

func (u *fakeUI) ShowResults(lines []string) {
	u.results = append(u.results, lines)
	u.order = append(u.order, "results")
}

func (u *fakeUI) AppendChat(msg ChatMessage) {
	u.chat = append(u.chat, msg)
}

func (u *fakeUI) Notice(text string) {
	u.notices = append(u.notices, text)
}

func (u *fakeUI) ShowChallenge(target string, ch Challenge) {
	u.challenges = append(u.challenges, challengeCall{Target: target, Ch: ch})
	u.order = append(u.order, "challenge")
}

func (u *fakeUI) GameSurface() Surface {
	u.surface = &fakeSurface{ui: u}
	return u.surface
}

func (u *fakeUI) lastPhase(t *testing.T) Phase {
	t.Helper()
	require.NotEmpty(t, u.phases, "no phase set")
	return u.phases[len(u.phases)-1]
}

type fakeTimer struct {
	d  time.Duration
	fn func()
}

// timerQueue captures delayed callbacks so tests fire them explicitly.
type timerQueue struct {
	mu     sync.Mutex
	timers []fakeTimer
}

func (q *timerQueue) after(d time.Duration, fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.timers = append(q.timers, fakeTimer{d: d, fn: fn})
}

func (q *timerQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.timers)
}

// fireNext runs the oldest captured callback and returns its delay.
func (q *timerQueue) fireNext(t *testing.T) time.Duration {
	t.Helper()

	q.mu.Lock()
	require.NotEmpty(t, q.timers, "no pending timers")
	next := q.timers[0]
	q.timers = q.timers[1:]
	q.mu.Unlock()

	next.fn()
	return next.d
}

func (q *timerQueue) fireAll(t *testing.T) {
	t.Helper()
	for q.pending() > 0 {
		q.fireNext(t)
	}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func testConfig() *Config {
	return &Config{
		server:       "ws://localhost:5000/ws",
		room:         "ABC12345",
		name:         "Swift Fox",
		color:        "#0D9488",
		mode:         string(ModeSimple),
		resultsDelay: 2 * time.Second,
		chatLimit:    50,
		bind:         "127.0.0.1",
		port:         8081,
	}
}

type testSession struct {
	session *Session
	adapter *fakeAdapter
	ui      *fakeUI
	timers  *timerQueue
	cfg     *Config
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()

	cfg := testConfig()
	adapter := &fakeAdapter{}
	ui := &fakeUI{}

	s := NewSession(cfg, adapter, ui)

	timers := &timerQueue{}
	s.afterFunc = timers.after
	s.rng = rand.New(rand.NewSource(1))

	return &testSession{session: s, adapter: adapter, ui: ui, timers: timers, cfg: cfg}
}

func (ts *testSession) dispatch(t *testing.T, event string, v any) {
	t.Helper()
	ts.adapter.Dispatch(event, mustJSON(t, v))
}

func roomWith(game *ActiveGame, players ...Player) *RoomSnapshot {
	return &RoomSnapshot{
		RoomID:      "ABC12345",
		Players:     players,
		PlayerCount: len(players),
		CurrentGame: game,
	}
}

var (
	playerOne = Player{PlayerID: "p1", DisplayName: "Swift Fox", AvatarColor: "#0D9488"}
	playerTwo = Player{PlayerID: "p2", DisplayName: "Calm Owl", AvatarColor: "#06B6D4"}
)

// join walks the session through connect and a successful join as p1.
func (ts *testSession) join(t *testing.T, others ...Player) {
	t.Helper()

	ts.adapter.Dispatch(evConnectResponse, nil)
	ts.dispatch(t, evJoinRoomResponse, JoinRoomResponse{
		Success:     true,
		PlayerID:    playerOne.PlayerID,
		DisplayName: playerOne.DisplayName,
		AvatarColor: playerOne.AvatarColor,
		Room:        roomWith(nil, append([]Player{playerOne}, others...)...),
	})
}

// startGame drives the server half of a game start.
func (ts *testSession) startGame(t *testing.T, game GameType, state any) {
	t.Helper()

	ts.dispatch(t, evGameStarted, GameStarted{
		GameType: string(game),
		Room: roomWith(&ActiveGame{
			GameType:     string(game),
			PlayerScores: map[string]int{"p1": 0, "p2": 0},
			StateData:    mustJSON(t, state),
		}, playerOne, playerTwo),
	})
}

// testPluginContext builds a context for exercising a plugin without a
// session behind it.
func testPluginContext(adapter *fakeAdapter, timers *timerQueue, mode Mode) (PluginContext, *[]string) {
	challenged := &[]string{}

	return PluginContext{
		RoomID:      "ABC12345",
		PlayerID:    "p1",
		DisplayName: "Swift Fox",
		Mode:        mode,
		Adapter:     adapter,
		Rand:        rand.New(rand.NewSource(1)),
		Schedule:    timers.after,
		Challenge:   func(target string) { *challenged = append(*challenged, target) },
		Logf:        func(string, ...any) {},
	}, challenged
}
