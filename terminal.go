// Terminal front end.
//
// terminalUI implements SessionUI by redrawing a full frame on every
// state change; only the regions visible for the current phase appear.
// Input read from stdin is handed to the session through Session.Do so
// it serializes with event dispatch. Lock order is session.mu before
// terminal.mu, never the reverse.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type terminalUI struct {
	cfg *Config
	out io.Writer

	session *Session

	mu        sync.Mutex
	phase     Phase
	roster    []string
	scores    []string
	results   []string
	chat      []string
	challenge []string
	surface   *terminalSurface
}

func newTerminalUI(cfg *Config, out io.Writer) *terminalUI {
	return &terminalUI{cfg: cfg, out: out, phase: PhaseConnecting}
}

// bind attaches the session after construction; NewSession needs the UI
// first.
func (t *terminalUI) bind(s *Session) {
	t.session = s
}

// ---- SessionUI ----

func (t *terminalUI) SetPhase(p Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = p
	if p != PhaseResults {
		t.results = nil
	}
	if p == PhaseSelection || p == PhaseWaiting {
		t.challenge = nil
	}
	t.redrawLocked()
}

func (t *terminalUI) SetRoster(players []Player, selfID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.roster = t.roster[:0]
	for _, p := range players {
		name := p.DisplayName
		if p.PlayerID == selfID {
			name += " (you)"
		}
		t.roster = append(t.roster, name)
	}
	t.redrawLocked()
}

func (t *terminalUI) SetScores(players []Player, scores map[string]int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.scores = t.scores[:0]
	for _, p := range players {
		t.scores = append(t.scores, fmt.Sprintf("%s: %d", p.DisplayName, scores[p.PlayerID]))
	}
	t.redrawLocked()
}

func (t *terminalUI) ShowResults(lines []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results = lines
	t.redrawLocked()
}

func (t *terminalUI) AppendChat(msg ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.chat = append(t.chat, fmt.Sprintf("%s: %s", msg.DisplayName, msg.Message))
	if len(t.chat) > t.cfg.chatLimit {
		t.chat = t.chat[len(t.chat)-t.cfg.chatLimit:]
	}
	t.redrawLocked()
}

func (t *terminalUI) Notice(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "* %s\n", text)
}

func (t *terminalUI) ShowChallenge(target string, ch Challenge) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.challenge = []string{
		fmt.Sprintf("%s, it's time for... %s", target, strings.ToUpper(string(ch.Kind))),
		ch.Text,
	}
	t.redrawLocked()
}

// GameSurface invalidates the previous surface by replacing the pointer
// the liveness check compares against.
func (t *terminalUI) GameSurface() Surface {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.surface = &terminalSurface{ui: t}
	return t.surface
}

// ---- Rendering ----

func (t *terminalUI) redrawLocked() {
	var b strings.Builder

	fmt.Fprintf(&b, "\n== Room %s ==\n", t.cfg.roomCode())

	for _, region := range visibleRegions(t.phase) {
		switch region {
		case RegionWaiting:
			b.WriteString("Waiting for another player to join...\n")
			for _, line := range t.roster {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		case RegionSelection:
			b.WriteString("Pick a game with /start:\n")
			for _, g := range []GameType{GameRPS, GameTicTacToe, GameReaction, GameQuickMath, GameWouldYouRather} {
				fmt.Fprintf(&b, "  %s - %s\n", g, g.Title())
			}
		case RegionGame:
			t.writeScoresLocked(&b)
			if t.surface != nil {
				t.surface.writeLocked(&b)
			}
		case RegionResults:
			t.writeScoresLocked(&b)
			if t.surface != nil {
				t.surface.writeLocked(&b)
			}
			for _, line := range t.results {
				fmt.Fprintf(&b, "  %s\n", line)
			}
			for _, line := range t.challenge {
				fmt.Fprintf(&b, "! %s\n", line)
			}
		case RegionChat:
			if len(t.chat) > 0 {
				b.WriteString("-- chat --\n")
				for _, line := range t.chat {
					fmt.Fprintf(&b, "  %s\n", line)
				}
			}
		}
	}

	fmt.Fprint(t.out, b.String())
}

func (t *terminalUI) writeScoresLocked(b *strings.Builder) {
	if len(t.scores) > 0 {
		fmt.Fprintf(b, "Score: %s\n", strings.Join(t.scores, "  "))
	}
}

// ---- Input ----

// runInput reads commands until the reader or context ends. Game input
// runs under Session.Do.
func (t *terminalUI) runInput(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		t.dispatch(line)
	}
}

func (t *terminalUI) dispatch(line string) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/start":
		t.startGame(rest)
	case "/switch":
		t.session.SwitchGame()
	case "/say":
		t.session.SendChat(rest)
	case "/leave", "/quit":
		t.session.Leave()
	case "/help":
		t.Notice("commands: /start <game> [challenge], /switch, /say <text>, /leave")
	default:
		t.activate(cmd, rest)
	}
}

// startGame parses "/start <game> [challenge]". A fresh pick always
// resets scores; only auto-rematches carry them forward.
func (t *terminalUI) startGame(args string) {
	game, modeArg, _ := strings.Cut(args, " ")
	if _, ok := gameRegistry[GameType(game)]; !ok {
		t.Notice(fmt.Sprintf("unknown game %q, try /help", game))
		return
	}

	mode := Mode(t.cfg.mode)
	switch strings.TrimSpace(modeArg) {
	case "challenge":
		mode = ModeChallenge
	case "simple":
		mode = ModeSimple
	}

	t.session.StartGame(GameType(game), mode, true)
}

// activate routes a bare "id [value]" line to the current game view.
func (t *terminalUI) activate(id, value string) {
	t.session.Do(func() {
		t.mu.Lock()
		surface := t.surface
		var fn func(controlID, value string)
		if surface != nil {
			fn = surface.input(id)
		}
		t.mu.Unlock()

		if fn == nil {
			return
		}
		fn(id, value)
	})
}

// terminalSurface is one plugin generation's slice of the screen. It
// stops accepting renders and input once the UI hands out a newer one.
type terminalSurface struct {
	ui   *terminalUI
	view View
}

func (s *terminalSurface) Alive() bool {
	s.ui.mu.Lock()
	defer s.ui.mu.Unlock()
	return s.ui.surface == s
}

func (s *terminalSurface) Render(v View) {
	s.ui.mu.Lock()
	defer s.ui.mu.Unlock()

	if s.ui.surface != s {
		return
	}
	s.view = v
	s.ui.redrawLocked()
}

// input returns the view's handler if the named control exists and is
// enabled. Caller holds ui.mu.
func (s *terminalSurface) input(id string) func(controlID, value string) {
	if s.ui.surface != s || s.view.OnInput == nil {
		return nil
	}
	for _, c := range s.view.Controls {
		if c.ID == id {
			if c.Disabled {
				return nil
			}
			return s.view.OnInput
		}
	}
	return nil
}

// writeLocked appends the current game view to a frame. Caller holds
// ui.mu.
func (s *terminalSurface) writeLocked(b *strings.Builder) {
	if s.view.Status != "" {
		fmt.Fprintf(b, "%s\n", s.view.Status)
	}
	for _, line := range s.view.Lines {
		fmt.Fprintf(b, "  %s\n", line)
	}

	if len(s.view.Controls) == 0 {
		return
	}
	b.WriteString("> ")
	for i, c := range s.view.Controls {
		if i > 0 {
			b.WriteString("  ")
		}
		if c.Disabled {
			fmt.Fprintf(b, "[%s]", c.Label)
		} else {
			fmt.Fprintf(b, "(%s)", c.Label)
		}
	}
	b.WriteString("\n")
}
