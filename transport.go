// Transport adapter: a thin pub/sub façade over the websocket event
// channel. The adapter carries no business logic, does not buffer or
// replay frames, and leaves resynchronization after a reconnect to the
// server's join response snapshot.

package main

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Handler receives the raw payload of one event.
type Handler func(data json.RawMessage)

// Adapter is the event-channel interface the session controller and the
// game plugins depend on. On supports multiple independent subscribers per
// event name; they are invoked in subscription order.
type Adapter interface {
	Send(event string, data any) error
	On(event string, h Handler)
}

// Bus implements the fan-out half of Adapter. It is embedded by Conn and
// used directly by tests as a loopback channel.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]Handler
}

func (b *Bus) On(event string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers == nil {
		b.handlers = make(map[string][]Handler)
	}
	b.handlers[event] = append(b.handlers[event], h)
}

// Dispatch delivers data to every subscriber of event, in subscription
// order, on the caller's goroutine.
func (b *Bus) Dispatch(event string, data json.RawMessage) {
	b.mu.Lock()
	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	b.mu.Unlock()

	for _, h := range hs {
		h(data)
	}
}

const (
	redialMin = time.Second
	redialMax = 30 * time.Second
)

var errNotConnected = errors.New("transport: not connected")

// Conn is the websocket-backed Adapter. It redials with capped backoff
// and dispatches a synthetic connect_response after every successful dial,
// so subscribers can re-join and let the server's snapshot resynchronize
// them. Frames lost while disconnected are gone; the adapter never
// replays.
type Conn struct {
	Bus

	cfg *Config
	url string

	wmu  sync.Mutex
	ws   *websocket.Conn
	done chan struct{}
	once sync.Once
}

// NewConn builds the adapter without dialing, so every subscriber can
// register before the first connect_response can possibly fire.
func NewConn(cfg *Config) *Conn {
	return &Conn{
		cfg:  cfg,
		url:  cfg.server,
		done: make(chan struct{}),
	}
}

// Dial starts the connection loop and returns immediately.
func (c *Conn) Dial() {
	go c.run()
}

func (c *Conn) run() {
	backoff := redialMin

	for {
		select {
		case <-c.done:
			return
		default:
		}

		ws, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err != nil {
			logf(c.cfg, "ERROR: Dial %s failed: %v (retrying in %s)", c.url, err, backoff)
			select {
			case <-c.done:
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, redialMax)
			continue
		}
		backoff = redialMin

		c.wmu.Lock()
		c.ws = ws
		c.wmu.Unlock()

		logf(c.cfg, "START: Connected to %s", c.url)
		c.Dispatch(evConnectResponse, nil)

		c.readPump(ws)

		c.wmu.Lock()
		c.ws = nil
		c.wmu.Unlock()
		_ = ws.Close()
	}
}

// readPump blocks until the connection drops, dispatching each frame on
// this goroutine. Per-room ordering is therefore preserved end to end.
func (c *Conn) readPump(ws *websocket.Conn) {
	for {
		var env Envelope
		if err := ws.ReadJSON(&env); err != nil {
			select {
			case <-c.done:
			default:
				logf(c.cfg, "ERROR: Connection lost: %v", err)
			}
			return
		}
		c.Dispatch(env.Event, env.Data)
	}
}

func (c *Conn) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	if c.ws == nil {
		return errNotConnected
	}
	return c.ws.WriteJSON(Envelope{Event: event, Data: payload})
}

func (c *Conn) Close() {
	c.once.Do(func() {
		close(c.done)
		c.wmu.Lock()
		if c.ws != nil {
			_ = c.ws.Close()
		}
		c.wmu.Unlock()
	})
}
