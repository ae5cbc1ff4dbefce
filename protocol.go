// PlaySync wire protocol.
//
// Every frame on the websocket is an Envelope: an event name plus a JSON
// payload. Payload shapes mirror what the room server sends; the client
// treats every room snapshot it receives as total truth and never merges
// fields. Game-specific state travels opaquely in ActiveGame.StateData and
// is only interpreted by the matching game plugin.

package main

import "encoding/json"

// Client → server events.
const (
	evJoinRoomRequest  = "join_room_request"
	evLeaveRoomRequest = "leave_room_request"
	evStartGameRequest = "start_game_request"
	evGameMove         = "game_move"
	evChatMessage      = "chat_message"
	evGetChatHistory   = "get_chat_history"
	evSwitchGameReq    = "switch_game_request"
)

// Server → client events. evChatMessage is used in both directions.
const (
	evConnectResponse   = "connect_response"
	evJoinRoomResponse  = "join_room_response"
	evPlayerJoined      = "player_joined"
	evPlayerLeft        = "player_left"
	evStartGameResponse = "start_game_response"
	evGameStarted       = "game_started"
	evGameMoveResponse  = "game_move_response"
	evMoveMade          = "move_made"
	evGameEnded         = "game_ended"
	evChatHistory       = "chat_history"
	evGameSwitched      = "game_switched"
)

// Envelope frames every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Player is one roster entry in a room snapshot.
type Player struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	AvatarColor string `json:"avatar_color"`
	Score       int    `json:"score,omitempty"`
}

// ActiveGame describes the game in progress. StateData is opaque to the
// session controller; only the plugin registered for GameType decodes it.
type ActiveGame struct {
	GameType     string          `json:"game_type"`
	PlayerScores map[string]int  `json:"player_scores"`
	StateData    json.RawMessage `json:"state_data"`
}

// RoomSnapshot is the authoritative room state pushed by the server.
// It replaces prior local state wholesale wherever it appears.
type RoomSnapshot struct {
	RoomID      string      `json:"room_id"`
	Players     []Player    `json:"players"`
	PlayerCount int         `json:"player_count"`
	CurrentGame *ActiveGame `json:"current_game,omitempty"`
}

type JoinRoomRequest struct {
	RoomID      string `json:"room_id"`
	DisplayName string `json:"display_name"`
	AvatarColor string `json:"avatar_color"`
}

type JoinRoomResponse struct {
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	PlayerID    string        `json:"player_id,omitempty"`
	DisplayName string        `json:"display_name,omitempty"`
	AvatarColor string        `json:"avatar_color,omitempty"`
	Room        *RoomSnapshot `json:"room,omitempty"`
}

type LeaveRoomRequest struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

// RosterUpdate is the payload of player_joined and player_left.
type RosterUpdate struct {
	PlayerID    string        `json:"player_id,omitempty"`
	DisplayName string        `json:"display_name,omitempty"`
	Room        *RoomSnapshot `json:"room"`
}

type StartGameRequest struct {
	RoomID      string `json:"room_id"`
	GameType    string `json:"game_type"`
	ResetScores bool   `json:"reset_scores"`
}

type StartGameResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type GameStarted struct {
	GameType string        `json:"game_type"`
	Room     *RoomSnapshot `json:"room"`
}

// GameMove wraps a plugin-shaped move payload.
type GameMove struct {
	RoomID string `json:"room_id"`
	Move   any    `json:"move"`
}

// MoveResponse is addressed to the move's sender only. Data carries the
// per-game feedback fields (early_tap, reaction_ms, correct, ...), passed
// through to the plugin undecoded.
type MoveResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// MoveMade is broadcast to every room member after any accepted move.
type MoveMade struct {
	PlayerID string        `json:"player_id,omitempty"`
	Room     *RoomSnapshot `json:"room"`
}

// GameEnded carries the game-specific results payload plus a final room
// snapshot whose scores are authoritative.
type GameEnded struct {
	Results json.RawMessage `json:"results"`
	Room    *RoomSnapshot   `json:"room"`
}

// ChatMessage doubles as the outgoing request (RoomID and Message set) and
// the broadcast entry (identity fields set, ordered by arrival).
type ChatMessage struct {
	RoomID      string  `json:"room_id,omitempty"`
	PlayerID    string  `json:"player_id,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	AvatarColor string  `json:"avatar_color,omitempty"`
	Message     string  `json:"message"`
	Timestamp   float64 `json:"timestamp,omitempty"`
}

type ChatHistoryRequest struct {
	RoomID string `json:"room_id"`
}

type ChatHistory struct {
	Messages []ChatMessage `json:"messages"`
}

type SwitchGameRequest struct {
	RoomID string `json:"room_id"`
}

type GameSwitched struct {
	Room *RoomSnapshot `json:"room,omitempty"`
}

// resultsSummary is the controller's lenient view of a results payload,
// used only for the generic results panel. Plugins decode their own shape.
type resultsSummary struct {
	Winner        *string            `json:"winner"`
	Scores        map[string]int     `json:"scores"`
	ReactionTimes map[string]float64 `json:"reaction_times"`
	Rounds        []struct {
		Result string `json:"result"`
	} `json:"rounds"`
}
