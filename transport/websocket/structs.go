package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

const (
	actionNewGame   = "game:new"
	actionGameState = "game:state"
	actionGameTurn  = "game:turn"
	actionGameJump  = "game:jump"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Request is the payload clients send. Cell is read by game:turn, Move by game:jump.
type Request struct {
	GameID string `json:"game_id,omitempty"`
	Cell   *int   `json:"cell,omitempty"`
	Move   *int   `json:"move,omitempty"`
}

// Response is the payload sent back under the same action.
type Response struct {
	Game  *entity.GameView `json:"game,omitempty"`
	Error string           `json:"error,omitempty"`
}
