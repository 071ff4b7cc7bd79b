package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
)

type memoryRepo struct {
	games map[string][]byte
}

func (that *memoryRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	that.games[game.ID] = data

	return nil
}

func (that *memoryRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	data, ok := that.games[id]
	if !ok {
		return nil, repository.ErrGameNotFound
	}

	var game entity.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}

	return &game, nil
}

func (that *memoryRepo) DeleteByID(_ context.Context, id string) error {
	delete(that.games, id)
	return nil
}

func (that *memoryRepo) Update(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error) {
	game, err := that.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = change(game); err != nil {
		return game, err
	}

	return game, that.CreateOrUpdate(ctx, game)
}

func dial(t *testing.T) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	repo := &memoryRepo{games: map[string][]byte{}}
	server := New(logger, usecase.NewGameUseCase(logger, repo))

	httpServer := httptest.NewServer(server.Handler(ctx))
	t.Cleanup(httpServer.Close)

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, req *Request) (string, Response) {
	t.Helper()

	message := Message{Action: action}
	if req != nil {
		payload, err := json.Marshal(req)
		require.NoError(t, err)
		message.Payload = payload
	}

	require.NoError(t, conn.WriteJSON(message))

	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))

	var response Response
	require.NoError(t, json.Unmarshal(reply.Payload, &response))

	return reply.Action, response
}

func intPtr(v int) *int {
	return &v
}

func TestServer_NewGame(t *testing.T) {
	conn := dial(t)

	// When: a client asks for a new game
	action, response := send(t, conn, actionNewGame, nil)

	// Then: the reply carries the same action and an empty game
	assert.Equal(t, actionNewGame, action)
	require.NotNil(t, response.Game)
	assert.NotEmpty(t, response.Game.ID)
	assert.Equal(t, entity.PlayerX, response.Game.Next)
	assert.Empty(t, response.Error)
}

func TestServer_GameTurn(t *testing.T) {
	t.Run("Accepted and ignored turns", func(t *testing.T) {
		conn := dial(t)
		_, created := send(t, conn, actionNewGame, nil)
		gameID := created.Game.ID

		// When: X plays the corner, then O clicks the same corner
		_, first := send(t, conn, actionGameTurn, &Request{GameID: gameID, Cell: intPtr(0)})
		_, second := send(t, conn, actionGameTurn, &Request{GameID: gameID, Cell: intPtr(0)})

		// Then: the first is applied, the second is ignored without changing the game
		require.NotNil(t, first.Game)
		assert.Equal(t, entity.PlayerX, first.Game.Board[0])
		assert.Empty(t, first.Game.Ignored)

		require.NotNil(t, second.Game)
		assert.Contains(t, second.Game.Ignored, "cell is already occupied")
		assert.Len(t, second.Game.Moves, 2)
	})

	t.Run("Missing cell", func(t *testing.T) {
		conn := dial(t)

		// When: a turn without a cell is sent
		_, response := send(t, conn, actionGameTurn, &Request{GameID: "g1"})

		// Then: an error is returned
		assert.Nil(t, response.Game)
		assert.NotEmpty(t, response.Error)
	})

	t.Run("Unknown game", func(t *testing.T) {
		conn := dial(t)

		// When: a turn on an unknown game is sent
		_, response := send(t, conn, actionGameTurn, &Request{GameID: "missing", Cell: intPtr(0)})

		// Then: not found is reported
		assert.Equal(t, repository.ErrGameNotFound.Error(), response.Error)
	})
}

func TestServer_GameJump(t *testing.T) {
	t.Run("Jump and state", func(t *testing.T) {
		conn := dial(t)
		_, created := send(t, conn, actionNewGame, nil)
		gameID := created.Game.ID
		send(t, conn, actionGameTurn, &Request{GameID: gameID, Cell: intPtr(4)})
		send(t, conn, actionGameTurn, &Request{GameID: gameID, Cell: intPtr(0)})

		// When: jumping to the start and reading the state
		_, jumped := send(t, conn, actionGameJump, &Request{GameID: gameID, Move: intPtr(0)})
		_, state := send(t, conn, actionGameState, &Request{GameID: gameID})

		// Then: the cursor is at the start and history is kept
		require.NotNil(t, jumped.Game)
		assert.Equal(t, 0, jumped.Game.Cursor)
		assert.Equal(t, entity.Board{}, jumped.Game.Board)

		require.NotNil(t, state.Game)
		assert.Equal(t, 0, state.Game.Cursor)
		assert.Len(t, state.Game.Moves, 3)
	})

	t.Run("Out of range jump", func(t *testing.T) {
		conn := dial(t)
		_, created := send(t, conn, actionNewGame, nil)

		// When: jumping past the end
		_, response := send(t, conn, actionGameJump, &Request{GameID: created.Game.ID, Move: intPtr(3)})

		// Then: the unchanged game comes back with the reason
		require.NotNil(t, response.Game)
		assert.Equal(t, 0, response.Game.Cursor)
		assert.Contains(t, response.Error, "invalid move index")
	})
}

func TestServer_UnknownAction(t *testing.T) {
	conn := dial(t)

	// When: an unsupported action is sent
	action, response := send(t, conn, "game:unknown", nil)

	// Then: the connection answers with an error and stays open
	assert.Equal(t, "game:unknown", action)
	assert.Equal(t, "unknown action", response.Error)

	_, created := send(t, conn, actionNewGame, nil)
	assert.NotNil(t, created.Game)
}

func sendRaw(t *testing.T, conn *websocket.Conn, raw string) (string, Response) {
	t.Helper()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))

	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))

	var response Response
	require.NoError(t, json.Unmarshal(reply.Payload, &response))

	return reply.Action, response
}

func TestServer_InvalidMessage(t *testing.T) {
	t.Run("Mistyped envelope keeps the connection open", func(t *testing.T) {
		conn := dial(t)

		// When: the action is a number instead of a string
		action, response := sendRaw(t, conn, `{"action":5}`)

		// Then: an error is returned and the next message is still served
		assert.Empty(t, action)
		assert.Equal(t, "invalid message", response.Error)

		_, created := send(t, conn, actionNewGame, nil)
		assert.NotNil(t, created.Game)
	})

	t.Run("Mistyped payload echoes the action", func(t *testing.T) {
		conn := dial(t)

		// When: the payload cell is a string
		action, response := sendRaw(t, conn, `{"action":"game:turn","payload":{"game_id":"g1","cell":"4"}}`)

		// Then: the error comes back under the sent action
		assert.Equal(t, actionGameTurn, action)
		assert.Equal(t, "invalid payload", response.Error)

		_, created := send(t, conn, actionNewGame, nil)
		assert.NotNil(t, created.Game)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		conn := dial(t)

		// When: the frame is not JSON
		_, response := sendRaw(t, conn, `{"action":`)

		// Then: an error is returned and the connection survives
		assert.Equal(t, "invalid message", response.Error)

		_, created := send(t, conn, actionNewGame, nil)
		assert.NotNil(t, created.Game)
	})

	t.Run("Oversized frame closes the connection", func(t *testing.T) {
		conn := dial(t)

		// When: a frame above the read limit is sent
		huge := `{"action":"game:new","payload":"` + strings.Repeat("x", maxMessageSize) + `"}`
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(huge)))

		// Then: the server drops the connection instead of answering
		var reply Message
		assert.Error(t, conn.ReadJSON(&reply))
	})
}
