package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

type gameUseCase interface {
	NewGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)

	MakeMove(ctx context.Context, id string, cell int) (*entity.Game, error)
	JumpTo(ctx context.Context, id string, move int) (*entity.Game, error)
}

// requests are a few dozen bytes, anything near this is abuse
const maxMessageSize = 4 << 10

type handlerFunc func(ctx context.Context, req *Request) Response

type Server struct {
	logger   *slog.Logger
	game     gameUseCase
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, game gameUseCase) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		game:   game,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionNewGame] = server.handleNewGame
	server.handlers[actionGameState] = server.handleGameState
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameJump] = server.handleGameJump

	return server
}

// Handler returns the mux serving the /ws endpoint. Connections are closed once ctx is done.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	return mux
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection", "remote", r.RemoteAddr)

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-connCtx.Done()
		_ = conn.Close()
	}()

	log.Info("WebSocket connection established")

	if err = that.handleMessages(connCtx, conn); err != nil {
		log.Error("error handling messages", "error", err)
		return
	}

	log.Info("WebSocket connection closed")
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || ctx.Err() != nil {
				return nil
			}

			return err
		}

		var response Response

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			message.Action = rawAction(data)
			response = Response{Error: "invalid message"}
		} else {
			response = that.dispatch(ctx, &message)
		}

		payload, err := json.Marshal(response)
		if err != nil {
			return err
		}

		if err = conn.WriteJSON(Message{Action: message.Action, Payload: payload}); err != nil {
			return err
		}
	}
}

// rawAction digs the action out of a message that failed to decode, if it is a string at all.
func rawAction(data []byte) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}

	var action string
	if err := json.Unmarshal(envelope["action"], &action); err != nil {
		return ""
	}

	return action
}

func (that *Server) dispatch(ctx context.Context, message *Message) Response {
	handler, ok := that.handlers[message.Action]
	if !ok {
		that.logger.Debug("unknown action", "action", message.Action)
		return Response{Error: "unknown action"}
	}

	var req Request
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &req); err != nil {
			return Response{Error: "invalid payload"}
		}
	}

	return handler(ctx, &req)
}
