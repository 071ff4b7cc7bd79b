package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
)

type gameUseCase interface {
	NewGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error

	MakeMove(ctx context.Context, id string, cell int) (*entity.Game, error)
	JumpTo(ctx context.Context, id string, move int) (*entity.Game, error)
}

type moveRequest struct {
	Cell *int `json:"cell"`
}

type jumpRequest struct {
	Move *int `json:"move"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handlers struct {
	logger *slog.Logger
	game   gameUseCase
}

func NewHandlers(logger *slog.Logger, game gameUseCase) *Handlers {
	return &Handlers{
		logger: logger.With("component", "rest"),
		game:   game,
	}
}

// Routes returns the mux with every HTTP endpoint registered.
func (that *Handlers) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", that.Ping)

	mux.HandleFunc("POST /games", that.CreateGame)
	mux.HandleFunc("GET /games/{id}", that.GetGame)
	mux.HandleFunc("DELETE /games/{id}", that.DeleteGame)
	mux.HandleFunc("POST /games/{id}/moves", that.MakeMove)
	mux.HandleFunc("POST /games/{id}/jump", that.JumpTo)

	return mux
}

func (that *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.game.NewGame(r.Context())
	if err != nil {
		that.writeError(w, "CreateGame", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game.View())
}

func (that *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.game.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "GetGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, game.View())
}

func (that *Handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.game.DeleteGame(r.Context(), r.PathValue("id")); err != nil {
		that.writeError(w, "DeleteGame", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MakeMove answers 200 for ignored clicks too; the reason goes to the "ignored" field.
func (that *Handlers) MakeMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cell is required"})
		return
	}

	game, err := that.game.MakeMove(r.Context(), r.PathValue("id"), *req.Cell)
	if err != nil && !errors.Is(err, usecase.ErrMoveIgnored) {
		that.writeError(w, "MakeMove", err)
		return
	}

	view := game.View()
	if err != nil {
		view.Ignored = err.Error()
	}

	that.writeJSON(w, http.StatusOK, view)
}

func (that *Handlers) JumpTo(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Move == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "move is required"})
		return
	}

	game, err := that.game.JumpTo(r.Context(), r.PathValue("id"), *req.Move)
	if err != nil {
		that.writeError(w, "JumpTo", err)
		return
	}

	that.writeJSON(w, http.StatusOK, game.View())
}

func (that *Handlers) writeError(w http.ResponseWriter, method string, err error) {
	switch {
	case errors.Is(err, repository.ErrGameNotFound):
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: repository.ErrGameNotFound.Error()})
	case errors.Is(err, usecase.ErrMoveIgnored):
		that.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
