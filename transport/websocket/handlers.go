package websocket

import (
	"context"
	"errors"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
)

func (that *Server) handleNewGame(ctx context.Context, _ *Request) Response {
	game, err := that.game.NewGame(ctx)
	if err != nil {
		return that.errorResponse("handleNewGame", err)
	}

	return gameResponse(game)
}

func (that *Server) handleGameState(ctx context.Context, req *Request) Response {
	if req.GameID == "" {
		return Response{Error: "game_id is required"}
	}

	game, err := that.game.GetGame(ctx, req.GameID)
	if err != nil {
		return that.errorResponse("handleGameState", err)
	}

	return gameResponse(game)
}

func (that *Server) handleGameTurn(ctx context.Context, req *Request) Response {
	if req.GameID == "" || req.Cell == nil {
		return Response{Error: "game_id and cell are required"}
	}

	game, err := that.game.MakeMove(ctx, req.GameID, *req.Cell)
	if errors.Is(err, usecase.ErrMoveIgnored) {
		response := gameResponse(game)
		response.Game.Ignored = err.Error()

		return response
	}

	if err != nil {
		return that.errorResponse("handleGameTurn", err)
	}

	return gameResponse(game)
}

func (that *Server) handleGameJump(ctx context.Context, req *Request) Response {
	if req.GameID == "" || req.Move == nil {
		return Response{Error: "game_id and move are required"}
	}

	game, err := that.game.JumpTo(ctx, req.GameID, *req.Move)
	if errors.Is(err, usecase.ErrMoveIgnored) {
		response := gameResponse(game)
		response.Error = err.Error()

		return response
	}

	if err != nil {
		return that.errorResponse("handleGameJump", err)
	}

	return gameResponse(game)
}

func (that *Server) errorResponse(method string, err error) Response {
	if errors.Is(err, repository.ErrGameNotFound) {
		return Response{Error: repository.ErrGameNotFound.Error()}
	}

	that.logger.Error("request failed", "method", method, "error", err)

	return Response{Error: "internal error"}
}

func gameResponse(game *entity.Game) Response {
	view := game.View()
	return Response{Game: &view}
}
