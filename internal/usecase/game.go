package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

// ErrMoveIgnored marks a click or jump the engine refused. The game returned alongside it is
// the unchanged stored game.
var ErrMoveIgnored = errors.New("move ignored")

type GameUseCase interface {
	NewGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error

	MakeMove(ctx context.Context, id string, cell int) (*entity.Game, error)
	JumpTo(ctx context.Context, id string, move int) (*entity.Game, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	Update(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error)
}

type gameUseCase struct {
	logger   *slog.Logger
	gameRepo gameRepo
}

func NewGameUseCase(logger *slog.Logger, gameRepo gameRepo) GameUseCase {
	return &gameUseCase{
		logger:   logger.With("component", "game"),
		gameRepo: gameRepo,
	}
}

func (that *gameUseCase) NewGame(ctx context.Context) (*entity.Game, error) {
	game := entity.NewGame(uuid.NewString())

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID)

	return game, nil
}

func (that *gameUseCase) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) DeleteGame(ctx context.Context, id string) error {
	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "gameID", id)

	return nil
}

func (that *gameUseCase) MakeMove(ctx context.Context, id string, cell int) (*entity.Game, error) {
	log := that.logger.With("method", "MakeMove", "gameID", id, "cell", cell)

	game, err := that.gameRepo.Update(ctx, id, func(game *entity.Game) error {
		if moveErr := game.ApplyMove(cell); moveErr != nil {
			return fmt.Errorf("%w: %w", ErrMoveIgnored, moveErr)
		}
		return nil
	})
	if errors.Is(err, ErrMoveIgnored) {
		log.Debug("move ignored", "reason", err)
		return game, err
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if winner := game.Winner(); winner != entity.EmptyCell {
		log.Info("game won", "winner", winner, "moves", game.Cursor)
	}

	return game, nil
}

func (that *gameUseCase) JumpTo(ctx context.Context, id string, move int) (*entity.Game, error) {
	log := that.logger.With("method", "JumpTo", "gameID", id, "move", move)

	game, err := that.gameRepo.Update(ctx, id, func(game *entity.Game) error {
		if jumpErr := game.JumpTo(move); jumpErr != nil {
			return fmt.Errorf("%w: %w", ErrMoveIgnored, jumpErr)
		}
		return nil
	})
	if errors.Is(err, ErrMoveIgnored) {
		log.Debug("jump rejected", "reason", err)
		return game, err
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}
