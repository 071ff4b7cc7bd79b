package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

const (
	gameKeyPrefix = "game:"

	maxUpdateRetries = 10
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrConcurrentUpdate = errors.New("game was changed concurrently")
)

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	Update(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error)
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository stores games under "game:<id>". Every write refreshes the key's TTL,
// so a session that stops playing expires on its own. A zero ttl keeps keys forever.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err = that.client.Set(ctx, gameKeyPrefix+game.ID, gameJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, gameKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by id: %w", err)
	}

	if deleted == 0 {
		return ErrGameNotFound
	}

	return nil
}

// Update loads the game, lets change modify it and writes it back inside a WATCH transaction,
// retrying when another writer got there first. When change fails nothing is written and the
// loaded game is returned with change's error.
func (that *dbGame) Update(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error) {
	key := gameKeyPrefix + id

	var (
		game      *entity.Game
		changeErr error
	)

	txf := func(tx *redis.Tx) error {
		game, changeErr = nil, nil

		response, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ErrGameNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to get game by id: %w", err)
		}

		var existingGame entity.Game
		if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
			return fmt.Errorf("failed to unmarshal game: %w", err)
		}
		game = &existingGame

		if changeErr = change(game); changeErr != nil {
			return nil
		}

		gameJSON, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("could not marshal game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, that.ttl)
			return nil
		})

		return err
	}

	for range maxUpdateRetries {
		err := that.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return game, changeErr
	}

	return nil, fmt.Errorf("%w: %s", ErrConcurrentUpdate, id)
}
