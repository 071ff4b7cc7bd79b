package apperror

import "errors"

var (
	ErrGameFinished = errors.New("game is already finished")
	ErrCellOccupied = errors.New("cell is already occupied")
)
