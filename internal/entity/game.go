package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
)

const (
	StatusWinnerPrefix = "Winner: "
	StatusNextPrefix   = "Next player: "
	StatusDraw         = "Draw"
)

var (
	ErrInvalidCell = errors.New("invalid cell index")
	ErrInvalidMove = errors.New("invalid move index")

	// WinCombos is scanned in order, the first complete line decides the winner.
	WinCombos = [][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Board is a single snapshot of the 3x3 grid, indexed row by row.
type Board [9]string

// Game holds every snapshot played so far and a cursor selecting the displayed one.
type Game struct {
	ID      string  `json:"id"`
	History []Board `json:"history"`
	Cursor  int     `json:"cursor"`
}

// Move describes one entry of the move list.
type Move struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Current     bool   `json:"current"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:      id,
		History: []Board{{EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell}},
		Cursor:  0,
	}
}

// ComputeWinner returns the mark owning a complete line, or EmptyCell when there is none.
func ComputeWinner(board Board) string {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

func (that *Game) CurrentBoard() Board {
	return that.History[that.Cursor]
}

func (that *Game) NextMark() string {
	return MarkForCursor(that.Cursor)
}

func (that *Game) Winner() string {
	return ComputeWinner(that.CurrentBoard())
}

// IsDraw reports a full board without a winner.
func (that *Game) IsDraw() bool {
	board := that.CurrentBoard()
	if ComputeWinner(board) != EmptyCell {
		return false
	}

	for _, cell := range board {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that *Game) Status() string {
	if winner := that.Winner(); winner != EmptyCell {
		return StatusWinnerPrefix + winner
	}

	if that.IsDraw() {
		return StatusDraw
	}

	return StatusNextPrefix + that.NextMark()
}

// ApplyMove places the next mark on cell of the displayed board. Any snapshots after the
// cursor are discarded before the new one is appended. When an error is returned the game
// is left untouched.
func (that *Game) ApplyMove(cell int) error {
	if cell < 0 || cell >= len(Board{}) {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	current := that.CurrentBoard()

	if ComputeWinner(current) != EmptyCell {
		return apperror.ErrGameFinished
	}

	if current[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	next := current
	next[cell] = that.NextMark()

	// cap the slice so append never writes into a discarded future snapshot
	that.History = append(that.History[:that.Cursor+1:that.Cursor+1], next)
	that.Cursor = len(that.History) - 1

	return nil
}

// JumpTo moves the cursor to an existing snapshot. History is never modified.
func (that *Game) JumpTo(move int) error {
	if move < 0 || move >= len(that.History) {
		return fmt.Errorf("%w: move %d of %d", ErrInvalidMove, move, len(that.History))
	}

	that.Cursor = move

	return nil
}

func (that *Game) Moves() []Move {
	moves := make([]Move, 0, len(that.History))
	for i := range that.History {
		description := "Go to game start"
		if i > 0 {
			description = fmt.Sprintf("Go to move #%d", i)
		}

		moves = append(moves, Move{
			Index:       i,
			Description: description,
			Current:     i == that.Cursor,
		})
	}

	return moves
}

// GameView is the representation handed to clients: the displayed board plus everything a
// move list and a status line need.
type GameView struct {
	ID      string `json:"id"`
	Board   Board  `json:"board"`
	Cursor  int    `json:"cursor"`
	Next    string `json:"next,omitempty"`
	Winner  string `json:"winner,omitempty"`
	Draw    bool   `json:"draw,omitempty"`
	Status  string `json:"status"`
	Moves   []Move `json:"moves"`
	Ignored string `json:"ignored,omitempty"`
}

func (that *Game) View() GameView {
	view := GameView{
		ID:     that.ID,
		Board:  that.CurrentBoard(),
		Cursor: that.Cursor,
		Winner: that.Winner(),
		Draw:   that.IsDraw(),
		Status: that.Status(),
		Moves:  that.Moves(),
	}

	if view.Winner == EmptyCell && !view.Draw {
		view.Next = that.NextMark()
	}

	return view
}
