package entity

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""
)

// MarkForCursor returns the mark that plays next when the given snapshot is displayed.
// X always opens, so even cursors belong to X.
func MarkForCursor(cursor int) string {
	if cursor%2 == 0 {
		return PlayerX
	}
	return PlayerO
}
