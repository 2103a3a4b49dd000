// Package engine holds the board model and the pure move rules for a
// single two-player grid game. It carries no connection or session state;
// everything here is deterministic and side-effect free.
package engine

// Size is the board edge length.
const Size = 3

// Symbol is a participant's per-session marker.
type Symbol string

// Board symbols. The zero value marks an empty cell.
const (
	Empty Symbol = ""
	X     Symbol = "X"
	O     Symbol = "O"
)

// Other returns the opposing symbol.
func Other(s Symbol) Symbol {
	if s == X {
		return O
	}
	return X
}

// Board is the 3×3 grid. Cells are addressed as [row][col].
type Board [Size][Size]Symbol

// ValidCoords reports whether row and col address a cell on the board.
// This is the entire legality rule for coordinates; occupancy and turn
// possession are session concerns.
func ValidCoords(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

// Cell returns the symbol at the given coordinates.
func (b *Board) Cell(row, col int) Symbol {
	return b[row][col]
}

// Occupied reports whether the cell already holds a symbol.
func (b *Board) Occupied(row, col int) bool {
	return b[row][col] != Empty
}

// Place marks a cell. Callers must have validated coordinates and
// occupancy first; a placed symbol is never cleared or overwritten.
func (b *Board) Place(row, col int, s Symbol) {
	b[row][col] = s
}
