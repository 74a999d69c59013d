package chess

import (
	"fmt"
	"strings"
)

// Position is a zero-based (row, column) pair on a Board. Row 0 is rank 8.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("[%d, %d]", p.Row, p.Column)
}

func (p Position) offset(dir direction) Position {
	return Position{Row: p.Row + dir.row, Column: p.Column + dir.column}
}

// ChessPosition is the human-facing square: a file letter a..h and a rank 1..8.
type ChessPosition struct {
	Column rune
	Row    int
}

// NewChessPosition validates the file letter and rank.
func NewChessPosition(column rune, row int) (ChessPosition, error) {
	if column < 'a' || column > 'h' || row < 1 || row > 8 {
		return ChessPosition{}, fmt.Errorf("%w: valid values are from a1 to h8, got %c%d", ErrInvalidPosition, column, row)
	}
	return ChessPosition{Column: column, Row: row}, nil
}

// ParseChessPosition reads a square in algebraic form, e.g. "e2".
func ParseChessPosition(s string) (ChessPosition, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return ChessPosition{}, fmt.Errorf("%w: %q is not a square", ErrInvalidPosition, s)
	}
	return NewChessPosition(rune(s[0]), int(s[1]-'0'))
}

// MustParseChessPosition is ParseChessPosition for literals known to be valid.
func MustParseChessPosition(s string) ChessPosition {
	cp, err := ParseChessPosition(s)
	if err != nil {
		panic(err)
	}
	return cp
}

// FromPosition converts an internal position back to a square.
func FromPosition(p Position) (ChessPosition, error) {
	return NewChessPosition(rune('a'+p.Column), 8-p.Row)
}

// ToPosition applies row = 8 - rank, column = letter - 'a'.
func (cp ChessPosition) ToPosition() Position {
	return Position{Row: 8 - cp.Row, Column: int(cp.Column - 'a')}
}

func (cp ChessPosition) String() string {
	return fmt.Sprintf("%c%d", cp.Column, cp.Row)
}
