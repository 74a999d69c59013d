package chess

import "strings"

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	return string(c)
}

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (t PieceType) notation() string {
	switch t {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return "?"
}

// PieceID is a handle into the board's piece arena.
type PieceID int

// NoPiece marks an empty cell.
const NoPiece PieceID = -1

type Piece struct {
	ID        PieceID   `json:"id"`
	Type      PieceType `json:"type"`
	Color     Color     `json:"color"`
	Position  Position  `json:"position"`
	MoveCount int       `json:"moveCount"`
}

// String renders the piece as a letter, upper case for White.
func (p Piece) String() string {
	if p.Color == Black {
		return strings.ToLower(p.Type.notation())
	}
	return p.Type.notation()
}

func (p *Piece) isOpponent(other *Piece) bool {
	return other != nil && other.Color != p.Color
}
