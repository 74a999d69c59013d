package chess

import "fmt"

// Board is a rows x columns grid of piece handles. It stores pieces and knows
// nothing about the rules.
type Board struct {
	rows    int
	columns int
	cells   [][]PieceID
	pieces  []*Piece
}

func NewBoard(rows, columns int) (*Board, error) {
	if rows < 1 || columns < 1 {
		return nil, fmt.Errorf("%w: board needs at least one row and one column, got %dx%d", ErrInvariantViolation, rows, columns)
	}
	b := &Board{rows: rows, columns: columns}
	for i := 0; i < rows; i++ {
		row := make([]PieceID, columns)
		for j := range row {
			row[j] = NoPiece
		}
		b.cells = append(b.cells, row)
	}
	return b, nil
}

func (b *Board) Rows() int    { return b.rows }
func (b *Board) Columns() int { return b.columns }

func (b *Board) PositionExists(p Position) bool {
	return p.Row >= 0 && p.Row < b.rows && p.Column >= 0 && p.Column < b.columns
}

// Add registers a new piece in the arena without placing it.
func (b *Board) Add(t PieceType, c Color) PieceID {
	id := PieceID(len(b.pieces))
	b.pieces = append(b.pieces, &Piece{ID: id, Type: t, Color: c})
	return id
}

// PieceByID returns the arena entry for id, or nil for an unknown handle.
func (b *Board) PieceByID(id PieceID) *Piece {
	if id < 0 || int(id) >= len(b.pieces) {
		return nil
	}
	return b.pieces[id]
}

func (b *Board) Piece(p Position) (*Piece, error) {
	if !b.PositionExists(p) {
		return nil, fmt.Errorf("%w: %v is not on the board", ErrInvalidPosition, p)
	}
	return b.at(p), nil
}

func (b *Board) ThereIsAPiece(p Position) (bool, error) {
	piece, err := b.Piece(p)
	if err != nil {
		return false, err
	}
	return piece != nil, nil
}

// PlacePiece stores id at p and records p on the piece. The target cell must be empty.
func (b *Board) PlacePiece(id PieceID, p Position) error {
	piece := b.PieceByID(id)
	if piece == nil {
		return fmt.Errorf("%w: unknown piece %d", ErrInvariantViolation, id)
	}
	occupied, err := b.ThereIsAPiece(p)
	if err != nil {
		return err
	}
	if occupied {
		return fmt.Errorf("%w: there is already a piece on %v", ErrInvariantViolation, p)
	}
	b.put(id, p)
	return nil
}

// RemovePiece clears p and returns whatever was there, NoPiece if it was empty.
func (b *Board) RemovePiece(p Position) (PieceID, error) {
	if !b.PositionExists(p) {
		return NoPiece, fmt.Errorf("%w: %v is not on the board", ErrInvalidPosition, p)
	}
	return b.take(p), nil
}

// at is the unchecked lookup used by move generation.
func (b *Board) at(p Position) *Piece {
	id := b.cells[p.Row][p.Column]
	if id == NoPiece {
		return nil
	}
	return b.pieces[id]
}

// put and take skip validation; callers have already checked p.
func (b *Board) put(id PieceID, p Position) {
	b.cells[p.Row][p.Column] = id
	b.pieces[id].Position = p
}

func (b *Board) take(p Position) PieceID {
	id := b.cells[p.Row][p.Column]
	b.cells[p.Row][p.Column] = NoPiece
	return id
}
