package chess

import (
	"fmt"
	"slices"
)

// Match is the turn state machine. It owns the board and the two piece lists
// and is not safe for concurrent use.
type Match struct {
	board         *Board
	turn          int
	currentPlayer Color
	check         bool
	checkmate     bool
	stalemate     bool
	onBoard       []PieceID
	captured      []PieceID
}

// Placement puts one piece on a square when building a match.
type Placement struct {
	Type   PieceType
	Color  Color
	Square ChessPosition
}

// NewMatch returns a match in the standard starting position with White to move.
func NewMatch() *Match {
	m, err := NewMatchFromSetup(White, standardSetup()...)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMatchFromSetup builds a match from an arbitrary position. Each side needs
// exactly one king, the side not to move must not be in check, and the side to
// move must have a legal move.
func NewMatchFromSetup(first Color, placements ...Placement) (*Match, error) {
	if first != White && first != Black {
		return nil, fmt.Errorf("%w: unknown color %q", ErrInvariantViolation, first)
	}
	board, err := NewBoard(8, 8)
	if err != nil {
		return nil, err
	}
	m := &Match{board: board, turn: 1, currentPlayer: first}
	for _, pl := range placements {
		if err := m.placeNewPiece(pl); err != nil {
			return nil, err
		}
	}
	for _, c := range []Color{White, Black} {
		if n := m.count(c, King); n != 1 {
			return nil, fmt.Errorf("%w: %s has %d kings", ErrInvariantViolation, c, n)
		}
	}
	if exposed, _ := m.TestCheck(first.Opponent()); exposed {
		return nil, fmt.Errorf("%w: %s is in check but it is %s to move", ErrInvariantViolation, first.Opponent(), first)
	}
	if m.check, err = m.TestCheck(first); err != nil {
		return nil, err
	}
	canMove, err := m.hasLegalMove(first)
	if err != nil {
		return nil, err
	}
	if !canMove {
		if m.check {
			return nil, fmt.Errorf("%w: %s is already checkmated", ErrInvariantViolation, first)
		}
		return nil, fmt.Errorf("%w: %s is already stalemated", ErrInvariantViolation, first)
	}
	return m, nil
}

func (m *Match) Turn() int            { return m.turn }
func (m *Match) CurrentPlayer() Color { return m.currentPlayer }
func (m *Match) Check() bool          { return m.check }
func (m *Match) Checkmate() bool      { return m.checkmate }

// Stalemate reports that the side to move is not in check but has no legal
// move. The match is drawn and, like checkmate, accepts no further moves.
func (m *Match) Stalemate() bool { return m.stalemate }

// Over reports whether the match has ended by checkmate or stalemate.
func (m *Match) Over() bool { return m.checkmate || m.stalemate }

// Winner reports the side that delivered checkmate.
func (m *Match) Winner() (Color, bool) {
	if !m.checkmate {
		return "", false
	}
	return m.currentPlayer, true
}

// Pieces returns a rows x columns snapshot with copies of the pieces; empty cells are nil.
func (m *Match) Pieces() [][]*Piece {
	mat := make([][]*Piece, m.board.Rows())
	for i := range mat {
		mat[i] = make([]*Piece, m.board.Columns())
		for j := range mat[i] {
			if p := m.board.at(Position{Row: i, Column: j}); p != nil {
				cp := *p
				mat[i][j] = &cp
			}
		}
	}
	return mat
}

// PiecesOnBoard returns copies of the pieces still in play.
func (m *Match) PiecesOnBoard() []Piece {
	return m.copies(m.onBoard)
}

// CapturedPieces returns copies of the captured pieces in capture order.
func (m *Match) CapturedPieces() []Piece {
	return m.copies(m.captured)
}

// PossibleMoves validates source and returns the raw move matrix of its piece.
// The matrix is not filtered for self-check.
func (m *Match) PossibleMoves(sourcePosition ChessPosition) (MoveMatrix, error) {
	mat, err := m.validateSourcePosition(sourcePosition)
	if err != nil {
		return nil, err
	}
	return mat, nil
}

// LegalMoves is PossibleMoves minus the destinations that would leave the
// current player's king attacked.
func (m *Match) LegalMoves(sourcePosition ChessPosition) (MoveMatrix, error) {
	mat, err := m.validateSourcePosition(sourcePosition)
	if err != nil {
		return nil, err
	}
	source := sourcePosition.ToPosition()
	for _, target := range mat.Positions() {
		rec := m.makeMove(source, target)
		inCheck, err := m.TestCheck(m.currentPlayer)
		m.undoMove(rec)
		if err != nil {
			return nil, err
		}
		if inCheck {
			mat[target.Row][target.Column] = false
		}
	}
	return mat, nil
}

// PerformChessMove validates and commits a move for the current player and
// returns a copy of the captured piece, or nil. A rejected move leaves the
// match exactly as it was.
func (m *Match) PerformChessMove(sourcePosition, targetPosition ChessPosition) (*Piece, error) {
	if m.Over() {
		return nil, m.moveError(ErrIllegalMove, sourcePosition, &targetPosition, "the match is over")
	}
	mat, err := m.validateSourcePosition(sourcePosition)
	if err != nil {
		return nil, err
	}
	source, target := sourcePosition.ToPosition(), targetPosition.ToPosition()
	if !m.board.PositionExists(target) {
		return nil, m.moveError(ErrInvalidPosition, sourcePosition, &targetPosition, "target is not on the board")
	}
	if !mat.At(target) {
		return nil, m.moveError(ErrIllegalMove, sourcePosition, &targetPosition, "the chosen piece cannot move to the target position")
	}

	rec := m.makeMove(source, target)
	selfCheck, err := m.TestCheck(m.currentPlayer)
	if err != nil {
		m.undoMove(rec)
		return nil, err
	}
	if selfCheck {
		m.undoMove(rec)
		return nil, m.moveError(ErrIllegalMove, sourcePosition, &targetPosition, "you cannot put yourself in check")
	}

	opponent := m.currentPlayer.Opponent()
	check, err := m.TestCheck(opponent)
	if err != nil {
		m.undoMove(rec)
		return nil, err
	}
	canMove, err := m.hasLegalMove(opponent)
	if err != nil {
		m.undoMove(rec)
		return nil, err
	}
	m.check = check
	m.checkmate = check && !canMove
	m.stalemate = !check && !canMove
	if !m.checkmate {
		m.nextTurn()
	}

	if rec.captured == NoPiece {
		return nil, nil
	}
	cp := *m.board.PieceByID(rec.captured)
	return &cp, nil
}

// TestCheck reports whether the king of color is attacked by any opponent piece.
func (m *Match) TestCheck(color Color) (bool, error) {
	king, err := m.king(color)
	if err != nil {
		return false, err
	}
	for _, id := range m.onBoard {
		p := m.board.PieceByID(id)
		if p.Color == color {
			continue
		}
		if PossibleMoves(m.board, p).At(king.Position) {
			return true, nil
		}
	}
	return false, nil
}

// TestCheckmate reports whether color is in check and every move of every one
// of its pieces still leaves it in check.
func (m *Match) TestCheckmate(color Color) (bool, error) {
	inCheck, err := m.TestCheck(color)
	if err != nil || !inCheck {
		return false, err
	}
	canMove, err := m.hasLegalMove(color)
	if err != nil {
		return false, err
	}
	return !canMove, nil
}

// hasLegalMove simulates every raw move of color and stops at the first one
// that leaves its king safe.
func (m *Match) hasLegalMove(color Color) (bool, error) {
	for _, id := range m.idsOf(color) {
		p := m.board.PieceByID(id)
		source := p.Position
		for _, target := range PossibleMoves(m.board, p).Positions() {
			rec := m.makeMove(source, target)
			stillInCheck, err := m.TestCheck(color)
			m.undoMove(rec)
			if err != nil {
				return false, err
			}
			if !stillInCheck {
				return true, nil
			}
		}
	}
	return false, nil
}

// moveRecord is everything undoMove needs to restore the position exactly.
type moveRecord struct {
	source         Position
	target         Position
	mover          PieceID
	priorMoveCount int
	captured       PieceID
	capturedIndex  int
}

// makeMove relocates the piece on source to target, capturing any occupant.
// Both positions must be on the board and source must be occupied.
func (m *Match) makeMove(source, target Position) moveRecord {
	mover := m.board.take(source)
	p := m.board.PieceByID(mover)
	rec := moveRecord{
		source:         source,
		target:         target,
		mover:          mover,
		priorMoveCount: p.MoveCount,
		captured:       NoPiece,
		capturedIndex:  -1,
	}
	p.MoveCount++

	if captured := m.board.take(target); captured != NoPiece {
		rec.captured = captured
		rec.capturedIndex = slices.Index(m.onBoard, captured)
		m.onBoard = slices.Delete(m.onBoard, rec.capturedIndex, rec.capturedIndex+1)
		m.captured = append(m.captured, captured)
	}
	m.board.put(mover, target)
	return rec
}

// undoMove reverts exactly one makeMove.
func (m *Match) undoMove(rec moveRecord) {
	m.board.take(rec.target)
	m.board.PieceByID(rec.mover).MoveCount = rec.priorMoveCount
	m.board.put(rec.mover, rec.source)

	if rec.captured != NoPiece {
		m.board.put(rec.captured, rec.target)
		m.captured = m.captured[:len(m.captured)-1]
		m.onBoard = slices.Insert(m.onBoard, rec.capturedIndex, rec.captured)
	}
}

func (m *Match) validateSourcePosition(sourcePosition ChessPosition) (MoveMatrix, error) {
	position := sourcePosition.ToPosition()
	piece, err := m.board.Piece(position)
	if err != nil {
		return nil, m.moveError(err, sourcePosition, nil, "")
	}
	if piece == nil {
		return nil, m.moveError(ErrIllegalMove, sourcePosition, nil, "there is no piece on the source position")
	}
	if piece.Color != m.currentPlayer {
		return nil, m.moveError(ErrIllegalMove, sourcePosition, nil, "the chosen piece is not yours")
	}
	mat := PossibleMoves(m.board, piece)
	if !mat.Any() {
		return nil, m.moveError(ErrIllegalMove, sourcePosition, nil, "there are no possible moves for the chosen piece")
	}
	return mat, nil
}

func (m *Match) nextTurn() {
	m.turn++
	m.currentPlayer = m.currentPlayer.Opponent()
}

func (m *Match) placeNewPiece(pl Placement) error {
	if pl.Color != White && pl.Color != Black {
		return fmt.Errorf("%w: unknown color %q", ErrInvariantViolation, pl.Color)
	}
	if _, ok := moveRules[pl.Type]; !ok {
		return fmt.Errorf("%w: unknown piece type %q", ErrInvariantViolation, pl.Type)
	}
	if _, err := NewChessPosition(pl.Square.Column, pl.Square.Row); err != nil {
		return err
	}
	id := m.board.Add(pl.Type, pl.Color)
	if err := m.board.PlacePiece(id, pl.Square.ToPosition()); err != nil {
		return err
	}
	m.onBoard = append(m.onBoard, id)
	return nil
}

func (m *Match) king(color Color) (*Piece, error) {
	for _, id := range m.onBoard {
		if p := m.board.PieceByID(id); p.Color == color && p.Type == King {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: there is no %s king on the board", ErrInvariantViolation, color)
}

func (m *Match) idsOf(color Color) []PieceID {
	var ids []PieceID
	for _, id := range m.onBoard {
		if m.board.PieceByID(id).Color == color {
			ids = append(ids, id)
		}
	}
	return ids
}

func (m *Match) count(color Color, t PieceType) int {
	n := 0
	for _, id := range m.idsOf(color) {
		if m.board.PieceByID(id).Type == t {
			n++
		}
	}
	return n
}

func (m *Match) copies(ids []PieceID) []Piece {
	out := make([]Piece, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.board.PieceByID(id))
	}
	return out
}

func (m *Match) moveError(err error, source ChessPosition, target *ChessPosition, reason string) error {
	e := &MoveError{
		Err:    err,
		Turn:   m.turn,
		Player: m.currentPlayer,
		Source: source.String(),
		Reason: reason,
	}
	if target != nil {
		e.Target = target.String()
	}
	return e
}

func standardSetup() []Placement {
	backRank := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	var placements []Placement
	for i, file := range "abcdefgh" {
		placements = append(placements,
			Placement{Type: backRank[i], Color: White, Square: MustParseChessPosition(string(file) + "1")},
			Placement{Type: Pawn, Color: White, Square: MustParseChessPosition(string(file) + "2")},
			Placement{Type: Pawn, Color: Black, Square: MustParseChessPosition(string(file) + "7")},
			Placement{Type: backRank[i], Color: Black, Square: MustParseChessPosition(string(file) + "8")},
		)
	}
	return placements
}
