package chess

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func play(t *testing.T, m *Match, moves ...string) {
	t.Helper()
	for _, mv := range moves {
		if _, err := m.PerformChessMove(MustParseChessPosition(mv[:2]), MustParseChessPosition(mv[2:])); err != nil {
			t.Fatalf("PerformChessMove(%s) error: %v", mv, err)
		}
	}
}

func setup(t *testing.T, first Color, pieces ...placed) *Match {
	t.Helper()
	var placements []Placement
	for _, p := range pieces {
		placements = append(placements, Placement{Type: p.typ, Color: p.color, Square: MustParseChessPosition(p.sq)})
	}
	m, err := NewMatchFromSetup(first, placements...)
	if err != nil {
		t.Fatalf("NewMatchFromSetup() error: %v", err)
	}
	return m
}

type matchSnapshot struct {
	Turn          int
	CurrentPlayer Color
	Check         bool
	Checkmate     bool
	Stalemate     bool
	Pieces        [][]*Piece
	OnBoard       []Piece
	Captured      []Piece
}

func snapshot(m *Match) matchSnapshot {
	return matchSnapshot{
		Turn:          m.Turn(),
		CurrentPlayer: m.CurrentPlayer(),
		Check:         m.Check(),
		Checkmate:     m.Checkmate(),
		Stalemate:     m.Stalemate(),
		Pieces:        m.Pieces(),
		OnBoard:       m.PiecesOnBoard(),
		Captured:      m.CapturedPieces(),
	}
}

func TestNewMatchInitialSetup(t *testing.T) {
	m := NewMatch()

	if m.Turn() != 1 || m.CurrentPlayer() != White || m.Check() || m.Checkmate() {
		t.Fatalf("initial state = turn %d, %s, check %v, checkmate %v", m.Turn(), m.CurrentPlayer(), m.Check(), m.Checkmate())
	}
	if got := len(m.PiecesOnBoard()); got != 32 {
		t.Errorf("pieces on board = %d, want 32", got)
	}
	if got := len(m.CapturedPieces()); got != 0 {
		t.Errorf("captured pieces = %d, want 0", got)
	}

	want := map[PieceType]int{King: 1, Queen: 1, Rook: 2, Knight: 2, Bishop: 2, Pawn: 8}
	for _, c := range []Color{White, Black} {
		got := map[PieceType]int{}
		for _, p := range m.PiecesOnBoard() {
			if p.Color == c {
				got[p.Type]++
			}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s setup mismatch (-want +got):\n%s", c, diff)
		}
	}

	pieces := m.Pieces()
	if p := pieces[7][4]; p == nil || p.Type != King || p.Color != White {
		t.Errorf("e1 = %v, want white king", p)
	}
	if p := pieces[0][3]; p == nil || p.Type != Queen || p.Color != Black {
		t.Errorf("d8 = %v, want black queen", p)
	}
}

func TestNewMatchFromSetupValidation(t *testing.T) {
	tests := []struct {
		name   string
		first  Color
		pieces []placed
	}{
		{"missing white king", White, []placed{{King, Black, "e8"}}},
		{"two black kings", White, []placed{{King, White, "e1"}, {King, Black, "e8"}, {King, Black, "a8"}}},
		{"side not to move is in check", White, []placed{{King, White, "e1"}, {Rook, White, "e4"}, {King, Black, "e8"}}},
		{"already checkmated", Black, []placed{{King, White, "e1"}, {Rook, White, "a8"}, {Rook, White, "b7"}, {King, Black, "h8"}}},
		{"already stalemated", Black, []placed{{King, White, "e1"}, {Queen, White, "b6"}, {King, Black, "a8"}}},
		{"overlapping squares", White, []placed{{King, White, "e1"}, {Rook, White, "e1"}, {King, Black, "e8"}}},
		{"unknown color", White, []placed{{King, White, "e1"}, {King, Black, "e8"}, {Rook, Color("red"), "a1"}}},
		{"unknown first color", Color("red"), []placed{{King, White, "e1"}, {King, Black, "e8"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var placements []Placement
			for _, p := range tt.pieces {
				placements = append(placements, Placement{Type: p.typ, Color: p.color, Square: MustParseChessPosition(p.sq)})
			}
			if _, err := NewMatchFromSetup(tt.first, placements...); !errors.Is(err, ErrInvariantViolation) {
				t.Errorf("NewMatchFromSetup() error = %v, want ErrInvariantViolation", err)
			}
		})
	}
}

func TestNewMatchFromSetupStartsInCheck(t *testing.T) {
	m := setup(t, Black, placed{King, White, "e1"}, placed{Rook, White, "e4"}, placed{King, Black, "e8"})
	if !m.Check() || m.Checkmate() {
		t.Errorf("check = %v, checkmate = %v; want true, false", m.Check(), m.Checkmate())
	}
}

func TestPerformChessMoveAlternatesTurns(t *testing.T) {
	m := NewMatch()
	moves := []string{"e2e4", "e7e5", "g1f3", "b8c6"}
	for i, mv := range moves {
		before := m.CurrentPlayer()
		play(t, m, mv)
		if m.CurrentPlayer() != before.Opponent() {
			t.Errorf("after %s current player = %s, want %s", mv, m.CurrentPlayer(), before.Opponent())
		}
		if m.Turn() != i+2 {
			t.Errorf("after %s turn = %d, want %d", mv, m.Turn(), i+2)
		}
	}
}

func TestPerformChessMoveCapture(t *testing.T) {
	m := NewMatch()
	play(t, m, "e2e4", "d7d5")

	captured, err := m.PerformChessMove(MustParseChessPosition("e4"), MustParseChessPosition("d5"))
	if err != nil {
		t.Fatalf("PerformChessMove(e4d5) error: %v", err)
	}
	if captured == nil || captured.Type != Pawn || captured.Color != Black {
		t.Fatalf("captured = %v, want black pawn", captured)
	}
	if got := len(m.PiecesOnBoard()); got != 31 {
		t.Errorf("pieces on board = %d, want 31", got)
	}
	for _, p := range m.PiecesOnBoard() {
		if p.ID == captured.ID {
			t.Errorf("captured piece %d is still on the board list", p.ID)
		}
	}
	if diff := cmp.Diff([]Piece{*captured}, m.CapturedPieces()); diff != "" {
		t.Errorf("captured list mismatch (-want +got):\n%s", diff)
	}

	mover := m.Pieces()[MustParseChessPosition("d5").ToPosition().Row][3]
	if mover == nil || mover.Color != White || mover.MoveCount != 2 {
		t.Errorf("d5 = %+v, want white pawn with two moves", mover)
	}

	captured, err = m.PerformChessMove(MustParseChessPosition("g8"), MustParseChessPosition("f6"))
	if err != nil || captured != nil {
		t.Errorf("quiet move = %v, %v; want nil, nil", captured, err)
	}
}

func TestPerformChessMoveRejections(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		{"empty source", "e4", "e5", ErrIllegalMove},
		{"opponent piece", "e7", "e5", ErrIllegalMove},
		{"piece without moves", "a1", "a2", ErrIllegalMove},
		{"target not reachable", "e2", "e5", ErrIllegalMove},
		{"target occupied by own piece", "g1", "e2", ErrIllegalMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatch()
			before := snapshot(m)

			_, err := m.PerformChessMove(MustParseChessPosition(tt.from), MustParseChessPosition(tt.to))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("PerformChessMove(%s%s) error = %v, want %v", tt.from, tt.to, err, tt.wantErr)
			}
			var moveErr *MoveError
			if !errors.As(err, &moveErr) || moveErr.Source != tt.from {
				t.Errorf("error %v does not carry source %s", err, tt.from)
			}
			if diff := cmp.Diff(before, snapshot(m)); diff != "" {
				t.Errorf("rejected move changed the match (-before +after):\n%s", diff)
			}
		})
	}
}

func TestPerformChessMoveOffBoardSquare(t *testing.T) {
	m := NewMatch()
	_, err := m.PerformChessMove(MustParseChessPosition("e2"), ChessPosition{Column: 'e', Row: 9})
	if !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("error = %v, want ErrInvalidPosition", err)
	}
	_, err = m.PossibleMoves(ChessPosition{Column: 'z', Row: 1})
	if !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("PossibleMoves error = %v, want ErrInvalidPosition", err)
	}
}

func TestSelfCheckIsRejectedTransactionally(t *testing.T) {
	tests := []struct {
		name   string
		pieces []placed
		from   string
		to     string
	}{
		{
			name:   "pinned rook leaves the file",
			pieces: []placed{{King, White, "e1"}, {Rook, White, "e2"}, {Rook, Black, "e8"}, {King, Black, "a8"}},
			from:   "e2",
			to:     "d2",
		},
		{
			name:   "pinned rook captures off the file",
			pieces: []placed{{King, White, "e1"}, {Rook, White, "e2"}, {Knight, Black, "b2"}, {Rook, Black, "e8"}, {Pawn, Black, "h5"}, {King, Black, "a8"}},
			from:   "e2",
			to:     "b2",
		},
		{
			name:   "king steps into a rook file",
			pieces: []placed{{King, White, "e1"}, {Rook, Black, "d8"}, {King, Black, "a8"}},
			from:   "e1",
			to:     "d1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := setup(t, White, tt.pieces...)
			source := MustParseChessPosition(tt.from)
			matBefore, err := m.PossibleMoves(source)
			if err != nil {
				t.Fatalf("PossibleMoves(%s) error: %v", tt.from, err)
			}
			before := snapshot(m)

			_, err = m.PerformChessMove(source, MustParseChessPosition(tt.to))
			if !errors.Is(err, ErrIllegalMove) {
				t.Fatalf("PerformChessMove(%s%s) error = %v, want ErrIllegalMove", tt.from, tt.to, err)
			}
			if diff := cmp.Diff(before, snapshot(m)); diff != "" {
				t.Errorf("rejected move changed the match (-before +after):\n%s", diff)
			}
			matAfter, err := m.PossibleMoves(source)
			if err != nil {
				t.Fatalf("PossibleMoves(%s) error: %v", tt.from, err)
			}
			if diff := cmp.Diff(matBefore, matAfter); diff != "" {
				t.Errorf("move matrix changed (-before +after):\n%s", diff)
			}
		})
	}
}

func TestLegalMovesFiltersSelfCheck(t *testing.T) {
	m := setup(t, White, placed{King, White, "e1"}, placed{Rook, White, "e2"}, placed{Rook, Black, "e8"}, placed{King, Black, "a8"})

	legal, err := m.LegalMoves(MustParseChessPosition("e2"))
	if err != nil {
		t.Fatalf("LegalMoves() error: %v", err)
	}
	want := []string{"e3", "e4", "e5", "e6", "e7", "e8"}
	if diff := cmp.Diff(want, squaresOf(t, legal), sortStrings); diff != "" {
		t.Errorf("legal moves mismatch (-want +got):\n%s", diff)
	}

	raw, err := m.PossibleMoves(MustParseChessPosition("e2"))
	if err != nil {
		t.Fatalf("PossibleMoves() error: %v", err)
	}
	if got := len(raw.Positions()); got != 13 {
		t.Errorf("raw moves = %d, want 13", got)
	}
}

func TestBackRankCheckmate(t *testing.T) {
	m := setup(t, White,
		placed{King, White, "e1"}, placed{Rook, White, "a1"},
		placed{King, Black, "g8"}, placed{Pawn, Black, "f7"}, placed{Pawn, Black, "g7"}, placed{Pawn, Black, "h7"},
	)

	play(t, m, "a1a8")

	if !m.Check() || !m.Checkmate() {
		t.Fatalf("check = %v, checkmate = %v; want both true", m.Check(), m.Checkmate())
	}
	if m.Turn() != 1 || m.CurrentPlayer() != White {
		t.Errorf("turn = %d, player = %s; want 1, white", m.Turn(), m.CurrentPlayer())
	}
	if winner, ok := m.Winner(); !ok || winner != White {
		t.Errorf("Winner() = %s, %v; want white, true", winner, ok)
	}

	before := snapshot(m)
	_, err := m.PerformChessMove(MustParseChessPosition("f7"), MustParseChessPosition("f6"))
	if !errors.Is(err, ErrIllegalMove) {
		t.Errorf("move after checkmate error = %v, want ErrIllegalMove", err)
	}
	if diff := cmp.Diff(before, snapshot(m)); diff != "" {
		t.Errorf("move after checkmate changed the match (-before +after):\n%s", diff)
	}
}

func TestStalemateEndsTheMatch(t *testing.T) {
	m := setup(t, White, placed{King, White, "e1"}, placed{Queen, White, "c5"}, placed{King, Black, "a8"})

	play(t, m, "c5b6")

	if m.Check() || m.Checkmate() || !m.Stalemate() || !m.Over() {
		t.Fatalf("check = %v, checkmate = %v, stalemate = %v; want false, false, true",
			m.Check(), m.Checkmate(), m.Stalemate())
	}
	if m.Turn() != 2 || m.CurrentPlayer() != Black {
		t.Errorf("turn = %d, player = %s; want 2, black", m.Turn(), m.CurrentPlayer())
	}
	if winner, ok := m.Winner(); ok {
		t.Errorf("Winner() = %s, true; want no winner", winner)
	}

	before := snapshot(m)
	for _, mv := range []string{"a8a7", "a8b8"} {
		_, err := m.PerformChessMove(MustParseChessPosition(mv[:2]), MustParseChessPosition(mv[2:]))
		if !errors.Is(err, ErrIllegalMove) {
			t.Errorf("%s after stalemate error = %v, want ErrIllegalMove", mv, err)
		}
	}
	if diff := cmp.Diff(before, snapshot(m)); diff != "" {
		t.Errorf("move after stalemate changed the match (-before +after):\n%s", diff)
	}
}

func TestNoStalemateWhileAMoveRemains(t *testing.T) {
	m := setup(t, White,
		placed{King, White, "e1"}, placed{Queen, White, "c5"},
		placed{King, Black, "a8"}, placed{Pawn, Black, "h7"},
	)

	play(t, m, "c5b6")

	if m.Stalemate() || m.Over() {
		t.Error("stalemate set although h7 can still move")
	}
	play(t, m, "h7h6")
}

func TestBackRankCheckWithEscape(t *testing.T) {
	m := setup(t, White,
		placed{King, White, "e1"}, placed{Rook, White, "a1"},
		placed{King, Black, "g8"}, placed{Pawn, Black, "f7"}, placed{Pawn, Black, "g7"}, placed{Pawn, Black, "h6"},
	)

	play(t, m, "a1a8")

	if !m.Check() || m.Checkmate() {
		t.Fatalf("check = %v, checkmate = %v; want true, false", m.Check(), m.Checkmate())
	}
	if m.Turn() != 2 || m.CurrentPlayer() != Black {
		t.Errorf("turn = %d, player = %s; want 2, black", m.Turn(), m.CurrentPlayer())
	}

	// Only the king can answer the check.
	_, err := m.PerformChessMove(MustParseChessPosition("f7"), MustParseChessPosition("f6"))
	if !errors.Is(err, ErrIllegalMove) {
		t.Errorf("ignoring check error = %v, want ErrIllegalMove", err)
	}
	play(t, m, "g8h7")
	if m.Check() {
		t.Error("check still set after escaping")
	}
}

func TestCheckmateBlockedByInterposition(t *testing.T) {
	m := setup(t, White,
		placed{King, White, "e1"}, placed{Rook, White, "a1"},
		placed{King, Black, "g8"}, placed{Pawn, Black, "f7"}, placed{Pawn, Black, "g7"}, placed{Pawn, Black, "h7"},
		placed{Bishop, Black, "c6"},
	)

	play(t, m, "a1a8")
	if !m.Check() || m.Checkmate() {
		t.Fatalf("check = %v, checkmate = %v; want true, false", m.Check(), m.Checkmate())
	}
	play(t, m, "c6e8")
	if m.Check() {
		t.Error("check still set after interposing")
	}
}

func TestTestCheckmateMatchesExhaustiveSimulation(t *testing.T) {
	m := NewMatch()
	play(t, m, "f2f3", "e7e5", "g2g4")

	for _, c := range []Color{White, Black} {
		inCheck, err := m.TestCheck(c)
		if err != nil {
			t.Fatal(err)
		}
		escapes := false
		for _, id := range m.idsOf(c) {
			p := m.board.PieceByID(id)
			source := p.Position
			for _, target := range PossibleMoves(m.board, p).Positions() {
				rec := m.makeMove(source, target)
				still, err := m.TestCheck(c)
				m.undoMove(rec)
				if err != nil {
					t.Fatal(err)
				}
				escapes = escapes || !still
			}
		}
		mated, err := m.TestCheckmate(c)
		if err != nil {
			t.Fatal(err)
		}
		if want := inCheck && !escapes; mated != want {
			t.Errorf("TestCheckmate(%s) = %v, want %v", c, mated, want)
		}
	}
}

func TestTestCheckWithoutKing(t *testing.T) {
	m := NewMatch()
	king := m.board.at(MustParseChessPosition("e8").ToPosition())
	m.board.take(king.Position)
	m.onBoard = removeID(m.onBoard, king.ID)

	if _, err := m.TestCheck(Black); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("TestCheck() error = %v, want ErrInvariantViolation", err)
	}
}

func removeID(ids []PieceID, id PieceID) []PieceID {
	var out []PieceID
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
