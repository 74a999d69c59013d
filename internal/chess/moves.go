package chess

// MoveMatrix marks every cell a piece could move to, ignoring self-check.
type MoveMatrix [][]bool

func newMoveMatrix(rows, columns int) MoveMatrix {
	m := make(MoveMatrix, rows)
	for i := range m {
		m[i] = make([]bool, columns)
	}
	return m
}

// At reports whether p is marked. Cells outside the matrix are never marked.
func (m MoveMatrix) At(p Position) bool {
	if p.Row < 0 || p.Row >= len(m) || p.Column < 0 || p.Column >= len(m[p.Row]) {
		return false
	}
	return m[p.Row][p.Column]
}

// Any reports whether at least one cell is marked.
func (m MoveMatrix) Any() bool {
	for _, row := range m {
		for _, ok := range row {
			if ok {
				return true
			}
		}
	}
	return false
}

// Positions lists the marked cells in row-major order.
func (m MoveMatrix) Positions() []Position {
	var out []Position
	for i, row := range m {
		for j, ok := range row {
			if ok {
				out = append(out, Position{Row: i, Column: j})
			}
		}
	}
	return out
}

// MoveRule computes the raw move matrix for one piece variant.
type MoveRule interface {
	PossibleMoves(b *Board, p *Piece) MoveMatrix
}

type direction struct {
	row    int
	column int
}

var (
	orthogonalDirs = []direction{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	diagonalDirs   = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	allDirs        = append(append([]direction{}, orthogonalDirs...), diagonalDirs...)
	knightDirs     = []direction{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
)

var moveRules = map[PieceType]MoveRule{
	Rook:   slidingRule{dirs: orthogonalDirs},
	Bishop: slidingRule{dirs: diagonalDirs},
	Queen:  slidingRule{dirs: allDirs},
	Knight: steppingRule{dirs: knightDirs},
	King:   steppingRule{dirs: allDirs},
	Pawn:   pawnRule{},
}

// PossibleMoves dispatches on the piece's variant tag.
func PossibleMoves(b *Board, p *Piece) MoveMatrix {
	rule, ok := moveRules[p.Type]
	if !ok {
		return newMoveMatrix(b.Rows(), b.Columns())
	}
	return rule.PossibleMoves(b, p)
}

// slidingRule walks each ray until the edge or the first occupied cell, which
// is included only when it holds an opponent.
type slidingRule struct {
	dirs []direction
}

func (r slidingRule) PossibleMoves(b *Board, p *Piece) MoveMatrix {
	mat := newMoveMatrix(b.Rows(), b.Columns())
	for _, dir := range r.dirs {
		target := p.Position.offset(dir)
		for b.PositionExists(target) {
			occupant := b.at(target)
			if occupant == nil {
				mat[target.Row][target.Column] = true
			} else {
				if p.isOpponent(occupant) {
					mat[target.Row][target.Column] = true
				}
				break
			}
			target = target.offset(dir)
		}
	}
	return mat
}

// steppingRule tries fixed offsets, jumping over anything in between.
type steppingRule struct {
	dirs []direction
}

func (r steppingRule) PossibleMoves(b *Board, p *Piece) MoveMatrix {
	mat := newMoveMatrix(b.Rows(), b.Columns())
	for _, dir := range r.dirs {
		target := p.Position.offset(dir)
		if !b.PositionExists(target) {
			continue
		}
		if occupant := b.at(target); occupant == nil || p.isOpponent(occupant) {
			mat[target.Row][target.Column] = true
		}
	}
	return mat
}

type pawnRule struct{}

func (pawnRule) PossibleMoves(b *Board, p *Piece) MoveMatrix {
	mat := newMoveMatrix(b.Rows(), b.Columns())
	forward, startRow := -1, b.Rows()-2
	if p.Color == Black {
		forward, startRow = 1, 1
	}

	one := p.Position.offset(direction{forward, 0})
	if b.PositionExists(one) && b.at(one) == nil {
		mat[one.Row][one.Column] = true
		two := one.offset(direction{forward, 0})
		if p.MoveCount == 0 && p.Position.Row == startRow && b.PositionExists(two) && b.at(two) == nil {
			mat[two.Row][two.Column] = true
		}
	}
	for _, side := range []int{-1, 1} {
		target := p.Position.offset(direction{forward, side})
		if b.PositionExists(target) && p.isOpponent(b.at(target)) {
			mat[target.Row][target.Column] = true
		}
	}
	return mat
}
