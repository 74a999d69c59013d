package model

import "github.com/benbeisheim/chessmatch-backend/internal/chess"

// GameState is the render snapshot sent to clients.
type GameState struct {
	Sound          string           `json:"sound"`
	Board          [][]*chess.Piece `json:"board"`
	Turn           int              `json:"turn"`
	ToMove         chess.Color      `json:"toMove"`
	CapturedPieces CapturedPieces   `json:"capturedPieces"`
	IsCheck        bool             `json:"isCheck"`
	IsCheckmate    bool             `json:"isCheckmate"`
	IsStalemate    bool             `json:"isStalemate"`
	Resolve        *string          `json:"resolve"` // "checkmate" or "stalemate" once decided
	Winner         *chess.Color     `json:"winner"`
	Players        Players          `json:"players"`
	LastMove       *SimpleMove      `json:"lastMove"`
}

// CapturedPieces groups the pieces each side has lost.
type CapturedPieces struct {
	White []chess.Piece `json:"white"`
	Black []chess.Piece `json:"black"`
}

func newCapturedPieces(captured []chess.Piece) CapturedPieces {
	cp := CapturedPieces{
		White: make([]chess.Piece, 0),
		Black: make([]chess.Piece, 0),
	}
	for _, p := range captured {
		switch p.Color {
		case chess.White:
			cp.White = append(cp.White, p)
		case chess.Black:
			cp.Black = append(cp.Black, p)
		}
	}
	return cp
}

// snapshotState must be called with g.mu held.
func (g *Game) snapshotState() GameState {
	state := GameState{
		Sound:          g.sound,
		Board:          g.match.Pieces(),
		Turn:           g.match.Turn(),
		ToMove:         g.match.CurrentPlayer(),
		CapturedPieces: newCapturedPieces(g.match.CapturedPieces()),
		IsCheck:        g.match.Check(),
		IsCheckmate:    g.match.Checkmate(),
		IsStalemate:    g.match.Stalemate(),
		Players:        g.players,
	}
	switch winner, ok := g.match.Winner(); {
	case ok:
		result := "checkmate"
		state.Resolve = &result
		state.Winner = &winner
	case g.match.Stalemate():
		result := "stalemate"
		state.Resolve = &result
	}
	if g.lastMove != nil {
		lm := *g.lastMove
		state.LastMove = &lm
	}
	return state
}
