package model

import "github.com/benbeisheim/chessmatch-backend/internal/chess"

// WSMove is a move request with algebraic squares, e.g. {"from":"e2","to":"e4"}.
type WSMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type SimpleMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// MoveResult is what a committed move reports back to the mover.
type MoveResult struct {
	Captured *chess.Piece `json:"captured"`
	State    GameState    `json:"state"`
}

// PossibleMoves lists the destinations of the piece on Square.
type PossibleMoves struct {
	Square string   `json:"square"`
	Legal  bool     `json:"legal"`
	Moves  []string `json:"moves"`
}

type MatchFoundEvent struct {
	GameID string      `json:"gameId"`
	Color  chess.Color `json:"color"`
}

const (
	MatchmakingQueued  = "queued"
	MatchmakingMatched = "matched"
)

// MatchmakingStatus answers a poll of the matchmaking queue.
type MatchmakingStatus struct {
	Status string           `json:"status"`
	Match  *MatchFoundEvent `json:"match,omitempty"`
}
