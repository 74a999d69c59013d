package model

import "github.com/benbeisheim/chessmatch-backend/internal/chess"

type Player struct {
	ID    string
	Color chess.Color
}

type ClientPlayer struct {
	ID    string      `json:"name"`
	Color chess.Color `json:"color"`
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// seat returns the color playerID sits at, if any.
func (p Players) seat(playerID string) (chess.Color, bool) {
	switch {
	case playerID == "":
		return "", false
	case p.White.ID == playerID:
		return chess.White, true
	case p.Black.ID == playerID:
		return chess.Black, true
	}
	return "", false
}
