package model

import "errors"

var (
	ErrGameFull    = errors.New("game is full")
	ErrNotAPlayer  = errors.New("player not in game")
	ErrNotYourTurn = errors.New("not your turn")
	ErrInQueue     = errors.New("player already in queue")
)
