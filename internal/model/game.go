package model

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benbeisheim/chessmatch-backend/internal/chess"
	"github.com/benbeisheim/chessmatch-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// Observer is the write side of a client connection. *websocket.Conn satisfies it.
type Observer interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Observer // playerID -> connection
	mu          sync.Mutex          // also serializes writes
}

// Game is one session: a match plus the players and observers around it.
// Every call into the match happens with mu held.
type Game struct {
	ID          string
	mu          sync.Mutex
	match       *chess.Match
	players     Players
	lastMove    *SimpleMove
	sound       string
	connections *GameConnections
}

func NewGame(id string) *Game {
	return NewGameFromMatch(id, chess.NewMatch())
}

// NewGameFromMatch wraps an existing match, e.g. one built from a custom setup.
func NewGameFromMatch(id string, match *chess.Match) *Game {
	return &Game{
		ID:          id,
		match:       match,
		connections: NewGameConnections(),
	}
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Observer),
	}
}

// AddPlayer seats playerID at the first free color. A player already seated
// gets their color back.
func (g *Game) AddPlayer(playerID string) (chess.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.players.seat(playerID); ok {
		return color, nil
	}
	if g.players.White.ID == "" {
		g.players.White = ClientPlayer{ID: playerID, Color: chess.White}
		log.Infof("game %s: %s joined as white", g.ID, playerID)
		return chess.White, nil
	}
	if g.players.Black.ID == "" {
		g.players.Black = ClientPlayer{ID: playerID, Color: chess.Black}
		log.Infof("game %s: %s joined as black", g.ID, playerID)
		return chess.Black, nil
	}
	return "", ErrGameFull
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.snapshotState()
}

func (g *Game) hasOpenSeat() bool {
	return g.players.White.ID == "" || g.players.Black.ID == ""
}

// PossibleMoves lists destinations for the piece on square. With legal set the
// list excludes moves that would leave the mover in check.
func (g *Game) PossibleMoves(square string, legal bool) (PossibleMoves, error) {
	source, err := chess.ParseChessPosition(square)
	if err != nil {
		return PossibleMoves{}, err
	}

	g.mu.Lock()
	var mat chess.MoveMatrix
	if legal {
		mat, err = g.match.LegalMoves(source)
	} else {
		mat, err = g.match.PossibleMoves(source)
	}
	g.mu.Unlock()
	if err != nil {
		return PossibleMoves{}, err
	}

	res := PossibleMoves{Square: source.String(), Legal: legal, Moves: make([]string, 0)}
	for _, p := range mat.Positions() {
		target, err := chess.FromPosition(p)
		if err != nil {
			return PossibleMoves{}, err
		}
		res.Moves = append(res.Moves, target.String())
	}
	return res, nil
}

// MakeMove plays move for playerID and broadcasts the new state to observers.
func (g *Game) MakeMove(playerID string, move WSMove) (MoveResult, error) {
	source, err := chess.ParseChessPosition(move.From)
	if err != nil {
		return MoveResult{}, err
	}
	target, err := chess.ParseChessPosition(move.To)
	if err != nil {
		return MoveResult{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.players.seat(playerID)
	if !ok {
		return MoveResult{}, ErrNotAPlayer
	}
	if color != g.match.CurrentPlayer() && !g.match.Over() {
		return MoveResult{}, ErrNotYourTurn
	}

	captured, err := g.match.PerformChessMove(source, target)
	if err != nil {
		return MoveResult{}, err
	}
	g.lastMove = &SimpleMove{From: source.String(), To: target.String()}
	switch {
	case g.match.Check():
		g.sound = "check"
	case captured != nil:
		g.sound = "capture"
	default:
		g.sound = "move"
	}
	state := g.snapshotState()

	log.Debugf("game %s: %s played %s-%s", g.ID, color, source, target)
	switch {
	case state.IsCheckmate:
		log.Infof("game %s: checkmate, %s wins", g.ID, color)
	case state.IsStalemate:
		log.Infof("game %s: stalemate", g.ID)
	}
	// Broadcast before releasing mu so observers see states in commit order.
	g.broadcast(state)
	return MoveResult{Captured: captured, State: state}, nil
}

// RegisterConnection adds conn as playerID's observer and sends it the current
// state. Holding mu throughout keeps that first state ahead of any later move.
func (g *Game) RegisterConnection(playerID string, conn Observer) error {
	connID := fmt.Sprintf("%p", conn)

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, seated := g.players.seat(playerID); !seated && !g.hasOpenSeat() {
		return ErrNotAPlayer
	}

	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	if _, exists := g.connections.connections[playerID]; exists {
		// Keep the existing connection and reject the new one.
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"))
		conn.Close()
		return nil
	}

	msg, err := stateMessage(g.snapshotState())
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send initial state: %w", err)
	}
	g.connections.connections[playerID] = conn
	log.Infof("game %s: registered connection %s for player %s", g.ID, connID, playerID)
	return nil
}

// UnregisterConnection drops conn if it is still the one registered for playerID.
func (g *Game) UnregisterConnection(playerID string, conn Observer) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		log.Infof("game %s: unregistering connection for player %s", g.ID, playerID)
		delete(g.connections.connections, playerID)
	}
}

// Send writes one message to conn, serialized with broadcasts.
func (g *Game) Send(conn Observer, msg ws.Message) error {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	return conn.WriteJSON(msg)
}

func stateMessage(state GameState) (ws.Message, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return ws.Message{}, fmt.Errorf("marshal state: %w", err)
	}
	return ws.Message{Type: ws.MessageTypeGameState, Payload: payload}, nil
}

func (g *Game) broadcast(state GameState) {
	msg, err := stateMessage(state)
	if err != nil {
		log.Errorf("game %s: %v", g.ID, err)
		return
	}

	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	for playerID, conn := range g.connections.connections {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("game %s: failed to send state to player %s: %v", g.ID, playerID, err)
			delete(g.connections.connections, playerID)
		}
	}
}
