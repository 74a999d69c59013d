// service/game_manager.go
package service

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/chessmatch-backend/internal/model"
	"github.com/benbeisheim/chessmatch-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrNotQueued    = errors.New("player is not in matchmaking")
	ErrMatchPending = errors.New("a match is waiting to be claimed")
)

// GameManager owns every live game and the matchmaking queue.
type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	pendingMatches   map[string]model.MatchFoundEvent // paired but not yet notified
	mu               sync.RWMutex
	done             chan struct{}
	closeOnce        sync.Once
}

// NewGameManager starts a matchmaking pass every interval until Close.
func NewGameManager(interval time.Duration) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		pendingMatches:   make(map[string]model.MatchFoundEvent),
		done:             make(chan struct{}),
	}

	go gm.processMatchmaking(interval)

	return gm
}

func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() { close(gm.done) })
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
			gm.matchPlayers()
		}
	}
}

// matchPlayers pairs queued players into new games until fewer than two remain.
func (gm *GameManager) matchPlayers() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for {
		player1, player2, wait, ok := gm.queue.GetNextPair()
		if !ok {
			return
		}

		gameID := uuid.New().String()
		game := model.NewGame(gameID)
		p1Color, err := game.AddPlayer(player1.ID)
		if err != nil {
			log.Errorf("matchmaking: adding %s to game %s: %v", player1.ID, gameID, err)
			continue
		}
		p2Color, err := game.AddPlayer(player2.ID)
		if err != nil {
			log.Errorf("matchmaking: adding %s to game %s: %v", player2.ID, gameID, err)
			continue
		}
		gm.games[gameID] = game
		log.Infof("matchmaking: paired %s and %s in game %s after %s", player1.ID, player2.ID, gameID, wait.Round(time.Millisecond))

		gm.notifyMatchFound(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
		gm.notifyMatchFound(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
	}
}

// notifyMatchFound must be called with gm.mu held. Events that cannot be
// delivered now are kept until the player polls or opens a matchmaking socket.
func (gm *GameManager) notifyMatchFound(playerID string, event model.MatchFoundEvent) {
	if gm.sendMatchFound(playerID, event) {
		return
	}
	log.Debugf("matchmaking: holding game %s for %s", event.GameID, playerID)
	gm.pendingMatches[playerID] = event
}

func matchFoundMessage(event model.MatchFoundEvent) (string, error) {
	msg, err := ws.NewMessage(ws.MessageTypeMatchFound, event)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// sendMatchFound must be called with gm.mu held. The channel is closed after
// the event is delivered.
func (gm *GameManager) sendMatchFound(playerID string, event model.MatchFoundEvent) bool {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return false
	}
	payload, err := matchFoundMessage(event)
	if err != nil {
		log.Errorf("matchmaking: marshal event: %v", err)
		return false
	}

	select {
	case ch <- payload:
		delete(gm.matchingChannels, playerID)
		close(ch)
		return true
	default:
		return false
	}
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch

	if event, ok := gm.pendingMatches[playerID]; ok && gm.sendMatchFound(playerID, event) {
		delete(gm.pendingMatches, playerID)
	}
}

// UnregisterMatchmakingChannel forgets ch if it is still playerID's current
// channel. Channels are only closed by the manager, after delivery or when a
// newer connection replaces them.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}

	gm.games[gameID] = model.NewGame(gameID)
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}

	return game, nil
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if _, pending := gm.pendingMatches[playerID]; pending {
		return ErrMatchPending
	}
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

// MatchmakingStatus reports whether playerID is still waiting or has been
// paired. A match is handed out once; later calls return ErrNotQueued.
func (gm *GameManager) MatchmakingStatus(playerID string) (model.MatchmakingStatus, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if event, ok := gm.pendingMatches[playerID]; ok {
		delete(gm.pendingMatches, playerID)
		return model.MatchmakingStatus{Status: model.MatchmakingMatched, Match: &event}, nil
	}
	if gm.queue.Contains(playerID) {
		return model.MatchmakingStatus{Status: model.MatchmakingQueued}, nil
	}
	return model.MatchmakingStatus{}, ErrNotQueued
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.RemovePlayer(playerID)
}
