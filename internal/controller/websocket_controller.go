package controller

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/chessmatch-backend/internal/middleware"
	"github.com/benbeisheim/chessmatch-backend/internal/model"
	"github.com/benbeisheim/chessmatch-backend/internal/service"
	"github.com/benbeisheim/chessmatch-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := middleware.ConnPlayerID(c)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warnf("game %s: failed to register connection for %s: %v", gameID, playerID, err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("game %s: read error from %s: %v", gameID, playerID, err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(gameID, c, fmt.Errorf("parse error: %w", err))
			continue
		}
		reply, err := wsc.handleMessage(gameID, playerID, msg)
		if err != nil {
			wsc.sendError(gameID, c, err)
			continue
		}
		if reply != nil {
			if err := wsc.gameService.Send(gameID, c, *reply); err != nil {
				log.Debugf("game %s: write error to %s: %v", gameID, playerID, err)
				return
			}
		}
	}
}

// handleMessage dispatches one inbound message. Moves reply through the game
// broadcast; queries return a direct reply.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) (*ws.Message, error) {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return nil, err
		}
		_, err := wsc.gameService.HandleMove(gameID, playerID, move)
		return nil, err

	case ws.MessageTypePossibleMoves:
		var req ws.PossibleMovesRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return nil, err
		}
		moves, err := wsc.gameService.PossibleMoves(gameID, req.Square, req.Legal)
		if err != nil {
			return nil, err
		}
		reply, err := ws.NewMessage(ws.MessageTypePossibleMoves, moves)
		if err != nil {
			return nil, err
		}
		return &reply, nil

	default:
		return nil, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendError(gameID string, c *websocket.Conn, err error) {
	msg, merr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
	if merr != nil {
		log.Errorf("marshal error payload: %v", merr)
		return
	}
	if werr := wsc.gameService.Send(gameID, c, msg); werr != nil {
		log.Debugf("game %s: failed to send error: %v", gameID, werr)
	}
}

// HandleMatchmaking streams the match-found event to a queued player.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID := middleware.ConnPlayerID(c)
	ch := make(chan string, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)

	// Reader goroutine notices the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if !ok {
			// Replaced by a newer matchmaking connection.
			c.Close()
			return
		}
		if err := c.WriteMessage(websocket.TextMessage, []byte(event)); err != nil {
			log.Warnf("matchmaking: failed to notify %s: %v", playerID, err)
		}
		c.Close()
	case <-gone:
		wsc.gameService.LeaveMatchmaking(playerID)
	}
}
