package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeMove          MessageType = "move"
	MessageTypePossibleMoves MessageType = "possibleMoves"
	MessageTypeGameState     MessageType = "gameState"
	MessageTypeMatchFound    MessageType = "matchFound"
	MessageTypeError         MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PossibleMovesRequest asks for the destinations of the piece on Square.
type PossibleMovesRequest struct {
	Square string `json:"square"`
	Legal  bool   `json:"legal"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage marshals payload into a message of type t.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}
