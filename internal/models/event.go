package models

import "time"

type EventType string

const (
	EventTurnAppended      EventType = "turn_appended"
	EventTurnRolledBack    EventType = "turn_rolled_back"
	EventConversationReset EventType = "conversation_reset"
)

// ConversationEvent is published after every change to the conversation and
// relayed to websocket clients.
type ConversationEvent struct {
	Type      EventType `json:"type"`
	Turn      *Turn     `json:"turn,omitempty"`
	Length    int       `json:"length"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

// ConversationUpdatesChannel is the Redis pub/sub channel carrying
// ConversationEvent JSON.
const ConversationUpdatesChannel = "conversation_updates"
