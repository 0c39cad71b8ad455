// Package events defines the WebSocket message contract.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeConnection is sent once to every client on connect.
	MessageTypeConnection MessageType = "connection"

	// MessageTypeAnalysisComplete announces a published pass. Partial
	// results are never broadcast.
	MessageTypeAnalysisComplete MessageType = "analysis:complete"
)

// Message is one frame pushed to WebSocket clients.
type Message struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// NewMessage stamps a message with the current UTC time.
func NewMessage(t MessageType, data interface{}, traceID string) Message {
	return Message{
		Type:      t,
		Data:      data,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
	}
}
