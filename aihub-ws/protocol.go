package aihubws

import (
	"encoding/json"
	"fmt"
)

// Message types sent to ai-hub WebSocket clients.
const (
	MsgError  = "error"
	MsgText   = "message"
	MsgStream = "stream"
	MsgEnd    = "end"
)

// Actions a client can put in a message body. API Gateway routes on
// $request.body.action, so a recognized action selects a Lambda directly and
// anything else lands on $default.
const (
	ActionChat  = "chat"
	ActionClose = "close"
)

// Message is a message exchanged over the ai-hub WebSocket.
type Message struct {
	Action   string          `json:"action,omitempty"`
	Type     string          `json:"type,omitempty"`
	Message  string          `json:"message,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Feedback string          `json:"feedback,omitempty"`
}

// ParseMessage parses a client message from a JSON body.
func ParseMessage(body string) (*Message, error) {
	var msg Message
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return nil, fmt.Errorf("invalid websocket message: %w", err)
	}
	return &msg, nil
}

// StreamMessage returns a "stream" message carrying one response delta.
func StreamMessage(delta string) []byte {
	b, _ := json.Marshal(Message{Type: MsgStream, Message: delta})
	return b
}

// EndMessage returns an "end" message marking the end of a streamed response.
func EndMessage() []byte {
	b, _ := json.Marshal(Message{Type: MsgEnd})
	return b
}

// ErrorMessage returns an "error" message with the given description.
func ErrorMessage(errMsg string) []byte {
	b, _ := json.Marshal(Message{Type: MsgError, Message: errMsg})
	return b
}

// TextMessage returns a plain "message" message.
func TextMessage(text string) []byte {
	b, _ := json.Marshal(Message{Type: MsgText, Message: text})
	return b
}

// InfoMessage returns the payload posted back on the default route, echoing
// the caller's connection and request ids.
func InfoMessage(text, connectionID, requestID string) []byte {
	b, _ := json.Marshal(struct {
		Message      string `json:"message"`
		ConnectionID string `json:"connectionId"`
		RequestID    string `json:"requestId"`
	}{
		Message:      text,
		ConnectionID: connectionID,
		RequestID:    requestID,
	})
	return b
}
