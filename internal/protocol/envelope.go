package protocol

import (
	"encoding/json"
	"time"
)

// SystemSender is the sender name on join/leave notices.
const SystemSender = "SYSTEM"

// Envelope is the canonical broadcastable unit. Constructed fresh per event,
// never mutated afterwards, and serialized once per broadcast so every
// recipient receives identical bytes.
type Envelope struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	Sender   string    `json:"sender,omitempty"`
	Nickname string    `json:"nickname,omitempty"`
	ID       string    `json:"id,omitempty"`
	Code     ErrorCode `json:"code,omitempty"`
	Message  string    `json:"message,omitempty"`
	Time     string    `json:"time,omitempty"`
	IsSystem bool      `json:"isSystem,omitempty"`
}

// Encode serializes the envelope. Envelope contains no unmarshalable
// fields, so encoding cannot fail in practice.
func (e Envelope) Encode() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return []byte(`{"type":"ERROR","code":"GENERIC_ERROR","message":"encoding failure"}`)
	}
	return data
}

// Pong answers an application-level PING.
func Pong() Envelope {
	return Envelope{Type: TypePong}
}

// Welcome confirms a successful HELLO handshake to the authenticating
// connection only.
func Welcome(nickname, id string, now time.Time) Envelope {
	return Envelope{
		Type:     TypeWelcome,
		Nickname: nickname,
		ID:       id,
		Time:     now.Format(time.TimeOnly),
	}
}

// ErrorEnvelope reports a structured recoverable failure.
func ErrorEnvelope(code ErrorCode, message string, now time.Time) Envelope {
	return Envelope{
		Type:    TypeError,
		Code:    code,
		Message: message,
		Time:    now.Format(time.TimeOnly),
	}
}

// ChatMessage is a user chat message fanned out to every other connection.
// Chat timestamps carry minute granularity, matching what clients render.
func ChatMessage(text, sender string, now time.Time) Envelope {
	return Envelope{
		Type:   TypeMessage,
		Text:   text,
		Sender: sender,
		Time:   now.Format("15:04"),
	}
}

// SystemNotice is a join/leave announcement broadcast on behalf of the server.
func SystemNotice(text string, now time.Time) Envelope {
	return Envelope{
		Type:     TypeMessage,
		Text:     text,
		Sender:   SystemSender,
		IsSystem: true,
		Time:     now.Format(time.TimeOnly),
	}
}
