package protocol

import "encoding/json"

// MaxPayloadBytes is the transport-level frame size ceiling, enforced before parsing.
const MaxPayloadBytes = 8 * 1024

// Inbound frame types.
const (
	TypePing    = "PING"
	TypeHello   = "HELLO"
	TypeMessage = "MESSAGE"
)

// Outbound frame types.
const (
	TypePong    = "PONG"
	TypeWelcome = "WELCOME"
	TypeError   = "ERROR"
)

// ErrorCode identifies a structured protocol failure.
type ErrorCode string

const (
	CodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	CodeInvalidJSON     ErrorCode = "INVALID_JSON"
	CodeAuthFailed      ErrorCode = "AUTH_FAILED"
	CodeAuthRequired    ErrorCode = "AUTH_REQUIRED"
	CodeRateLimit       ErrorCode = "RATE_LIMIT"
	CodeGenericError    ErrorCode = "GENERIC_ERROR"
)

// WireError is a recoverable protocol-level failure. The connection stays
// open; the client receives an ERROR envelope and may retry.
type WireError struct {
	Code    ErrorCode
	Message string
}

func (e *WireError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Frame is one inbound protocol message. All client message kinds decode
// into this single tagged struct; dispatch happens on Type.
type Frame struct {
	Type      string `json:"type"`
	Nickname  string `json:"nickname,omitempty"`
	Text      string `json:"text,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// ParseFrame validates the raw payload and decodes it into a Frame.
// The size guard runs before any parsing so oversized payloads are never
// fed to the JSON decoder.
func ParseFrame(data []byte) (Frame, *WireError) {
	if len(data) > MaxPayloadBytes {
		return Frame{}, &WireError{
			Code:    CodePayloadTooLarge,
			Message: "payload exceeds 8KB limit",
		}
	}

	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Frame{}, &WireError{
			Code:    CodeInvalidJSON,
			Message: "invalid message format (JSON required)",
		}
	}

	return frame, nil
}
