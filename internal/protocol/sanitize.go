package protocol

import "strings"

const (
	// MaxMessageRunes bounds chat message text after sanitization.
	MaxMessageRunes = 2000
	// MaxNicknameRunes bounds nicknames after sanitization.
	MaxNicknameRunes = 15
	// MinNicknameRunes is the shortest acceptable nickname.
	MinNicknameRunes = 2
)

// htmlEscaper substitutes the five HTML-significant characters. This is
// best-effort escaping, not a full HTML sanitizer; clients must still
// render messages as text.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Sanitize escapes HTML-significant characters, trims surrounding
// whitespace, and truncates to MaxMessageRunes. It is not idempotent:
// re-sanitizing double-escapes the ampersands introduced by the first
// pass, so callers apply it exactly once per raw input.
func Sanitize(text string) string {
	return truncate(strings.TrimSpace(htmlEscaper.Replace(text)), MaxMessageRunes)
}

// SanitizeNickname applies Sanitize and the tighter nickname bound.
func SanitizeNickname(nickname string) string {
	return truncate(Sanitize(nickname), MaxNicknameRunes)
}

// ValidNickname reports whether a sanitized nickname is long enough.
func ValidNickname(nickname string) bool {
	return len([]rune(nickname)) >= MinNicknameRunes
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
