package keys

import "strings"

// Pair holds the two user-supplied credentials. The JSON layout matches the
// record the web client has always written to local storage.
type Pair struct {
	ChatKey  string `json:"openai"`
	VoiceKey string `json:"elevenlabs"`
}

// HasChat reports whether a chat-completion key is present.
func (p Pair) HasChat() bool {
	return strings.TrimSpace(p.ChatKey) != ""
}

// HasVoice reports whether a voice-conversation key is present.
func (p Pair) HasVoice() bool {
	return strings.TrimSpace(p.VoiceKey) != ""
}

// Complete 两个密钥都已配置时返回 true，客户端据此决定是否弹出设置对话框。
func (p Pair) Complete() bool {
	return p.HasChat() && p.HasVoice()
}

// Masked returns a copy safe for logs: everything but the last four characters is hidden.
func (p Pair) Masked() Pair {
	return Pair{ChatKey: mask(p.ChatKey), VoiceKey: mask(p.VoiceKey)}
}

func mask(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
