package domain

import "time"

// ChatStatus enumerates lifecycle states for support chats.
type ChatStatus string

const (
	ChatStatusOpen   ChatStatus = "open"
	ChatStatusClosed ChatStatus = "closed"
)

// ValidChatStatus reports whether the status is a known value.
func ValidChatStatus(s ChatStatus) bool {
	return s == ChatStatusOpen || s == ChatStatusClosed
}

// ChatUrgency enumerates how pressing the reported issue is.
type ChatUrgency string

const (
	ChatUrgencyLow    ChatUrgency = "low"
	ChatUrgencyMedium ChatUrgency = "medium"
	ChatUrgencyHigh   ChatUrgency = "high"
)

// ValidChatUrgency reports whether the urgency is a known value.
func ValidChatUrgency(u ChatUrgency) bool {
	return u == ChatUrgencyLow || u == ChatUrgencyMedium || u == ChatUrgencyHigh
}

// Chat is the aggregate for a support conversation. Chats are never deleted,
// only closed, and their message log is append-only.
type Chat struct {
	ID            string
	OwnerUsername string
	Discord       string
	Issue         string
	Urgency       ChatUrgency
	Status        ChatStatus
	MessageSeq    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Messages      []ChatMessage
}

// ChatRules is the community-rules text seeded as the first system message of
// every new chat.
const ChatRules = `CHAT RULES

WARNING! Breaking the rules will get your account blocked!

- Be polite and respectful
- No profanity
- Do not spam messages
- Do not insult other members
- Stay on the topic of your request
- Wait for a moderator response (usually within 24 hours)

Rule violations may lead to your account being blocked without warning!`
