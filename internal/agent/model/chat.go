package model

// Role attributes a chat turn to the human caller or the assistant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message in a conversation. Immutable once created.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound envelope: the newest message plus the caller-held
// conversation history. History is supplied on every request; the orchestrator
// keeps no state between calls.
type ChatRequest struct {
	Message     string     `json:"message"`
	ChatHistory []ChatTurn `json:"chat_history,omitempty"`
}

// ChatResponse is the stable outbound envelope. Exactly one of Response or
// Error carries the payload; both fields are always serialized (possibly null)
// so the shape never changes between success and failure.
type ChatResponse struct {
	Response  *string `json:"response"`
	Timestamp string  `json:"timestamp"`
	Success   bool    `json:"success"`
	Error     *string `json:"error"`
}
