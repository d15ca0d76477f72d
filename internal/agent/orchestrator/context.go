package orchestrator

import (
	"github.com/cloudwego/eino/schema"

	"github.com/iot-fleet-chat/server/internal/agent/model"
)

// BuildConversation turns a validated request into the dialogue the reasoning
// loop consumes: system prompt, the caller-supplied history in order, then the
// new message as the newest user turn. The returned slice is fresh; the
// caller's request is never mutated.
func BuildConversation(systemPrompt string, req model.ChatRequest) []*schema.Message {
	messages := make([]*schema.Message, 0, len(req.ChatHistory)+2)
	messages = append(messages, schema.SystemMessage(systemPrompt))

	for _, turn := range req.ChatHistory {
		switch turn.Role {
		case model.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(turn.Content))
		}
	}

	return append(messages, schema.UserMessage(req.Message))
}
