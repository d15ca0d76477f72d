package orchestrator

import (
	"fmt"
	"strings"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	errx "github.com/iot-fleet-chat/server/internal/core/error"
)

// ValidateRequest checks a raw chat request before any backend work. Rules are
// applied in order, first failure wins; no side effects.
func ValidateRequest(req model.ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return errx.EmptyMessage()
	}

	for i, turn := range req.ChatHistory {
		if turn.Role != model.RoleUser && turn.Role != model.RoleAssistant {
			return errx.MalformedHistory(fmt.Sprintf("turn %d has unknown role %q", i, turn.Role))
		}
		if turn.Content == "" {
			return errx.MalformedHistory(fmt.Sprintf("turn %d has empty content", i))
		}
	}

	if len(req.ChatHistory) > 0 && req.ChatHistory[0].Role != model.RoleUser {
		return errx.HistoryOrder("turn 0 is not a user turn")
	}
	for i := 1; i < len(req.ChatHistory); i++ {
		if req.ChatHistory[i].Role == req.ChatHistory[i-1].Role {
			return errx.HistoryOrder(fmt.Sprintf("turns %d and %d share role %q", i-1, i, req.ChatHistory[i].Role))
		}
	}
	return nil
}
