package orchestrator

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iot-fleet-chat/server/internal/agent/model"
)

func TestBuildConversation(t *testing.T) {
	req := model.ChatRequest{
		Message: "Which of them are connected?",
		ChatHistory: []model.ChatTurn{
			{Role: model.RoleUser, Content: "What devices do I have?"},
			{Role: model.RoleAssistant, Content: "You have three devices."},
		},
	}

	msgs := BuildConversation("You are a fleet assistant.", req)
	require.Len(t, msgs, 4)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "You are a fleet assistant.", msgs[0].Content)

	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, "What devices do I have?", msgs[1].Content)

	assert.Equal(t, schema.Assistant, msgs[2].Role)
	assert.Equal(t, "You have three devices.", msgs[2].Content)

	assert.Equal(t, schema.User, msgs[3].Role)
	assert.Equal(t, "Which of them are connected?", msgs[3].Content)
}

func TestBuildConversationWithoutHistory(t *testing.T) {
	msgs := BuildConversation("prompt", model.ChatRequest{Message: "hello"})
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, "hello", msgs[1].Content)
}

func TestBuildConversationDoesNotMutateRequest(t *testing.T) {
	history := []model.ChatTurn{{Role: model.RoleUser, Content: "hi"}}
	req := model.ChatRequest{Message: "again", ChatHistory: history}

	_ = BuildConversation("prompt", req)

	assert.Equal(t, []model.ChatTurn{{Role: model.RoleUser, Content: "hi"}}, req.ChatHistory)
}
