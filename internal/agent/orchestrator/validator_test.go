package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	errx "github.com/iot-fleet-chat/server/internal/core/error"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     model.ChatRequest
		wantErr error
	}{
		{
			name: "valid without history",
			req:  model.ChatRequest{Message: "What IoT devices do I have?"},
		},
		{
			name: "valid with alternating history",
			req: model.ChatRequest{
				Message: "And which of them are connected?",
				ChatHistory: []model.ChatTurn{
					{Role: model.RoleUser, Content: "What IoT devices do I have?"},
					{Role: model.RoleAssistant, Content: "You have three devices."},
					{Role: model.RoleUser, Content: "What types are they?"},
					{Role: model.RoleAssistant, Content: "Vehicle, suit and house devices."},
				},
			},
		},
		{
			name:    "empty message",
			req:     model.ChatRequest{Message: ""},
			wantErr: errx.ErrEmptyMessage,
		},
		{
			name:    "whitespace only message",
			req:     model.ChatRequest{Message: "   \t\n "},
			wantErr: errx.ErrEmptyMessage,
		},
		{
			name: "empty message wins over malformed history",
			req: model.ChatRequest{
				Message:     " ",
				ChatHistory: []model.ChatTurn{{Role: "system", Content: "x"}},
			},
			wantErr: errx.ErrEmptyMessage,
		},
		{
			name: "unknown role",
			req: model.ChatRequest{
				Message:     "hello",
				ChatHistory: []model.ChatTurn{{Role: "system", Content: "be nice"}},
			},
			wantErr: errx.ErrMalformedHistory,
		},
		{
			name: "empty turn content",
			req: model.ChatRequest{
				Message: "hello",
				ChatHistory: []model.ChatTurn{
					{Role: model.RoleUser, Content: "hi"},
					{Role: model.RoleAssistant, Content: ""},
				},
			},
			wantErr: errx.ErrMalformedHistory,
		},
		{
			name: "history starting with assistant",
			req: model.ChatRequest{
				Message:     "hello",
				ChatHistory: []model.ChatTurn{{Role: model.RoleAssistant, Content: "hi"}},
			},
			wantErr: errx.ErrHistoryOrder,
		},
		{
			name: "consecutive user turns",
			req: model.ChatRequest{
				Message: "hello",
				ChatHistory: []model.ChatTurn{
					{Role: model.RoleUser, Content: "hi"},
					{Role: model.RoleUser, Content: "are you there?"},
				},
			},
			wantErr: errx.ErrHistoryOrder,
		},
		{
			name: "consecutive assistant turns",
			req: model.ChatRequest{
				Message: "hello",
				ChatHistory: []model.ChatTurn{
					{Role: model.RoleUser, Content: "hi"},
					{Role: model.RoleAssistant, Content: "hello"},
					{Role: model.RoleAssistant, Content: "anything else?"},
				},
			},
			wantErr: errx.ErrHistoryOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateRequestChecksRolesBeforeOrder(t *testing.T) {
	// A malformed role in a later turn must report MalformedHistory even when
	// an ordering violation appears earlier in the sequence.
	err := ValidateRequest(model.ChatRequest{
		Message: "hello",
		ChatHistory: []model.ChatTurn{
			{Role: model.RoleAssistant, Content: "hi"},
			{Role: "robot", Content: "beep"},
		},
	})
	assert.ErrorIs(t, err, errx.ErrMalformedHistory)
}
