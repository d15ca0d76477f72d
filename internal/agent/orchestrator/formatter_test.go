package orchestrator

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	errx "github.com/iot-fleet-chat/server/internal/core/error"
)

func TestSuccessResponse(t *testing.T) {
	resp := SuccessResponse("You have three devices.")

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Response)
	assert.Equal(t, "You have three devices.", *resp.Response)
	assert.Nil(t, resp.Error)

	ts, err := time.Parse(time.RFC3339Nano, resp.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ts.Location())
}

func TestFailureResponseUsesTaxonomyMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"empty message", errx.EmptyMessage(), errx.EmptyMessageMessage},
		{"history order", errx.HistoryOrder("assistant first"), errx.HistoryOrderMessage},
		{"backend timeout", errx.Timeout("analytics query", errors.New("deadline")), errx.BackendTimeoutMessage},
		{"budget", errx.BudgetExceeded(8), errx.BudgetExceededMessage},
		{"unclassified error stays generic", errors.New("redis is on fire"), errx.SystemErrorMessage},
		{"wrapped app error", errors.Join(errors.New("outer"), errx.BudgetExceeded(8)), errx.BudgetExceededMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := FailureResponse(tt.err)
			assert.False(t, resp.Success)
			assert.Nil(t, resp.Response)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.want, *resp.Error)
		})
	}
}

// The envelope shape is stable: both payload fields are always serialized,
// null when absent, and a round trip loses nothing.
func TestEnvelopeRoundTrip(t *testing.T) {
	t.Run("success keeps error null", func(t *testing.T) {
		resp := SuccessResponse("all good")

		b, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"error":null`)
		assert.Contains(t, string(b), `"success":true`)

		var decoded model.ChatResponse
		require.NoError(t, json.Unmarshal(b, &decoded))
		assert.Equal(t, resp, decoded)
	})

	t.Run("failure keeps response null", func(t *testing.T) {
		resp := FailureResponse(errx.EmptyMessage())

		b, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"response":null`)
		assert.Contains(t, string(b), `"success":false`)

		var decoded model.ChatResponse
		require.NoError(t, json.Unmarshal(b, &decoded))
		assert.Equal(t, resp, decoded)
	})
}
