package tools

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/iot-fleet-chat/server/internal/core/error"
)

func echoBinding(name string, params map[string]*schema.ParameterInfo, captured *map[string]any) *Binding {
	return newBinding(name, "echo", params, func(_ context.Context, args map[string]any) (string, error) {
		*captured = args
		return "ok", nil
	})
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	var sink map[string]any
	_, err := NewRegistry(
		echoBinding("list_devices", nil, &sink),
		echoBinding("list_devices", nil, &sink),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewRegistryRejectsUnnamedBinding(t *testing.T) {
	_, err := NewRegistry(&Binding{Info: &schema.ToolInfo{}})
	require.Error(t, err)
}

func TestToolInfosPreservesRegistrationOrder(t *testing.T) {
	var sink map[string]any
	reg, err := NewRegistry(
		echoBinding("b_tool", nil, &sink),
		echoBinding("a_tool", nil, &sink),
	)
	require.NoError(t, err)

	infos := reg.ToolInfos()
	require.Len(t, infos, 2)
	assert.Equal(t, "b_tool", infos[0].Name)
	assert.Equal(t, "a_tool", infos[1].Name)
}

func TestResolveUnknownTool(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	_, err = reg.Resolve("reboot_fleet")
	assert.ErrorIs(t, err, errx.ErrToolNotFound)
}

func TestExecuteValidatesArguments(t *testing.T) {
	params := map[string]*schema.ParameterInfo{
		"device_id": {Type: "string", Required: true},
		"limit":     {Type: "integer"},
	}

	tests := []struct {
		name    string
		args    string
		wantErr error
	}{
		{name: "valid", args: `{"device_id":"vehicle-001","limit":5}`},
		{name: "optional omitted", args: `{"device_id":"vehicle-001"}`},
		{name: "empty arguments string", args: "", wantErr: errx.ErrInvalidArguments},
		{name: "not a JSON object", args: `["vehicle-001"]`, wantErr: errx.ErrInvalidArguments},
		{name: "missing required", args: `{"limit":5}`, wantErr: errx.ErrInvalidArguments},
		{name: "wrong type", args: `{"device_id":42}`, wantErr: errx.ErrInvalidArguments},
		{name: "fractional integer", args: `{"device_id":"x","limit":1.5}`, wantErr: errx.ErrInvalidArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			reg, err := NewRegistry(echoBinding("get_device_status", params, &got))
			require.NoError(t, err)

			result, err := reg.Execute(context.Background(), "get_device_status", tt.args)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got, "binding must not run on invalid arguments")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", result)
			assert.NotNil(t, got)
		})
	}
}

func TestExecuteDropsUnknownArguments(t *testing.T) {
	params := map[string]*schema.ParameterInfo{
		"device_id": {Type: "string", Required: true},
	}
	var got map[string]any
	reg, err := NewRegistry(echoBinding("get_device_status", params, &got))
	require.NoError(t, err)

	_, err = reg.Execute(context.Background(), "get_device_status", `{"device_id":"x","verbose":true}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"device_id": "x"}, got)
}

func TestExecuteUnknownToolFailsBeforeParsing(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	_, err = reg.Execute(context.Background(), "reboot_fleet", "not even json")
	assert.ErrorIs(t, err, errx.ErrToolNotFound)
}
