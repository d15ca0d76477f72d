package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	"github.com/iot-fleet-chat/server/internal/agent/tools"
)

//go:embed template/system_prompt.txt
var systemPromptTemplate string

// RenderSystem renders the assistant system prompt with the configured fleet
// name and the catalog's tool names baked in.
func RenderSystem(ctx context.Context, cfg model.PromptConfig) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPromptTemplate),
	)
	vars := map[string]any{
		"FleetName":            cfg.FleetName,
		"ListDevicesTool":      tools.ToolListDevices,
		"ListDeviceTypesTool":  tools.ToolListDeviceTypes,
		"ConnectedDevicesTool": tools.ToolConnectedDevices,
		"DeviceStatusTool":     tools.ToolDeviceStatus,
		"DeviceGPSTool":        tools.ToolDeviceGPS,
		"LocationHistoryTool":  tools.ToolLocationHistory,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}
