package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	"github.com/iot-fleet-chat/server/internal/agent/tools"
)

func TestRenderSystem(t *testing.T) {
	rendered, err := RenderSystem(context.Background(), model.PromptConfig{FleetName: "Stark Industries"})
	require.NoError(t, err)

	assert.Contains(t, rendered, "Stark Industries")
	assert.NotContains(t, rendered, "{{", "all template variables must be substituted")

	for _, tool := range []string{
		tools.ToolListDevices,
		tools.ToolListDeviceTypes,
		tools.ToolConnectedDevices,
		tools.ToolDeviceStatus,
		tools.ToolDeviceGPS,
		tools.ToolLocationHistory,
	} {
		assert.Contains(t, rendered, tool)
	}
}
