package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	errx "github.com/iot-fleet-chat/server/internal/core/error"
)

// Tool names exposed to the model.
const (
	ToolListDevices      = "list_devices"
	ToolListDeviceTypes  = "list_device_types"
	ToolConnectedDevices = "get_connected_devices"
	ToolDeviceStatus     = "get_device_status"
	ToolDeviceGPS        = "get_device_gps"
	ToolLocationHistory  = "get_location_history"
)

// DeviceDirectory is the read-only device registry capability consumed by the
// directory-backed tools.
type DeviceDirectory interface {
	ListDevices(ctx context.Context) ([]model.Device, error)
	ListDeviceTypes(ctx context.Context) ([]model.DeviceType, error)
	ConnectedDevices(ctx context.Context, deviceType string) ([]model.ConnectedDevice, error)
	DeviceStatus(ctx context.Context, deviceID string) (*model.DeviceStatus, error)
}

// DirectoryBindings builds the registry entries backed by the device directory.
func DirectoryBindings(dir DeviceDirectory) []*Binding {
	return []*Binding{
		newBinding(
			ToolListDevices,
			"List every registered IoT device in the fleet with its name and device type. Use this first when the user asks what devices exist.",
			map[string]*schema.ParameterInfo{},
			func(ctx context.Context, _ map[string]any) (string, error) {
				devices, err := dir.ListDevices(ctx)
				if err != nil {
					return "", err
				}
				return marshalResult(devices)
			},
		),
		newBinding(
			ToolListDeviceTypes,
			"List the device type catalog: type names, descriptions and searchable attributes. Use this to explain what kinds of devices the fleet contains.",
			map[string]*schema.ParameterInfo{},
			func(ctx context.Context, _ map[string]any) (string, error) {
				types, err := dir.ListDeviceTypes(ctx)
				if err != nil {
					return "", err
				}
				return marshalResult(types)
			},
		),
		newBinding(
			ToolConnectedDevices,
			"List currently connected devices with their connectivity state, last-seen time and attributes. Optionally filter by device type name (e.g. VehicleDevice, SuitDevice, HouseDevice).",
			map[string]*schema.ParameterInfo{
				"device_type": {
					Type: "string",
					Desc: "Optional device type name to filter by. Omit to return all connected devices.",
				},
			},
			func(ctx context.Context, args map[string]any) (string, error) {
				devices, err := dir.ConnectedDevices(ctx, stringArg(args, "device_type"))
				if err != nil {
					return "", err
				}
				return marshalResult(devices)
			},
		),
		newBinding(
			ToolDeviceStatus,
			"Get the registered attributes and connectivity state of a single device by its exact name.",
			map[string]*schema.ParameterInfo{
				"device_id": {
					Type:     "string",
					Desc:     "Exact device name as returned by list_devices.",
					Required: true,
				},
			},
			func(ctx context.Context, args map[string]any) (string, error) {
				id := stringArg(args, "device_id")
				status, err := dir.DeviceStatus(ctx, id)
				if err != nil {
					if errors.Is(err, errx.ErrNotFound) {
						return domainError(fmt.Sprintf("device not found: %s", id)), nil
					}
					return "", err
				}
				return marshalResult(status)
			},
		),
	}
}
