package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	errx "github.com/iot-fleet-chat/server/internal/core/error"
)

// LocationAnalytics is the historical analytics capability consumed by the
// location tools.
type LocationAnalytics interface {
	LatestPosition(ctx context.Context, deviceID string) (*model.GPSPosition, error)
	LocationHistory(ctx context.Context, q model.LocationQuery) ([]model.LocationPoint, error)
}

// LocationBindings builds the registry entries backed by the analytics engine.
func LocationBindings(analytics LocationAnalytics) []*Binding {
	return []*Binding{
		newBinding(
			ToolDeviceGPS,
			"Get the most recent GPS coordinates (latitude, longitude, altitude, timestamp) recorded for a location-capable device.",
			map[string]*schema.ParameterInfo{
				"device_id": {
					Type:     "string",
					Desc:     "Exact device name as returned by list_devices.",
					Required: true,
				},
			},
			func(ctx context.Context, args map[string]any) (string, error) {
				id := stringArg(args, "device_id")
				pos, err := analytics.LatestPosition(ctx, id)
				if err != nil {
					if errors.Is(err, errx.ErrNotFound) {
						return domainError(fmt.Sprintf("no GPS data found for device: %s", id)), nil
					}
					return "", err
				}
				if pos == nil {
					return domainError(fmt.Sprintf("no GPS data found for device: %s", id)), nil
				}
				return marshalResult(pos)
			},
		),
		newBinding(
			ToolLocationHistory,
			"Query historical GPS positions of a device within a time range. Returns rows newest first, capped by the server-side limit.",
			map[string]*schema.ParameterInfo{
				"device_id": {
					Type:     "string",
					Desc:     "Exact device name as returned by list_devices.",
					Required: true,
				},
				"start_time": {
					Type:     "string",
					Desc:     "Inclusive range start as an ISO-8601 UTC instant, e.g. 2026-08-01T00:00:00Z.",
					Required: true,
				},
				"end_time": {
					Type:     "string",
					Desc:     "Inclusive range end as an ISO-8601 UTC instant.",
					Required: true,
				},
				"limit": {
					Type: "integer",
					Desc: "Maximum number of rows to return. Clamped to the server-side cap.",
				},
			},
			func(ctx context.Context, args map[string]any) (string, error) {
				q := model.LocationQuery{
					DeviceID: stringArg(args, "device_id"),
					Start:    stringArg(args, "start_time"),
					End:      stringArg(args, "end_time"),
					Limit:    intArg(args, "limit", 0),
				}
				if msg := checkInstant("start_time", q.Start); msg != "" {
					return domainError(msg), nil
				}
				if msg := checkInstant("end_time", q.End); msg != "" {
					return domainError(msg), nil
				}

				points, err := analytics.LocationHistory(ctx, q)
				if err != nil {
					return "", err
				}
				if len(points) == 0 {
					return domainError(fmt.Sprintf("no location history for device %s in the given range", q.DeviceID)), nil
				}
				return marshalResult(points)
			},
		),
	}
}

// checkInstant reports a model-correctable message for a malformed timestamp.
// Format defects are fed back rather than failing the request, so the model
// can retry with a proper instant.
func checkInstant(field, value string) string {
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		return fmt.Sprintf("%s must be an ISO-8601 instant like 2026-08-01T00:00:00Z, got %q", field, value)
	}
	return ""
}
