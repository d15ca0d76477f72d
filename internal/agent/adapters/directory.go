package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iot"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	errx "github.com/iot-fleet-chat/server/internal/core/error"
	logx "github.com/iot-fleet-chat/server/pkg/logger"
)

// DeviceDirectoryAPI is the subset of the AWS IoT Core client the adapter
// depends on. Narrowed for fakeability in tests.
type DeviceDirectoryAPI interface {
	ListThings(ctx context.Context, params *iot.ListThingsInput, optFns ...func(*iot.Options)) (*iot.ListThingsOutput, error)
	ListThingTypes(ctx context.Context, params *iot.ListThingTypesInput, optFns ...func(*iot.Options)) (*iot.ListThingTypesOutput, error)
	SearchIndex(ctx context.Context, params *iot.SearchIndexInput, optFns ...func(*iot.Options)) (*iot.SearchIndexOutput, error)
	DescribeThing(ctx context.Context, params *iot.DescribeThingInput, optFns ...func(*iot.Options)) (*iot.DescribeThingOutput, error)
}

// ListingCache holds recent fleet-wide listings. Advisory only: a nil cache or
// a cache fault never fails a directory call.
type ListingCache interface {
	GetDevices(ctx context.Context) ([]model.Device, bool)
	SetDevices(ctx context.Context, devices []model.Device)
	GetDeviceTypes(ctx context.Context) ([]model.DeviceType, bool)
	SetDeviceTypes(ctx context.Context, types []model.DeviceType)
}

// Directory adapts the device registry backend to the tool layer. Read-only.
type Directory struct {
	api   DeviceDirectoryAPI
	cache ListingCache
	cfg   model.DirectoryConfig
}

// NewDirectory builds the adapter. cache may be nil.
func NewDirectory(api DeviceDirectoryAPI, cache ListingCache, cfg model.DirectoryConfig) *Directory {
	return &Directory{api: api, cache: cache, cfg: cfg}
}

// ListDevices returns every registered device with its type.
func (d *Directory) ListDevices(ctx context.Context) ([]model.Device, error) {
	if d.cache != nil {
		if devices, ok := d.cache.GetDevices(ctx); ok {
			return devices, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	defer cancel()

	out, err := d.api.ListThings(ctx, &iot.ListThingsInput{})
	if err != nil {
		return nil, errx.WrapDirectory("list devices", err)
	}

	devices := make([]model.Device, 0, len(out.Things))
	for _, thing := range out.Things {
		devices = append(devices, model.Device{
			Name: aws.ToString(thing.ThingName),
			Type: aws.ToString(thing.ThingTypeName),
		})
	}

	if d.cache != nil {
		d.cache.SetDevices(ctx, devices)
	}
	return devices, nil
}

// ListDeviceTypes returns the device type catalog.
func (d *Directory) ListDeviceTypes(ctx context.Context) ([]model.DeviceType, error) {
	if d.cache != nil {
		if types, ok := d.cache.GetDeviceTypes(ctx); ok {
			return types, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	defer cancel()

	out, err := d.api.ListThingTypes(ctx, &iot.ListThingTypesInput{})
	if err != nil {
		return nil, errx.WrapDirectory("list device types", err)
	}

	types := make([]model.DeviceType, 0, len(out.ThingTypes))
	for _, tt := range out.ThingTypes {
		dt := model.DeviceType{Name: aws.ToString(tt.ThingTypeName)}
		if tt.ThingTypeProperties != nil {
			dt.Description = aws.ToString(tt.ThingTypeProperties.ThingTypeDescription)
			dt.SearchableAttributes = tt.ThingTypeProperties.SearchableAttributes
		}
		types = append(types, dt)
	}

	if d.cache != nil {
		d.cache.SetDeviceTypes(ctx, types)
	}
	return types, nil
}

// ConnectedDevices queries the fleet index for connected devices, optionally
// filtered by device type.
func (d *Directory) ConnectedDevices(ctx context.Context, deviceType string) ([]model.ConnectedDevice, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	defer cancel()

	query := "connectivity.connected:true"
	if deviceType != "" {
		query += fmt.Sprintf(" AND thingTypeName:%s", deviceType)
	}

	out, err := d.api.SearchIndex(ctx, &iot.SearchIndexInput{QueryString: aws.String(query)})
	if err != nil {
		return nil, errx.WrapDirectory("search connected devices", err)
	}

	devices := make([]model.ConnectedDevice, 0, len(out.Things))
	for _, doc := range out.Things {
		cd := model.ConnectedDevice{
			Name:       aws.ToString(doc.ThingName),
			Type:       aws.ToString(doc.ThingTypeName),
			Attributes: doc.Attributes,
		}
		if doc.Connectivity != nil {
			cd.Connected = aws.ToBool(doc.Connectivity.Connected)
			cd.LastSeen = formatEpochMillis(doc.Connectivity.Timestamp)
		}
		devices = append(devices, cd)
	}
	return devices, nil
}

// DeviceStatus fetches registry attributes plus connectivity for one device.
func (d *Directory) DeviceStatus(ctx context.Context, deviceID string) (*model.DeviceStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	defer cancel()

	desc, err := d.api.DescribeThing(ctx, &iot.DescribeThingInput{ThingName: aws.String(deviceID)})
	if err != nil {
		return nil, errx.WrapDirectory("describe device", err)
	}

	status := &model.DeviceStatus{
		Name:       aws.ToString(desc.ThingName),
		Type:       aws.ToString(desc.ThingTypeName),
		Attributes: desc.Attributes,
	}

	// Connectivity comes from the fleet index. A device registered but never
	// indexed simply has no connectivity document; that is not an error.
	out, err := d.api.SearchIndex(ctx, &iot.SearchIndexInput{
		QueryString: aws.String(fmt.Sprintf("thingName:%s", deviceID)),
	})
	if err != nil {
		logx.Warn().Err(err).Str("device", deviceID).Msg("fleet index lookup failed, returning status without connectivity")
		return status, nil
	}
	for _, doc := range out.Things {
		if aws.ToString(doc.ThingName) != status.Name || doc.Connectivity == nil {
			continue
		}
		status.Connected = doc.Connectivity.Connected
		status.LastSeen = formatEpochMillis(doc.Connectivity.Timestamp)
		break
	}
	return status, nil
}

func formatEpochMillis(ms *int64) string {
	if ms == nil || *ms == 0 {
		return ""
	}
	return time.UnixMilli(*ms).UTC().Format(time.RFC3339)
}
