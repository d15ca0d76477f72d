package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	logx "github.com/iot-fleet-chat/server/pkg/logger"
)

const (
	devicesKey     = "directory:devices"
	deviceTypesKey = "directory:device-types"
)

// kvClient is the narrow Redis surface the cache needs. redis.Cmdable
// satisfies it; tests supply a fake.
type kvClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// DeviceCache is a read-through cache for slow fleet-wide directory listings.
// It is advisory: every fault degrades to a cache miss and a warning, never a
// failed request.
type DeviceCache struct {
	rdb kvClient
	ttl time.Duration
}

func NewDeviceCache(rdb kvClient, ttl time.Duration) *DeviceCache {
	return &DeviceCache{rdb: rdb, ttl: ttl}
}

func (c *DeviceCache) GetDevices(ctx context.Context) ([]model.Device, bool) {
	var devices []model.Device
	if !c.get(ctx, devicesKey, &devices) {
		return nil, false
	}
	return devices, true
}

func (c *DeviceCache) SetDevices(ctx context.Context, devices []model.Device) {
	c.set(ctx, devicesKey, devices)
}

func (c *DeviceCache) GetDeviceTypes(ctx context.Context) ([]model.DeviceType, bool) {
	var types []model.DeviceType
	if !c.get(ctx, deviceTypesKey, &types) {
		return nil, false
	}
	return types, true
}

func (c *DeviceCache) SetDeviceTypes(ctx context.Context, types []model.DeviceType) {
	c.set(ctx, deviceTypesKey, types)
}

func (c *DeviceCache) get(ctx context.Context, key string, out any) bool {
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logx.Warn().Err(err).Str("key", key).Msg("device cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("device cache entry is corrupt, treating as miss")
		return false
	}
	return true
}

func (c *DeviceCache) set(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("failed to marshal device cache entry")
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("device cache write failed")
	}
}
