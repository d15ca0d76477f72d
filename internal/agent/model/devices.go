package model

// Device is one registered device in the fleet directory.
type Device struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// DeviceType describes one entry of the device type catalog.
type DeviceType struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description,omitempty"`
	SearchableAttributes []string `json:"searchable_attributes,omitempty"`
}

// ConnectedDevice is a fleet-index search hit with live connectivity state.
type ConnectedDevice struct {
	Name       string            `json:"name"`
	Type       string            `json:"type,omitempty"`
	Connected  bool              `json:"connected"`
	LastSeen   string            `json:"last_seen,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// DeviceStatus combines registry attributes with connectivity for one device.
// Connected is nil when the fleet index holds no document for the device.
type DeviceStatus struct {
	Name       string            `json:"name"`
	Type       string            `json:"type,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Connected  *bool             `json:"connected,omitempty"`
	LastSeen   string            `json:"last_seen,omitempty"`
}

// GPSPosition is the most recent GPS fix recorded for a device.
type GPSPosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Timestamp string  `json:"timestamp"`
}

// LocationPoint is one row of a historical location query.
type LocationPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Timestamp string  `json:"timestamp"`
}

// LocationQuery bounds a historical location lookup. Start and End are
// inclusive ISO-8601 instants matching the timestamp column of the data lake.
type LocationQuery struct {
	DeviceID string
	Start    string
	End      string
	Limit    int
}
