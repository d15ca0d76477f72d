package model

import "time"

// ================ Config ================

// InferenceConfig selects the response model and its sampling parameters.
type InferenceConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.4"`
}

// OrchestratorConfig holds the reasoning loop's policy constants.
type OrchestratorConfig struct {
	MaxToolCalls     int           `envconfig:"AGENT_TOOL_MAX_CALLS" default:"8"`
	ModelCallTimeout time.Duration `envconfig:"AGENT_MODEL_CALL_TIMEOUT" default:"60s"`
	ToolCallTimeout  time.Duration `envconfig:"AGENT_TOOL_CALL_TIMEOUT" default:"30s"`
	RequestTimeout   time.Duration `envconfig:"AGENT_REQUEST_TIMEOUT" default:"120s"`
}

// DirectoryConfig bounds individual device directory calls.
type DirectoryConfig struct {
	CallTimeout time.Duration `envconfig:"DIRECTORY_CALL_TIMEOUT" default:"10s"`
}

// AnalyticsConfig locates the historical location table and bounds the
// asynchronous query lifecycle.
type AnalyticsConfig struct {
	Database       string        `envconfig:"ANALYTICS_DATABASE" default:"iot_data"`
	Table          string        `envconfig:"ANALYTICS_TABLE" default:"device_gps_data"`
	PartitionKey   string        `envconfig:"ANALYTICS_PARTITION_KEY" default:"thing_name"`
	OutputLocation string        `envconfig:"ANALYTICS_OUTPUT_LOCATION" default:"s3://iot-athena-query-results/"`
	SubmitTimeout  time.Duration `envconfig:"ANALYTICS_SUBMIT_TIMEOUT" default:"10s"`
	PollInterval   time.Duration `envconfig:"ANALYTICS_POLL_INTERVAL" default:"500ms"`
	PollDeadline   time.Duration `envconfig:"ANALYTICS_POLL_DEADLINE" default:"30s"`
	MaxRows        int           `envconfig:"ANALYTICS_MAX_ROWS" default:"100"`
}

// CacheConfig bounds the lifetime of cached directory listings.
type CacheConfig struct {
	TTL time.Duration `envconfig:"DEVICE_CACHE_TTL" default:"30s"`
}

// PromptConfig feeds the system prompt template.
type PromptConfig struct {
	FleetName string `envconfig:"PROMPT_FLEET_NAME" default:"the device fleet"`
}
