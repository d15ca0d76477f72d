package inference

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	logx "github.com/iot-fleet-chat/server/pkg/logger"
)

// Config holds provider credentials and model parameters.
type Config struct {
	APIKey  string
	BaseURL string
	Model   model.InferenceConfig
}

// NewGeminiModel creates the production inference model with the tool catalog
// bound, so every generation sees the full set of callable capabilities.
func NewGeminiModel(ctx context.Context, cfg Config, toolInfos []*schema.ToolInfo) (model.InferenceModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model.Model,
		Temperature: &cfg.Model.Temperature,
		MaxTokens:   &cfg.Model.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating response model")
		return nil, fmt.Errorf("error creating response model: %w", err)
	}

	if len(toolInfos) > 0 {
		if err := chatModel.BindTools(toolInfos); err != nil {
			logx.Error().Err(err).Msg("Failed to bind tools to response model")
			return nil, fmt.Errorf("failed to bind tools: %w", err)
		}
	}

	logx.Debug().Str("model", cfg.Model.Model).Int("tools", len(toolInfos)).Msg("Inference model ready")
	return chatModel, nil
}
