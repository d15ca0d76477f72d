package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/iot"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/iot-fleet-chat/server/internal/agent/adapters"
	"github.com/iot-fleet-chat/server/internal/agent/inference"
	"github.com/iot-fleet-chat/server/internal/agent/model"
	"github.com/iot-fleet-chat/server/internal/agent/orchestrator"
	"github.com/iot-fleet-chat/server/internal/agent/repo"
	"github.com/iot-fleet-chat/server/internal/agent/tools"
	"github.com/iot-fleet-chat/server/internal/core"
	logx "github.com/iot-fleet-chat/server/pkg/logger"
	pkgredis "github.com/iot-fleet-chat/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the agent, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis     pkgredis.Config
	AWSRegion string `envconfig:"AWS_REGION"`

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Response     model.InferenceConfig
	Orchestrator model.OrchestratorConfig
	Directory    model.DirectoryConfig
	Analytics    model.AnalyticsConfig
	Cache        model.CacheConfig
	Prompt       model.PromptConfig
}

func main() {
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	var awsOpts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		awsOpts = append(awsOpts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	// Optional Redis-backed cache for fleet-wide directory listings
	var cache adapters.ListingCache
	if cfg.Redis.URL != "" {
		rdb, err := cfg.Redis.New()
		if err != nil {
			log.Fatalf("Failed to initialise Redis client: %v", err)
		}
		defer rdb.Close()
		cache = repo.NewDeviceCache(rdb, cfg.Cache.TTL)
		logx.Info().Msg("Device listing cache enabled")
	}

	directory := adapters.NewDirectory(iot.NewFromConfig(awsCfg), cache, cfg.Directory)
	analytics := adapters.NewAnalytics(athena.NewFromConfig(awsCfg), cfg.Analytics)

	registry, err := tools.NewRegistry(append(
		tools.DirectoryBindings(directory),
		tools.LocationBindings(analytics)...,
	)...)
	if err != nil {
		log.Fatalf("Failed to build tool registry: %v", err)
	}

	inferenceModel, err := inference.NewGeminiModel(ctx, inference.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Response,
	}, registry.ToolInfos())
	if err != nil {
		log.Fatalf("Failed to create inference model: %v", err)
	}

	orch, err := orchestrator.New(ctx, orchestrator.Config{
		Inference:    inferenceModel,
		ModelName:    cfg.Response.Model,
		Registry:     registry,
		Orchestrator: cfg.Orchestrator,
		Prompt:       cfg.Prompt,
	})
	if err != nil {
		log.Fatalf("Failed to build orchestrator: %v", err)
	}

	message := "What IoT devices do I have?"
	if len(os.Args) > 1 {
		message = strings.Join(os.Args[1:], " ")
	}

	resp := orch.Handle(ctx, model.ChatRequest{Message: message})

	b, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal response: %v", err)
	}
	fmt.Println(string(b))
}
