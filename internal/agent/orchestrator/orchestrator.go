package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	"github.com/iot-fleet-chat/server/internal/agent/prompts"
	"github.com/iot-fleet-chat/server/internal/agent/tools"
	errx "github.com/iot-fleet-chat/server/internal/core/error"
	logx "github.com/iot-fleet-chat/server/pkg/logger"
)

// Config wires the orchestrator's collaborators.
type Config struct {
	Inference    model.InferenceModel
	ModelName    string
	Registry     *tools.Registry
	Orchestrator model.OrchestratorConfig
	Prompt       model.PromptConfig
}

// Orchestrator handles one chat turn end to end: validate, build context, run
// the reasoning loop, format the envelope. Stateless between calls; safe for
// concurrent use.
type Orchestrator struct {
	loop           *Loop
	systemPrompt   string
	requestTimeout time.Duration
}

// New builds the orchestrator and renders the system prompt once.
func New(ctx context.Context, cfg Config) (*Orchestrator, error) {
	if cfg.Inference == nil {
		return nil, fmt.Errorf("inference model is nil")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("tool registry is nil")
	}

	systemPrompt, err := prompts.RenderSystem(ctx, cfg.Prompt)
	if err != nil {
		return nil, err
	}

	requestTimeout := cfg.Orchestrator.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 120 * time.Second
	}

	return &Orchestrator{
		loop:           NewLoop(cfg.Inference, cfg.Registry, cfg.ModelName, cfg.Orchestrator),
		systemPrompt:   systemPrompt,
		requestTimeout: requestTimeout,
	}, nil
}

// Handle processes one chat turn and always returns a well-formed envelope;
// no error escapes this boundary.
func (o *Orchestrator) Handle(ctx context.Context, req model.ChatRequest) (resp model.ChatResponse) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Any("panic", r).Msg("Recovered panic while handling chat turn")
			resp = FailureResponse(errx.Internal(fmt.Errorf("panic: %v", r)))
		}
	}()

	if err := ValidateRequest(req); err != nil {
		logx.Debug().Err(err).Msg("Rejected chat request")
		return FailureResponse(err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.requestTimeout)
	defer cancel()

	conversation := BuildConversation(o.systemPrompt, req)

	answer, err := o.loop.Run(ctx, conversation)
	if err != nil {
		logx.Error().Err(err).Msg("Chat turn failed")
		return FailureResponse(err)
	}
	return SuccessResponse(answer)
}
