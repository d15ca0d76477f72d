package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	"github.com/iot-fleet-chat/server/internal/agent/tools"
	errx "github.com/iot-fleet-chat/server/internal/core/error"
	logx "github.com/iot-fleet-chat/server/pkg/logger"
)

// phase is the reasoning loop's state. The loop is an explicit finite-state
// machine so the iteration bound and cancellation checkpoints are structural,
// not implicit in recursion depth.
type phase int

const (
	phaseAwaitingModel phase = iota
	phaseExecutingTool
)

// Loop drives one request through alternating model and tool calls until the
// model produces a final answer, the tool budget runs out, or an unrecoverable
// error occurs. State lives entirely on the stack of Run; nothing is shared
// across requests.
type Loop struct {
	inference    model.InferenceModel
	registry     *tools.Registry
	modelName    string
	maxToolCalls int
	modelTimeout time.Duration
	toolTimeout  time.Duration
}

func NewLoop(inference model.InferenceModel, registry *tools.Registry, modelName string, cfg model.OrchestratorConfig) *Loop {
	maxCalls := cfg.MaxToolCalls
	if maxCalls <= 0 {
		maxCalls = 8
	}
	modelTimeout := cfg.ModelCallTimeout
	if modelTimeout <= 0 {
		modelTimeout = 60 * time.Second
	}
	toolTimeout := cfg.ToolCallTimeout
	if toolTimeout <= 0 {
		toolTimeout = 30 * time.Second
	}
	return &Loop{
		inference:    inference,
		registry:     registry,
		modelName:    modelName,
		maxToolCalls: maxCalls,
		modelTimeout: modelTimeout,
		toolTimeout:  toolTimeout,
	}
}

// Run executes the state machine over the prepared conversation and returns
// the final answer text. The conversation slice is owned by the loop; callers
// must not reuse it.
func (l *Loop) Run(ctx context.Context, conversation []*schema.Message) (string, error) {
	history := conversation
	state := phaseAwaitingModel
	toolCalls := 0
	totalCostUSD := 0.0

	var pending []schema.ToolCall

	for {
		// Cancellation checkpoint: one per transition, so an exceeded request
		// deadline aborts at the next safe point rather than mid-call.
		if err := ctx.Err(); err != nil {
			return "", errx.Timeout("request", err)
		}

		switch state {
		case phaseAwaitingModel:
			out, err := l.generate(ctx, history)
			if err != nil {
				return "", err
			}
			totalCostUSD += l.logUsage(out, totalCostUSD)

			history = append(history, out)
			if len(out.ToolCalls) == 0 {
				logx.Debug().Int("tool_calls", toolCalls).Float64("total_cost_usd", totalCostUSD).Msg("AI response ready")
				return strings.TrimSpace(out.Content), nil
			}

			pending = out.ToolCalls
			logx.Debug().Int("tool_count", len(pending)).Msg("Calling tools")
			state = phaseExecutingTool

		case phaseExecutingTool:
			for _, tc := range pending {
				toolCalls++
				if toolCalls > l.maxToolCalls {
					logx.Warn().Int("max_tool_calls", l.maxToolCalls).Msg("Tool call budget exhausted")
					return "", errx.BudgetExceeded(l.maxToolCalls)
				}

				result, err := l.execute(ctx, tc)
				if err != nil {
					return "", err
				}
				history = append(history, schema.ToolMessage(result, tc.ID))
			}
			pending = nil
			state = phaseAwaitingModel
		}
	}
}

func (l *Loop) generate(ctx context.Context, history []*schema.Message) (*schema.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, l.modelTimeout)
	defer cancel()

	logx.Debug().Msg("AI thinking...")
	out, err := l.inference.Generate(ctx, history)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, errx.Timeout("model inference", err)
		}
		return nil, errx.Internal(fmt.Errorf("model inference: %w", err))
	}
	if out == nil {
		return nil, errx.Internal(fmt.Errorf("model inference returned no message"))
	}

	// Some providers omit tool call IDs; synthesize them so tool results can
	// be correlated on the next turn.
	for i := range out.ToolCalls {
		if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
			out.ToolCalls[i].ID = "call_" + uuid.NewString()
		}
	}
	return out, nil
}

func (l *Loop) execute(ctx context.Context, tc schema.ToolCall) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.toolTimeout)
	defer cancel()

	result, err := l.registry.Execute(ctx, tc.Function.Name, tc.Function.Arguments)
	if err != nil {
		var app *errx.AppError
		if !errors.As(err, &app) {
			err = errx.Internal(fmt.Errorf("tool %s: %w", tc.Function.Name, err))
		}
		logx.Error().Err(err).Str("tool", tc.Function.Name).Msg("Tool execution failed")
		return "", err
	}
	return result, nil
}

// logUsage reports token usage and cost for one model call and returns the
// call's cost so Run can keep a per-request running total.
func (l *Loop) logUsage(out *schema.Message, runningTotal float64) float64 {
	if out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return 0
	}
	usage := out.ResponseMeta.Usage
	inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(l.modelName))
	logx.Debug().
		Str("model", l.modelName).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", runningTotal+totalC).
		Msg("LLM usage")
	return totalC
}
