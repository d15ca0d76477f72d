package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/cloudwego/eino/schema"

	errx "github.com/iot-fleet-chat/server/internal/core/error"
	logx "github.com/iot-fleet-chat/server/pkg/logger"
)

// Binding ties one tool descriptor to the adapter call that serves it. Params
// is the authoritative argument contract; Run is only reached with arguments
// that satisfy it.
type Binding struct {
	Info   *schema.ToolInfo
	Params map[string]*schema.ParameterInfo
	Run    func(ctx context.Context, args map[string]any) (string, error)
}

func newBinding(
	name, desc string,
	params map[string]*schema.ParameterInfo,
	run func(ctx context.Context, args map[string]any) (string, error),
) *Binding {
	return &Binding{
		Info: &schema.ToolInfo{
			Name:        name,
			Desc:        desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		},
		Params: params,
		Run:    run,
	}
}

// Registry is the fixed tool catalog. Built once at startup and read-only
// afterwards, so concurrent requests may share it without coordination.
type Registry struct {
	order    []string
	bindings map[string]*Binding
}

// NewRegistry assembles the catalog, rejecting duplicate tool names.
func NewRegistry(bindings ...*Binding) (*Registry, error) {
	r := &Registry{bindings: make(map[string]*Binding, len(bindings))}
	for _, b := range bindings {
		if b == nil || b.Info == nil || b.Info.Name == "" {
			return nil, fmt.Errorf("registry: binding without a name")
		}
		if _, exists := r.bindings[b.Info.Name]; exists {
			return nil, fmt.Errorf("registry: duplicate tool %q", b.Info.Name)
		}
		r.bindings[b.Info.Name] = b
		r.order = append(r.order, b.Info.Name)
	}
	return r, nil
}

// ToolInfos lists the catalog in registration order, for binding to the model.
func (r *Registry) ToolInfos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, r.bindings[name].Info)
	}
	return infos
}

// Resolve returns the binding for a tool name.
func (r *Registry) Resolve(name string) (*Binding, error) {
	b, ok := r.bindings[name]
	if !ok {
		return nil, errx.ToolNotFound(name)
	}
	return b, nil
}

// Execute validates the raw arguments against the tool's schema and runs the
// binding. Schema violations fail before any adapter is reached.
func (r *Registry) Execute(ctx context.Context, name, argumentsJSON string) (string, error) {
	b, err := r.Resolve(name)
	if err != nil {
		return "", err
	}

	args := map[string]any{}
	if s := strings.TrimSpace(argumentsJSON); s != "" {
		if err := json.Unmarshal([]byte(s), &args); err != nil {
			return "", errx.InvalidArguments(name, fmt.Errorf("arguments are not a JSON object: %w", err))
		}
	}

	if err := validateArgs(b.Params, args); err != nil {
		return "", errx.InvalidArguments(name, err)
	}

	logx.Debug().Str("tool", name).Msg("Executing tool")
	return b.Run(ctx, args)
}

// validateArgs checks required parameters and primitive types. Unknown keys
// are dropped rather than rejected; models occasionally volunteer extras.
func validateArgs(params map[string]*schema.ParameterInfo, args map[string]any) error {
	for key, p := range params {
		v, ok := args[key]
		if !ok {
			if p.Required {
				return fmt.Errorf("missing required argument %q", key)
			}
			continue
		}
		if err := checkType(v, p.Type); err != nil {
			return fmt.Errorf("argument %q: %w", key, err)
		}
	}
	for key := range args {
		if _, ok := params[key]; !ok {
			delete(args, key)
		}
	}
	return nil
}

func checkType(v any, t schema.DataType) error {
	switch t {
	case "string":
		if _, ok := v.(string); ok {
			return nil
		}
	case "number":
		if _, ok := v.(float64); ok {
			return nil
		}
	case "integer":
		if f, ok := v.(float64); ok && math.Trunc(f) == f {
			return nil
		}
	case "boolean":
		if _, ok := v.(bool); ok {
			return nil
		}
	default:
		return fmt.Errorf("unsupported schema type %q", t)
	}
	return fmt.Errorf("expected %s but got %T", t, v)
}

// ===== argument accessors for bindings (post-validation) =====

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intArg(args map[string]any, key string, fallback int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return fallback
}

// domainError renders a domain-level miss as a compact structured result the
// model can reason about instead of aborting the whole request.
func domainError(msg string) string {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return string(b)
}

// marshalResult renders a tool payload for the model.
func marshalResult(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errx.Internal(fmt.Errorf("marshal tool result: %w", err))
	}
	return string(b), nil
}
