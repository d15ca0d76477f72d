package model

import (
	"context"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// InferenceModel is the model-inference capability consumed by the reasoning
// loop: given the dialogue so far (with tool descriptors already bound), it
// returns either a final answer or a message carrying tool calls.
//
// Satisfied by the Gemini chat model in production; tests substitute a
// scripted implementation.
type InferenceModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}
