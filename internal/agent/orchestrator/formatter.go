package orchestrator

import (
	"errors"
	"time"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	errx "github.com/iot-fleet-chat/server/internal/core/error"
)

// SuccessResponse wraps a final answer in the stable envelope.
func SuccessResponse(text string) model.ChatResponse {
	return model.ChatResponse{
		Response:  &text,
		Timestamp: timestamp(),
		Success:   true,
		Error:     nil,
	}
}

// FailureResponse converts any internal error into the stable envelope. Only
// the taxonomy's safe message crosses this boundary; backend detail stays in
// the logs.
func FailureResponse(err error) model.ChatResponse {
	message := errx.SystemErrorMessage
	var app *errx.AppError
	if errors.As(err, &app) && app.Message != "" {
		message = app.Message
	}
	return model.ChatResponse{
		Response:  nil,
		Timestamp: timestamp(),
		Success:   false,
		Error:     &message,
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
