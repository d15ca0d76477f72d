package errx

import (
	"context"
	"errors"

	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
	iottypes "github.com/aws/aws-sdk-go-v2/service/iot/types"
)

// WrapDirectory maps AWS IoT Core errors to the adapter-level taxonomy so the
// reasoning loop never sees backend-specific shapes.
func WrapDirectory(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Timeout(op, err)
	}

	var notFound *iottypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return NotFound("device not found")
	}
	var throttled *iottypes.ThrottlingException
	if errors.As(err, &throttled) {
		return Unavailable(op, err)
	}
	var invalid *iottypes.InvalidRequestException
	if errors.As(err, &invalid) {
		return Internal(err)
	}

	return Unavailable(op, err)
}

// WrapAnalytics maps AWS Athena errors to the adapter-level taxonomy.
func WrapAnalytics(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Timeout(op, err)
	}

	var throttled *athenatypes.TooManyRequestsException
	if errors.As(err, &throttled) {
		return Unavailable(op, err)
	}
	var invalid *athenatypes.InvalidRequestException
	if errors.As(err, &invalid) {
		return Internal(err)
	}

	return Unavailable(op, err)
}
