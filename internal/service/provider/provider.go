package provider

import (
	"context"
	"fmt"
)

// Options tune a single generation call. Nil fields fall back to whatever
// the underlying model was configured with.
type Options struct {
	Model       string
	Temperature *float32
	MaxTokens   *int
}

// Request is one prompt for the generation capability. ImageData, when set,
// is a base64 image payload sent alongside the user text (vision mode).
type Request struct {
	System    string
	User      string
	ImageData string
	Options   Options
}

// Generator is the external text/vision generation capability. Calls block
// until the provider answers or fails; failures are reported as *Error.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Error describes a generation failure: model unavailable, transport
// failure, empty completion.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider: %s: %v", e.Reason, e.Err)
	}
	return "provider: " + e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}
