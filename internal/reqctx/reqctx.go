// Package reqctx stamps a comparison run with an ID for log correlation.
package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

type key int

const runKey key = 0

// RunContext identifies one comparison run
type RunContext struct {
	RunID     string
	StartTime time.Time
}

// Elapsed returns the time since the run started
func (rc *RunContext) Elapsed() time.Duration {
	return time.Since(rc.StartTime)
}

// WithRun attaches a new RunContext unless ctx already carries one
func WithRun(ctx context.Context) context.Context {
	if _, ok := ctx.Value(runKey).(*RunContext); ok {
		return ctx
	}
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     generateID(),
		StartTime: time.Now(),
	})
}

// FromContext returns the run attached to ctx, or a placeholder
func FromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}

func generateID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// RunError wraps an error with the run ID
type RunError struct {
	RunID string
	Err   error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("[run %s] %v", e.RunID, e.Err)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError wraps err with the run attached to ctx
func NewRunError(ctx context.Context, err error) error {
	return &RunError{
		RunID: FromContext(ctx).RunID,
		Err:   err,
	}
}
