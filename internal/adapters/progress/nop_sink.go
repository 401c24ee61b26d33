package progress

import (
	"context"

	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NopSink drops progress output for --json and --non-interactive runs
type NopSink struct{}

// NewNopSink creates a new no-op progress sink
func NewNopSink() usecase.ProgressSink {
	return &NopSink{}
}

func (*NopSink) OnProgress(context.Context, usecase.ProgressEvent) {}
func (*NopSink) Info(string)                                      {}
func (*NopSink) Error(string)                                     {}

var _ usecase.ProgressSink = (*NopSink)(nil)
