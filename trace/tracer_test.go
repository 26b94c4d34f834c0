// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledTracer(t *testing.T) {
	require := require.New(t)

	cfg := NewDefaultConfig()
	tracer, err := New(&cfg)
	require.NoError(err)

	ctx, span := tracer.Start(context.Background(), "test")
	require.NotNil(ctx)
	require.False(span.SpanContext().IsSampled())
	span.End()
	require.NoError(tracer.Close())
}

func TestEnabledTracer(t *testing.T) {
	require := require.New(t)

	cfg := NewDefaultConfig()
	cfg.Enabled = true
	tracer, err := New(&cfg)
	require.NoError(err)

	_, span := tracer.Start(context.Background(), "test")
	require.True(span.SpanContext().IsValid())
	span.End()
}
