package main

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-bench/bench"
)

// builtinOps maps the operation names scenario files may reference to
// factories producing the corresponding reference workloads.
var builtinOps = bench.Registry{
	"sleep": newSleepOp,
	"spin":  newSpinOp,
	"alloc": newAllocOp,
	"hash":  newHashOp,
}

// newSleepOp blocks for a fixed duration per iteration. Params: duration.
func newSleepOp(params map[string]any) (bench.Operation, error) {
	d, err := paramDuration(params, "duration", time.Millisecond)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		time.Sleep(d)
		return nil
	}, nil
}

// newSpinOp busy-loops for a fixed duration per iteration. Params: duration.
func newSpinOp(params map[string]any) (bench.Operation, error) {
	d, err := paramDuration(params, "duration", 100*time.Microsecond)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		deadline := time.Now().Add(d)
		for time.Now().Before(deadline) {
		}
		return nil
	}, nil
}

// newAllocOp allocates and touches a buffer per iteration. Params: bytes.
func newAllocOp(params map[string]any) (bench.Operation, error) {
	n, err := paramInt(params, "bytes", 1<<20)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		buf := make([]byte, n)
		for i := 0; i < len(buf); i += 4096 {
			buf[i] = byte(i)
		}
		return nil
	}, nil
}

// newHashOp hashes a buffer per iteration. Params: bytes.
func newHashOp(params map[string]any) (bench.Operation, error) {
	n, err := paramInt(params, "bytes", 64<<10)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	return func(ctx context.Context) error {
		sha256.Sum256(buf)
		return nil
	}, nil
}

// paramDuration reads a duration parameter given as a Go duration string.
func paramDuration(params map[string]any, key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	s, ok := raw.(string)
	if !ok {
		return 0, errors.Errorf("parameter %q: expected a duration string, got %T", key, raw)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parameter %q", key)
	}
	return d, nil
}

// paramInt reads an integer parameter. YAML and JSON decode integers into
// different Go types, so all of them are accepted.
func paramInt(params map[string]any, key string, fallback int) (int, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.Errorf("parameter %q: expected an integer, got %T", key, raw)
	}
}
