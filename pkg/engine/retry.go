package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/telcoflow/workflowengine/pkg/compiler"
	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/workflowdesc"
)

// executeWithRetry runs node's handler, retrying on a retryable error per
// its effective policy, and returns the final result plus every attempt
// made (oldest first).
func (e *Engine) executeWithRetry(
	ctx context.Context,
	node *compiler.ExecutionNode,
	execCtx *dispatcher.ExecutionContext,
	input map[string]any,
	inputs []map[string]any,
	opts Options,
	logger *slog.Logger,
) (dispatcher.NodeExecutionResult, []dispatcher.NodeExecutionResult) {
	var attempts []dispatcher.NodeExecutionResult
	policy := node.EffectiveRetry
	maxAttempts := 1
	if policy != nil && policy.MaxAttempts > 0 {
		maxAttempts = policy.MaxAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		res := e.executeOnce(ctx, node, execCtx, input, inputs, attempt, logger)
		attempts = append(attempts, res)

		if res.Status == dispatcher.StatusSuccess || res.Status == dispatcher.StatusSkipped {
			return res, attempts
		}

		retryable := opts.EnableRetries && policy != nil && attempt < maxAttempts-1 && isRetryable(res.Error, policy)
		if !retryable {
			return res, attempts
		}

		delay := backoffDelay(policy, attempt)
		logger.Info("retrying node after delay", "attempt", attempt, "delay_ms", delay.Milliseconds(), "error_code", res.Error.Code)

		if err := sleepCtx(ctx, delay); err != nil {
			// Context ended mid-backoff: report the interruption rather
			// than the original error.
			if errors.Is(err, context.DeadlineExceeded) {
				res.Status = dispatcher.StatusTimeout
				res.Error = executionTimeoutError()
			}
			attempts[len(attempts)-1] = res
			return res, attempts
		}
	}
	return attempts[len(attempts)-1], attempts
}

func (e *Engine) executeOnce(
	ctx context.Context,
	node *compiler.ExecutionNode,
	execCtx *dispatcher.ExecutionContext,
	input map[string]any,
	inputs []map[string]any,
	attempt int,
	logger *slog.Logger,
) dispatcher.NodeExecutionResult {
	nodeCtx := ctx
	var cancel context.CancelFunc
	if node.EffectiveTimeout != nil && *node.EffectiveTimeout > 0 {
		nodeCtx, cancel = context.WithTimeout(ctx, time.Duration(*node.EffectiveTimeout)*time.Millisecond)
		defer cancel()
	}

	startedAt := e.now()
	in := dispatcher.HandlerInput{
		Node:    node,
		Context: execCtx,
		Input:   input,
		Inputs:  inputs,
		Attempt: attempt,
	}

	res := e.dispatchSafely(nodeCtx, in)
	res.DurationMs = e.now().Sub(startedAt).Milliseconds()
	res.ExecutedAt = startedAt
	res.Attempt = attempt

	if res.Status == dispatcher.StatusError && errors.Is(nodeCtx.Err(), context.DeadlineExceeded) {
		res.Status = dispatcher.StatusTimeout
		if res.Error == nil {
			res.Error = executionTimeoutError()
		}
	}

	logger.Debug("node attempt finished", "attempt", attempt, "status", res.Status, "handle", res.OutputHandle)
	return res
}

func (e *Engine) dispatchSafely(ctx context.Context, in dispatcher.HandlerInput) (result dispatcher.NodeExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = dispatcher.NodeExecutionResult{
				NodeID:       in.Node.ID,
				Status:       dispatcher.StatusError,
				OutputHandle: "error",
				Error:        panicError(r),
			}
		}
	}()
	return e.dispatcher.Dispatch(ctx, in)
}

func isRetryable(nodeErr *dispatcher.NodeError, policy *workflowdesc.RetryPolicy) bool {
	if nodeErr == nil {
		return false
	}
	if nodeErr.Type == dispatcher.ErrorPermanent || nodeErr.Type == dispatcher.ErrorValidation {
		return false
	}
	if len(policy.RetryableErrors) > 0 {
		for _, code := range policy.RetryableErrors {
			if code == nodeErr.Code {
				return true
			}
		}
		return false
	}
	return nodeErr.Type == dispatcher.ErrorTransient || nodeErr.Type == dispatcher.ErrorRateLimit
}

func backoffDelay(policy *workflowdesc.RetryPolicy, attempt int) time.Duration {
	mult := policy.BackoffMult
	if mult <= 0 {
		mult = 1
	}
	delayMs := float64(policy.InitialDelayMs) * math.Pow(mult, float64(attempt))
	if policy.MaxDelayMs > 0 && delayMs > float64(policy.MaxDelayMs) {
		delayMs = float64(policy.MaxDelayMs)
	}
	return time.Duration(delayMs) * time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
