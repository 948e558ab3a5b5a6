package run

import (
	"context"
	"strings"
)

// StopCondition is a predicate over the ordered steps completed so far.
// Conditions are evaluated after each step, once that step's tool results
// are recorded. Returning true halts the loop. An evaluation error aborts
// the run.
//
// The conditions supplied to a Runner form a logical OR: the run stops as
// soon as any of them fires. [Any] exists as an explicit combinator for
// composing condition values, and behaves identically to listing its
// children directly.
type StopCondition interface {
	Done(ctx context.Context, steps []Step) (bool, error)
}

// StopFunc adapts a function to the StopCondition interface.
type StopFunc func(ctx context.Context, steps []Step) (bool, error)

// Done implements StopCondition.
func (fn StopFunc) Done(ctx context.Context, steps []Step) (bool, error) {
	return fn(ctx, steps)
}

// MaxSteps stops the run once n steps have completed.
func MaxSteps(n int) StopCondition {
	return StopFunc(func(_ context.Context, steps []Step) (bool, error) {
		return len(steps) >= n, nil
	})
}

// ToolCalled stops the run once the model has requested the named tool
// (case-insensitive) in any step, whether or not the execution succeeded.
func ToolCalled(name string) StopCondition {
	return StopFunc(func(_ context.Context, steps []Step) (bool, error) {
		for _, step := range steps {
			for _, call := range step.ToolCalls {
				if strings.EqualFold(call.Function.Name, name) {
					return true, nil
				}
			}
		}
		return false, nil
	})
}

// TokenBudget stops the run once cumulative total token usage exceeds
// maxTotalTokens.
func TokenBudget(maxTotalTokens int) StopCondition {
	return StopFunc(func(_ context.Context, steps []Step) (bool, error) {
		total := 0
		for _, step := range steps {
			total += step.Usage.TotalTokens
		}
		return total > maxTotalTokens, nil
	})
}

// Predicate wraps a synchronous predicate over the step history.
func Predicate(fn func(steps []Step) bool) StopCondition {
	return StopFunc(func(_ context.Context, steps []Step) (bool, error) {
		return fn(steps), nil
	})
}

// Any combines conditions into one that fires when any child fires.
// Children are evaluated in order with short-circuiting on the first true
// result; an error from any child propagates immediately.
func Any(conditions ...StopCondition) StopCondition {
	return StopFunc(func(ctx context.Context, steps []Step) (bool, error) {
		for _, condition := range conditions {
			done, err := condition.Done(ctx, steps)
			if err != nil {
				return false, err
			}
			if done {
				return true, nil
			}
		}
		return false, nil
	})
}
