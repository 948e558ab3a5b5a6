package run

import (
	"github.com/routegate/routegate/providers/ai"
)

// ToolExecution records the outcome of one tool call within a step. Exactly
// one of Output and Err is meaningful: a nil Err means the call succeeded
// and Output holds the JSON-encoded result.
type ToolExecution struct {
	CallID    string // Tool call ID assigned by the model
	Name      string // Tool name the model requested
	Arguments string // JSON arguments as supplied by the model
	Output    string // JSON result when the call succeeded
	Err       error  // Failure reason: unknown tool, execution error, or cancellation
}

// Succeeded reports whether this execution completed without error.
func (e ToolExecution) Succeeded() bool {
	return e.Err == nil
}

// Step is one completed request/response round of the loop: the resolved
// request that was sent, the response received, and the outcome of every
// tool call the response requested. Steps accumulate in order on the
// [Result] and are what stop conditions evaluate.
type Step struct {
	ID             string // Unique step identifier
	Turn           int    // 0-based turn index
	Request        ai.ChatRequest
	Response       *ai.ChatResponse
	ToolCalls      []ai.ToolCall
	ToolExecutions []ToolExecution
	Usage          ai.Usage // Token usage of this step alone
}

// ToolErrored reports whether any tool execution in this step failed.
func (s Step) ToolErrored() bool {
	for _, execution := range s.ToolExecutions {
		if !execution.Succeeded() {
			return true
		}
	}
	return false
}

// Termination identifies why a run ended.
type Termination string

const (
	// TerminationCondition: a stop condition evaluated true.
	TerminationCondition Termination = "condition"
	// TerminationMaxTurns: the configured turn limit was reached with tool
	// calls still pending.
	TerminationMaxTurns Termination = "max_turns"
	// TerminationNatural: the model responded without requesting tools.
	TerminationNatural Termination = "natural"
	// TerminationCanceled: the run context was cancelled mid-run.
	TerminationCanceled Termination = "canceled"
	// TerminationFailed: a terminal error (endpoint failure or parameter
	// resolution failure) aborted the run.
	TerminationFailed Termination = "failed"
)

// Result is the transcript of one orchestration run. It is populated even
// when the run ends in an error or cancellation, so callers can always
// inspect the partial progress instead of relying on the error alone.
type Result struct {
	Steps       []Step
	Text        string      // Assistant text concatenated across turns, in production order
	Usage       ai.Usage    // Cumulative token usage across all steps
	Termination Termination // Why the run ended
}

// StoppedByCondition reports whether the run ended because a stop condition
// fired, as opposed to hitting the turn limit or completing naturally.
func (r *Result) StoppedByCondition() bool {
	return r.Termination == TerminationCondition
}

// ToolExecutions returns every tool execution across all steps, in order.
func (r *Result) ToolExecutions() []ToolExecution {
	var executions []ToolExecution
	for _, step := range r.Steps {
		executions = append(executions, step.ToolExecutions...)
	}
	return executions
}

// FinalResponse returns the response of the last completed step, or nil when
// no step completed.
func (r *Result) FinalResponse() *ai.ChatResponse {
	if len(r.Steps) == 0 {
		return nil
	}
	return r.Steps[len(r.Steps)-1].Response
}
