package run

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/google/uuid"

	"github.com/routegate/routegate/core/stream"
	"github.com/routegate/routegate/providers/ai"
	"github.com/routegate/routegate/providers/memory"
	"github.com/routegate/routegate/providers/memory/inmemory"
	"github.com/routegate/routegate/providers/tool"
)

// DefaultMaxTurns bounds a run when no explicit limit is configured.
const DefaultMaxTurns = 10

// ErrUnknownTool marks a tool call whose name matched no registered tool.
// It is recorded on the ToolExecution, never returned from CallModel.
var ErrUnknownTool = errors.New("unknown tool")

// TurnStreamObserver receives, for every turn, an independent consumer of
// that turn's response event stream. Observers run on their own goroutine
// and pace themselves; a slow observer never delays the loop, which reads
// the same multiplexed stream through its own consumer.
type TurnStreamObserver func(turn int, events iter.Seq2[ai.StreamEvent, error])

// Runner drives tool orchestration runs against one provider. A Runner is
// reusable across runs only when a fresh memory provider is configured per
// run; the zero-config default creates one per CallModel invocation.
type Runner struct {
	provider       ai.Provider
	catalog        *tool.Catalog
	memoryFactory  func() memory.Provider
	maxTurns       int
	stopConditions []StopCondition
	streamObserver TurnStreamObserver
	logger         *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithTools registers tools the model may call during runs.
func WithTools(tools ...tool.GenericTool) Option {
	return func(r *Runner) {
		r.catalog.Add(tools...)
	}
}

// WithCatalog merges an existing catalog into the runner's.
func WithCatalog(catalog *tool.Catalog) Option {
	return func(r *Runner) {
		r.catalog.Merge(catalog)
	}
}

// WithMaxTurns sets the turn limit. Values below 1 are ignored.
func WithMaxTurns(maxTurns int) Option {
	return func(r *Runner) {
		if maxTurns >= 1 {
			r.maxTurns = maxTurns
		}
	}
}

// WithStopConditions registers stop conditions. The run stops as soon as any
// of them evaluates true (logical OR over the whole list).
func WithStopConditions(conditions ...StopCondition) Option {
	return func(r *Runner) {
		r.stopConditions = append(r.stopConditions, conditions...)
	}
}

// WithMemory supplies the conversation store for each run. The factory is
// invoked once per CallModel call so concurrent runs never share history.
func WithMemory(factory func() memory.Provider) Option {
	return func(r *Runner) {
		r.memoryFactory = factory
	}
}

// WithTurnStream enables per-turn streaming. Each turn's response is
// requested as a stream (falling back to a synthetic single-event stream
// when the provider cannot stream), multiplexed, and handed to observer as
// an independent consumer.
func WithTurnStream(observer TurnStreamObserver) Option {
	return func(r *Runner) {
		r.streamObserver = observer
	}
}

// WithLogger sets the logger for per-turn debug lines. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner for the given provider.
func New(provider ai.Provider, options ...Option) *Runner {
	runner := &Runner{
		provider:      provider,
		catalog:       tool.NewCatalog(),
		memoryFactory: func() memory.Provider { return inmemory.New() },
		maxTurns:      DefaultMaxTurns,
		logger:        slog.Default(),
	}
	for _, option := range options {
		option(runner)
	}
	return runner
}

// CallModel executes one orchestration run and returns the transcript.
//
// Each turn resolves the request's dynamic parameters, sends the request,
// executes any requested tools, then decides whether to continue. The
// decision order is fixed: stop conditions first, then the turn limit, then
// natural completion (no tool calls). The returned Result is populated even
// on error, so partial progress is always inspectable.
func (r *Runner) CallModel(ctx context.Context, request Request) (*Result, error) {
	result := &Result{}
	conversation := r.memoryFactory()

	if request.Input != "" {
		conversation.AppendMessage(ctx, &ai.Message{Role: ai.RoleUser, Content: request.Input})
	}

	lastStepErrored := false

	for turn := 0; ; turn++ {
		// Resolving
		turnContext := TurnContext{
			Turn:            turn,
			Usage:           result.Usage,
			LastStepErrored: lastStepErrored,
		}
		chatRequest, err := request.resolve(ctx, turnContext)
		if err != nil {
			result.Termination = TerminationFailed
			return result, err
		}

		messages, err := conversation.AllMessages(ctx)
		if err != nil {
			result.Termination = TerminationFailed
			return result, fmt.Errorf("reading conversation history: %w", err)
		}
		chatRequest.Messages = messages
		chatRequest.Tools = r.catalog.Descriptions()

		// Requesting
		response, err := r.sendTurn(ctx, turn, chatRequest)
		if err != nil {
			result.Termination = TerminationFailed
			if ctx.Err() != nil {
				result.Termination = TerminationCanceled
			}
			return result, fmt.Errorf("turn %d: %w", turn, err)
		}

		step := Step{
			ID:        uuid.NewString(),
			Turn:      turn,
			Request:   chatRequest,
			Response:  response,
			ToolCalls: response.ToolCalls,
		}
		if response.Usage != nil {
			step.Usage = *response.Usage
		}
		result.Usage.Add(response.Usage)
		result.Text += response.Content

		conversation.AppendMessage(ctx, &ai.Message{
			Role:      ai.RoleAssistant,
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
			Reasoning: response.Reasoning,
		})

		// Inspecting + Executing
		step.ToolExecutions = r.executeToolCalls(ctx, response.ToolCalls)
		for _, execution := range step.ToolExecutions {
			conversation.AppendMessage(ctx, toolResultMessage(execution))
		}

		result.Steps = append(result.Steps, step)
		lastStepErrored = step.ToolErrored()

		r.logger.Debug("turn completed",
			"turn", turn,
			"model", response.Model,
			"tool_calls", len(response.ToolCalls),
			"tool_errors", countFailures(step.ToolExecutions),
			"total_tokens", result.Usage.TotalTokens,
		)

		if ctx.Err() != nil {
			result.Termination = TerminationCanceled
			return result, ctx.Err()
		}

		// Deciding. Precedence is fixed: condition, then turn limit, then
		// natural completion.
		stopped, err := Any(r.stopConditions...).Done(ctx, result.Steps)
		if err != nil {
			result.Termination = TerminationFailed
			return result, fmt.Errorf("evaluating stop conditions after turn %d: %w", turn, err)
		}
		if stopped {
			result.Termination = TerminationCondition
			return result, nil
		}
		if turn+1 >= r.maxTurns {
			result.Termination = TerminationMaxTurns
			return result, nil
		}
		if len(response.ToolCalls) == 0 {
			result.Termination = TerminationNatural
			return result, nil
		}
	}
}

// sendTurn issues one model request. Without a stream observer this is a
// plain synchronous call. With one, the response is streamed, multiplexed
// through a Reusable, and collected from the loop's own consumer while the
// observer reads an independent one.
func (r *Runner) sendTurn(ctx context.Context, turn int, chatRequest ai.ChatRequest) (*ai.ChatResponse, error) {
	if r.streamObserver == nil {
		return r.provider.SendMessage(ctx, chatRequest)
	}

	chatStream, err := r.openTurnStream(ctx, chatRequest)
	if err != nil {
		return nil, err
	}

	multiplexer := stream.NewReusable(chatStream.Iter())
	go r.streamObserver(turn, multiplexer.Consume(ctx))

	return ai.NewChatStream(multiplexer.Consume(ctx)).Collect()
}

func (r *Runner) openTurnStream(ctx context.Context, chatRequest ai.ChatRequest) (*ai.ChatStream, error) {
	if streamProvider, ok := r.provider.(ai.StreamProvider); ok {
		return streamProvider.StreamMessage(ctx, chatRequest)
	}

	response, err := r.provider.SendMessage(ctx, chatRequest)
	if err != nil {
		return nil, err
	}
	return ai.NewSingleEventStream(response), nil
}

// executeToolCalls runs every requested tool call, concurrently when there
// are several. Failures are recorded per call and never abort siblings: an
// unknown tool name, an execution error, or a panic all become failed
// ToolExecutions. If ctx is cancelled while executions are in flight, the
// calls that have not finished are recorded as cancelled and the method
// returns without waiting for them.
func (r *Runner) executeToolCalls(ctx context.Context, toolCalls []ai.ToolCall) []ToolExecution {
	if len(toolCalls) == 0 {
		return nil
	}

	type indexedExecution struct {
		index     int
		execution ToolExecution
	}

	// Buffered so straggler goroutines can complete their send after an
	// early return on cancellation.
	results := make(chan indexedExecution, len(toolCalls))

	for i, call := range toolCalls {
		go func(index int, call ai.ToolCall) {
			execution := ToolExecution{
				CallID:    call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			}

			defer func() {
				if recovered := recover(); recovered != nil {
					execution.Err = fmt.Errorf("tool %q panicked: %v", call.Function.Name, recovered)
				}
				results <- indexedExecution{index: index, execution: execution}
			}()

			registered, ok := r.catalog.Get(call.Function.Name)
			if !ok {
				execution.Err = fmt.Errorf("%w: %q", ErrUnknownTool, call.Function.Name)
				return
			}

			output, err := registered.Call(ctx, call.Function.Arguments)
			if err != nil {
				execution.Err = fmt.Errorf("tool %q failed: %w", call.Function.Name, err)
				return
			}
			execution.Output = output
		}(i, call)
	}

	executions := make([]ToolExecution, len(toolCalls))
	collected := make([]bool, len(toolCalls))

	for remaining := len(toolCalls); remaining > 0; remaining-- {
		select {
		case result := <-results:
			executions[result.index] = result.execution
			collected[result.index] = true

		case <-ctx.Done():
			// Stop awaiting. In-flight calls received the same ctx and are
			// expected to wind down on their own.
			for i, call := range toolCalls {
				if !collected[i] {
					executions[i] = ToolExecution{
						CallID:    call.ID,
						Name:      call.Function.Name,
						Arguments: call.Function.Arguments,
						Err:       ctx.Err(),
					}
				}
			}
			return executions
		}
	}

	return executions
}

// toolResultMessage serializes an execution outcome as the RoleTool message
// reported back to the model. Successes carry the raw tool output; failures
// carry a structured error result so the model can react to them.
func toolResultMessage(execution ToolExecution) *ai.Message {
	content := execution.Output

	if !execution.Succeeded() {
		errorType := "tool_execution_failed"
		if isUnknownTool(execution.Err) {
			errorType = "tool_not_found"
		}
		if encoded, err := ai.NewToolResultError(errorType, execution.Err.Error()).ToJSON(); err == nil {
			content = encoded
		} else {
			content = execution.Err.Error()
		}
	}

	return &ai.Message{
		Role:       ai.RoleTool,
		Content:    content,
		ToolCallID: execution.CallID,
		Name:       execution.Name,
	}
}

func isUnknownTool(err error) bool {
	return errors.Is(err, ErrUnknownTool)
}

func countFailures(executions []ToolExecution) int {
	failures := 0
	for _, execution := range executions {
		if !execution.Succeeded() {
			failures++
		}
	}
	return failures
}
