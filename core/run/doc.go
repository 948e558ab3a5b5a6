// Package run drives the multi-turn tool orchestration loop against a model
// endpoint. A [Runner] repeatedly sends a request, inspects the response for
// tool calls, executes the matching tools from its catalog (concurrently,
// with per-tool failure isolation), feeds results back as new conversation
// turns, and stops when a [StopCondition] fires, the turn limit is reached,
// or the model responds without requesting tools.
//
// Request fields can be dynamic: a [Param] is either a fixed value or a
// resolver invoked with the current [TurnContext] before every turn, which
// lets callers express policies such as "switch to a cheaper model after two
// turns" without writing the loop themselves.
//
// The loop never retries failed endpoint calls; retry policy belongs to the
// HTTP client configured on the provider.
package run
