// Package ai defines the shared types and interfaces the rest of the library
// is built on: the [Provider] and [StreamProvider] interfaces implemented by
// the routing-API client, the [ChatRequest]/[ChatResponse] data model, and
// the [ChatStream]/[StreamEvent] streaming idiom.
//
// Transport-level observation is done through [Hooks]: an explicit, ordered
// list of before-request, after-response and on-error callbacks invoked
// synchronously around every HTTP call. There is no global event bus; a
// Hooks value belongs to the provider it was configured on.
package ai
