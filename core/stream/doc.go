// Package stream provides [Reusable], a multiplexer that buffers a single
// source sequence and replays it to any number of independent consumers.
//
// A plain iter.Seq2 stream (such as an SSE-backed ChatStream iterator) can be
// consumed exactly once. Wrapping it in a Reusable lets a caller read the
// same model response several ways at once - say, as a raw event feed for a
// UI and as accumulated text for a transcript - each at its own pace, and
// lets consumers attach after streaming has already started (or finished)
// without missing anything: every consumer always replays from the first
// item.
package stream
