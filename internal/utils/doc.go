// Package utils provides the shared low-level helpers used by the routing-API
// client: HTTP request helpers for synchronous JSON round-trips ([DoPostSync],
// [DoGetSync]) and streaming Server-Sent Events ([DoPostStream] together with
// [SSEScanner]), plus small generic pointer and string utilities.
package utils
