// Package tool defines the typed tool abstraction the orchestration loop
// dispatches to. A [Tool] binds a name and description to a strongly-typed Go
// function and derives the JSON schema of its input automatically; the
// [GenericTool] interface erases the type parameters so tools of different
// shapes can live together in a [Catalog], keyed by name. The concrete
// input/output types are recovered only inside the Tool's own Call method.
package tool
