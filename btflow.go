// Package btflow is the root of the BTflow reactive execution core: a
// behavior-tree tick scheduler, a typed reactive state store, an async
// leaf-node lifecycle, a structured-concurrency composite/decorator library,
// a checkpoint/restore protocol, and a tool-invocation subsystem for
// LLM-powered agents built as behavior trees.
//
// The subpackages are:
//
//	behavior   - Status, Behavior nodes, composites/decorators, Tree
//	state      - StateStore, schema, reducers, action fields
//	runner     - ReactiveRunner, the event-driven scheduler
//	agent      - AgentFacade (step/run modes)
//	checkpoint - Checkpointer, append-only JSONL persistence
//	trace      - span/event bus with context-propagated trace context
//	tool       - Tool contract and ToolRuntime dispatch/retries
//
// This package itself only declares the error taxonomy shared across the
// above (see errors.go); it has no other behavior.
package btflow
