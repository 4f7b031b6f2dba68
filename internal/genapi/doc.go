// Package genapi implements the camera parameter engine: an
// interpreter over a graph of named feature nodes describing how each
// camera parameter maps onto the device's register space.
//
// # Architecture
//
//	              by-name lookup
//	                    │
//	            ┌───────▼────────┐
//	            │   NodeStore    │  immutable after build
//	            │ (name → NodeID │
//	            │  → NodeData)   │
//	            └───────┬────────┘
//	                    │ capability dispatch (IInteger, IFloat, …)
//	            ┌───────▼────────┐
//	            │      Eval      │  one per operation; detects cycles
//	            └───┬───────┬────┘
//	        ┌───────▼──┐ ┌──▼─────────┐
//	        │ValueStore│ │ CacheStore │  (ValueCtxt: exclusive access)
//	        └──────────┘ └──┬─────────┘
//	                        │ read-through / invalidate-on-write
//	                ┌───────▼────────┐
//	                │  Port node →   │
//	                │ camera.Device  │
//	                └────────────────┘
//
// # Node graph
//
// Every node is known by a globally unique name, interned to a NodeID.
// Nodes never hold each other by pointer; all cross-references are
// NodeIDs resolved through the NodeStore at evaluation time, which
// lets the builder wire forward references and keeps the graph free
// of ownership cycles.
//
// Almost every attribute of every node kind is an indirection (an
// IntSource, FloatSource, BoolSource or StrSource): either an
// immediate literal held in the ValueStore, or a pointer to another
// node whose live value is coerced at evaluation time.
//
// # Capabilities
//
// Callers obtain typed views with Eval.AsInteger, AsFloat, AsBoolean,
// AsString, AsRegister and so on; requesting a capability a node kind
// does not offer fails with ErrInvalidNode. Reads honor the node's
// effective access mode and its pIsImplemented/pIsAvailable
// predicates; writes additionally honor pIsLocked.
//
// # Caching
//
// Register-backed reads go through the CacheStore keyed by
// (node, address, length). Writes invalidate the transitive closure
// of the writer's declared invalidator edges. A failed device read
// never populates the cache and a failed device write never
// invalidates it.
//
// # Concurrency
//
// The node graph and value store are read-only after construction and
// safe to share. The ValueCtxt (value + cache) is not synchronized;
// callers needing concurrent access wrap operations in their own
// mutex, as internal/feature does.
package genapi
