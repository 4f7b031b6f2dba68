// Package builder turns a GenICam camera description into the node
// and value stores the engine evaluates.
//
// The XML document is first parsed into a generic Element tree, then
// each child of the root is translated in document order. Name
// references are interned lazily, so forward references are legal;
// after the whole document is processed, any name that was referenced
// but never declared is an error.
//
// While translating register-backed nodes the builder also records
// the implicit invalidator edges: a write to any node a register's
// address or length depends on drops that register's cache, in
// addition to the edges declared with pInvalidator.
package builder
