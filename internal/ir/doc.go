// Package ir defines the closed intermediate representation handed to the
// output drivers: a small set of type variants and declaration variants.
//
// Both families are sealed. Drivers implement Writer, which has one method
// per variant, and dispatch with WriteType and WriteDecl. Children are owned
// by their parent; the same node never appears twice in a tree. References
// between top-level declarations go through registry IDs (RecordType.ID,
// TypedefType.NS, DeclBase.NS), never through shared pointers.
package ir
