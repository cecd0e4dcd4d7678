// Package snapshot reads and writes AST snapshots: the resolved declaration
// and type graph of one translation unit, as exported by a frontend plugin.
//
// A snapshot is a flat table of type records and declaration records that
// refer to each other by 1-based index (0 means "none"). The same schema is
// serialized either as msgpack (the .astpack files the plugin writes) or as
// JSON (hand-written fixtures, debugging).
package snapshot
