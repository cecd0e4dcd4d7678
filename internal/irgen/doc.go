// Package irgen reduces a native translation unit into IR.
//
// A Harvester walks the top-level declarations in source order. For each it
// builds one IR declaration (MakeDecl), reducing every type the declaration
// mentions (MakeType). Types that refer to other declarations go through the
// Registry, which hands out stable IDs and remembers which declarations
// were already emitted, so that anonymous records and enums are written in
// place exactly once and everything else is referenced by name and ID.
package irgen
