// Package mangle derives the two names the C library driver needs for a
// declaration: its qualified C++ spelling and a flat identifier that is a
// valid C name.
//
// Flat identifiers start with a root prefix and join the enclosing named
// scopes with a separator. Template arguments are flattened into the name
// and operator characters are replaced by words, so that
// A::E::C::operator+ becomes upp_A_E_C_operator_add_.
//
// Declarations without a stable spelling (anonymous namespaces and
// records, declarations local to a function) produce an *Error instead of
// a guessed name.
package mangle
