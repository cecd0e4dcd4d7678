// Package outfmt serializes an ir.Unit. Each output format is a Driver:
// an ir.Writer plus the framing calls Emit makes around the declarations.
//
// Drivers write through a buffered sink and keep the first write error;
// Close flushes and reports it.
package outfmt
