// Package inf loads driver-package descriptors (INF files) and exposes the
// SetupAPI-style lookup primitives the resolver is built on.
//
// A descriptor is a set of named sections, each holding ordered lines of
// comma-separated fields:
//
//	[Manufacturer]
//	%Vendor% = Models, NTamd64
//
//	[Models.NTamd64]
//	%Device% = Install, *HW001
//
// Field 0 of a line is its key (the text left of "="), or empty when the
// line has no key. Fields 1..N are the values. Section and key lookups are
// case-insensitive.
//
// # Lookup
//
// [Descriptor.FirstLine] positions a [Cursor] on the first line of a section,
// optionally filtered by key; [Cursor.Next] advances to the next line passing
// the same filter. [Cursor.Field] is bounds-checked and reports
// OUT_OF_RANGE past [Cursor.FieldCount].
//
// Section names are discovered by index through [Descriptor.EnumSection],
// which reports [ErrNoMoreItems] past the last section, or lazily through
// [Enumerate].
//
// # Text format
//
// The parser follows SetupAPI conventions: ";" starts a comment, a trailing
// "\" continues a line, double quotes protect commas and "=" (a doubled ""
// is a literal quote), repeated section headers append to the same section,
// and %token% is replaced by the matching [Strings] entry.
package inf
