// Package resolve computes the file manifest and hardware id of a driver
// package from its descriptor.
//
// The walk is a strict depth-first traversal:
//
//	[Manufacturer] line
//	  -> models section, or models.<os-tag> for every OS tag on the line
//	    -> device description line (field 1: install section, field 2: hardware id)
//	      -> every section named <install> or <install>.<decoration>
//	        -> CopyFiles = @file            (literal file)
//	        -> CopyFiles = <file-list>      (field 1 of each line of <file-list>)
//
// The first hardware id found anywhere in the walk wins, with one leading
// "*" stripped. Files are returned in discovery order without
// deduplication unless [Options.Dedupe] is set, after any caller-supplied
// seed entries. The order is stable across runs.
//
// Only a missing or empty [Manufacturer] section fails the whole
// resolution. Absent model, install and file-list sections are skipped.
// Out-of-range field reads and section enumeration failures are logged and
// skipped in [Lenient] mode and returned in [Strict] mode.
package resolve
