// Package pkg holds the infcat libraries.
//
// Data flows from a driver descriptor to a catalog:
//
//	INF bytes
//	    ↓ textenc   (UTF-8, UTF-16, Windows-1252)
//	    ↓ inf       (sections, lines, fields, %strings%)
//	    ↓ resolve   (hardware id + ordered file list)
//	    ↓ catalog   (file checks, CDF, makecat)
//
// [pipeline] runs these stages with [cache] in front of resolution and
// [observability] hooks around each stage. [render/tracegraph] draws the
// resolver's walk for debugging. Error codes shared by every package live
// in [errors].
package pkg
