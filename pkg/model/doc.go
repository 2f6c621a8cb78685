// Package model defines the track map's data model: a directed graph of
// value-like entities referenced by string identifiers. Ids are
// case-insensitive, whitespace-trimmed, and unique within their entity
// kind. The Map exclusively owns every entity; lookups by id return
// non-owning references, and no entity owns another.
//
// Every entity is created and mutated only while pkg/tsm is assembling a
// Map from a parsed file. Once Parse returns, callers must treat the Map
// as read-only — the same convention the rest of the kernel relies on to
// share a single built Map and spatial index across goroutines without a
// mutex.
package model
