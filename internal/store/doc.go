// Package store defines the persistence interfaces the engine depends on,
// together with the sentinel errors shared by all implementations. The
// engine does not own the schema; tables are managed externally.
package store
