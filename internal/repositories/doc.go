// Package repositories implements SQLite persistence for connection profiles.
//
// [ProfileRepository] implements models.Repository for [models.Profile] with atomic sequence generation
// for stable ordering. Deletes are soft: a deleted_at timestamp hides the row from every query and frees its name.
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
