// Package repositories implements persistence for all domain entities behind the [Repository] interface.
//
// Two interchangeable backends are selected at startup:
//   - [MemoryRepository] : Sorted slices and id indexes held in process, guarded by a read/write mutex
//   - [SQLRepository] : SQLite tables created by the migrations in internal/shared, one transaction per write
//
// [CachedRepository] decorates either backend with an expiring read-through cache for podcast lookups.
//
// Reads of a missing id or name return [ErrNotFound]; callers test it with errors.Is.
//
// Two behaviors of the memory backend are kept deliberately and differ from SQL:
//   - Category search deduplicates by podcast title, so distinct podcasts sharing a title collapse into one result.
//   - A review for an unknown podcast is recorded globally while the podcast-side link is dropped;
//     the SQL backend rejects it through the foreign key.
package repositories
