// Package tasks runs playlist operations that span many users, with real-time progress reporting.
//
// # Bulk Export
//
// [Exporter.BulkExport] writes one file per user into an output directory:
//
//   - a single producer loads each user's playlist and the podcasts of its episodes
//   - a pool of workers encodes the playlists with the formatter package
//   - unknown users are recorded as failures and the rest continue
//   - export_manifest.json summarises the run, sorted by user name
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking, so a full or nil channel drops them.
package tasks
