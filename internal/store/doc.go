// Package store provides SQLite-backed durable storage for video records.
//
// Each record holds one normalized binary payload plus the metadata needed
// to find it again:
//   - videos: primary key id, payload BLOB, mime type, derived size
//   - idx_videos_node_id: non-unique lookup by owning node
//   - idx_videos_node_type: non-unique lookup by node category
//   - idx_videos_created_at: non-unique lookup by write time
//
// Secondary indexes are plain SQLite indexes, so the engine keeps them
// consistent with the table inside every write transaction.
//
// size_bytes is guarded by a CHECK constraint against length(payload) and is
// always computed by the store, never taken from callers.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Open connects eagerly. Handle defers the open until first use and shares a
// single in-flight open between concurrent first callers.
package store
