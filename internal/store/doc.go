// Package store provides SQLite-backed source bundles.
//
// A bundle is a single database file holding every source of a project,
// so a document can be evaluated without the original directory:
//   - sources: path, text, content hash and insertion order
//   - meta: bundle id (UUIDv7) and project root
//
// Paths are slash-separated and absolute within the bundle ("/main.mq").
// Listing is deterministic: ORDER BY seq ASC, path ASC COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
