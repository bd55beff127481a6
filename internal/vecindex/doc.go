// Package vecindex implements a thread-safe, exact nearest-neighbor vector
// index with on-disk snapshots.
//
// FlatIndex pairs a packed float32 vector buffer with an ordered list of
// document metadata. Search is exhaustive: every stored vector is compared
// against the query, trading O(N) per-query cost for guaranteed-correct
// top-k results at the corpus scale this engine targets (tens of thousands
// of vectors). Distance is squared Euclidean; lower is closer.
//
// # Concurrency
//
// One mutex guards every public operation for its entire duration. Search,
// Add, and Remove are mutually exclusive with each other rather than
// reader-shared, because rebuild-based removal cannot coexist with
// concurrent readers of the structure being rebuilt. Operations on one
// index are totally ordered by lock-acquisition order.
//
// # Identity
//
// Entries are addressed by ordinal: the 0-based position at a point in
// time. Ordinals are append-assigned and are not stable across removals —
// every Remove rebuilds the index and reassigns ordinals 0..M-1 preserving
// original relative order.
//
// # Persistence
//
// Save writes two linked artifacts into a directory: a binary vector
// buffer and an ordered SQLite document database. Load validates that both
// are present, uncorrupted, and count-consistent before touching any
// in-memory state, and refuses to read a metadata database that is
// world-writable.
package vecindex
