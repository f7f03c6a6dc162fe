// package tasks implements the recommendation pipeline and the snapshot
// archival job.
//
// RecommendEngine samples a source playlist, asks the generative backend for
// song suggestions, resolves them against the catalog, and persists the run.
// ArchiveEngine snapshots enabled source playlists when their contents change.
// Long-running operations emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks
