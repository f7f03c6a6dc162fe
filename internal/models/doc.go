// Package models defines the data model for the playlist recommendation
// and archival service.
//
// Persisted entities (User, SourcePlaylist, Recommendation, Snapshot and
// their child rows) carry unexported fields with accessor methods and are
// validated before writes. Transient DTOs (Playlist, PlaylistEntry,
// CatalogTrack, Suggestion, ResolvedTrack) mirror catalog and generator
// payloads and are never persisted verbatim.
package models
