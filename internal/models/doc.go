// Package models defines the request-scoped entities shared by the proxy's services and HTTP layer.
//
//   - [ResourceKind] and [ValidateID]: Spotify identifiers (22 alphanumeric characters) for tracks and artists
//   - [Token]: an upstream bearer credential with its expiry
//   - [TokenCache]: the injectable get/set collaborator used to memoize tokens
//   - [AudioFeatures]: one record from the ReccoBeats batch audio-features endpoint
//
// Nothing here is persisted directly; the repositories package stores [Token] values for the SQLite cache.
package models
