// Package repositories implements SQLite persistence for cached upstream credentials.
//
// Key Implementations:
//   - [TokenRepository] : [models.TokenCache] backed by the tokens table, with purge and clear helpers
//
// Tokens are keyed by client ID so a process restart can reuse a still-valid bearer token
// instead of minting a new one.
package repositories
