// Package services implements the upstream side of the proxy: token issuance, Spotify catalog lookups and
// ReccoBeats audio-feature lookups.
//
// # Token Broker
//
// [TokenBroker] performs the OAuth2 client-credentials exchange against the Spotify accounts service using
// [clientcredentials.Config]. Tokens are memoized through an injected [models.TokenCache]:
//   - [MemoryTokenCache] : process-wide map, the default
//   - [NoopTokenCache] : always mints a fresh token
//   - repositories.TokenRepository : SQLite, survives restarts
//
// # Spotify
//
// [SpotifyService] performs one authenticated GET per lookup and never retries. Raw response bodies are
// returned unmodified so the HTTP layer can pass them through.
//
// # ReccoBeats
//
// [ReccoBeatsService] reads audio features through a [Fetcher], which retries only on 429 responses
// (honoring Retry-After, otherwise exponential backoff) and bounds every attempt with a timeout.
//
// # Error Handling
//
// Services wrap sentinel errors from the shared package:
//   - [shared.ErrMissingCredentials] : client id or secret is empty
//   - [shared.ErrAuthFailed] : the accounts service rejected the exchange
//   - [shared.ErrTrackNotFound], [shared.ErrArtistNotFound] : Spotify returned 404
//   - [shared.ErrAPIRequest] : any other non-success Spotify status
//   - [shared.ErrAudioFeaturesNotFound], [shared.ErrRateLimited], [shared.ErrUpstreamServer], [shared.ErrTimeout] : ReccoBeats outcomes
//
// Anything else (transport failures, malformed bodies) is returned unclassified.
package services
