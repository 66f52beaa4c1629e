package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed = fmt.Errorf("authentication failed")

	// Primary upstream (Spotify) errors
	ErrAPIRequest     = fmt.Errorf("API request failed")
	ErrTrackNotFound  = fmt.Errorf("track not found")
	ErrArtistNotFound = fmt.Errorf("artist not found")

	// Secondary upstream (ReccoBeats) errors
	ErrAudioFeaturesNotFound = fmt.Errorf("audio features not found")
	ErrRateLimited           = fmt.Errorf("rate limit exceeded")
	ErrUpstreamServer        = fmt.Errorf("upstream server error")
	ErrTimeout               = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrCacheDisabled   = fmt.Errorf("token cache is not persistent")
)
