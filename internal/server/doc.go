// Package server provides HTTP routing, middleware, error normalization and static asset serving for the proxy.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers [http.ServeMux] method patterns such as "GET /api/spotify/tracks/{id}".
//
// # API Handler
//
// [APIHandler] serves the token, track, artist, audio-features and health routes under a prefix
// (default [DefaultPrefix]). Each route is a [HandlerFunc] returning a body or an error; the adapter
// writes the body as JSON (raw upstream documents byte for byte) or converts the error to an [Envelope].
//
// # Error Normalization
//
// normalize is the single translation point from an error to the wire envelope
// {error, message, status}. A [Failure] carries its own status and code and passes through unchanged.
// Sentinel errors from the shared package map through one table. Everything else is a 500 INTERNAL_ERROR.
//
// # Static Assets
//
// [StaticHandler] owns the "/" pattern, so every path not claimed by an API route resolves to a file
// or to index.html. Non-GET requests that reach it get a 404 envelope.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
