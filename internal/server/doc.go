// Package server provides HTTP routing, middleware, and server lifecycle for the podshelf web interface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally and registers
// method-qualified patterns such as "GET /description/{podcast_id}".
//
// # Middleware
//
//   - [RequestLogger] tags each request with a uuid request id and logs method, path, status and duration.
//   - [RateLimit] keeps one token bucket per client address in an expiring cache.
//   - [CORS] allows cross-origin reads of the JSON API.
//   - [Recover] turns a handler panic into a 500.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Lifecycle
//
// [Serve] runs an [http.Server] until its context is cancelled and then shuts it down within [ShutdownTimeout].
package server
