// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - auth: Validates the X-API-Key header against the configured key. An empty key
//     disables the check; path prefixes such as /swagger can be skipped.
//   - rayid: Assigns a Request ID (RayID) to every incoming request, stored in the
//     "ray_id" local and echoed in the X-Ray-ID response header for tracing.
//
// These middleware components are designed to be registered globally or per-route group
// in the main application setup.
package middleware
