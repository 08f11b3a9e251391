// Package server holds the HTTP server configuration.
//
// The Config struct defines the listen port (3000 by default), the optional API key
// enforced by core/middleware/auth, and the graceful shutdown timeout used by the
// start command.
package server
