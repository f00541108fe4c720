// Package api provides the HTTP server for driving practice sessions and
// reading their projections.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8082")
	ListenAddr string
}
