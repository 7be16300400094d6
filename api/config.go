// Package api provides the HTTP API server for document ingestion and
// compliance checks.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8090")
	ListenAddr string

	// UploadDir is where uploaded document files are staged before
	// ingestion. Defaults to the system temp directory when empty.
	UploadDir string
}
