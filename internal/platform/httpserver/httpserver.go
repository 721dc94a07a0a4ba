package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server for the intake API. The write timeout leaves
// room for the eligibility pause, which holds the checking request open for
// several seconds; the router's own timeout middleware cuts handlers off
// well before it.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
