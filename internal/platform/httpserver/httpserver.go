package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Body read and write deadlines stay generous
// because document uploads travel as JSON payloads; the header timeout is
// what protects against slowloris-style clients.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       time.Minute,
	}
}
