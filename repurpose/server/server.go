// Package server implements the web interface: a form to request a rewrite, a result page with
// the highlighted changes, and a JSON endpoint to compare two texts.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"repurpose.znkr.io/repurpose/purpose"
	"repurpose.znkr.io/repurpose/rewrite"
)

// State is everything a request needs. It's replaced as a whole.
type State struct {
	Catalog   *purpose.Catalog
	Completer rewrite.Completer // nil if no API key is configured
}

// Server serves the web interface via HTTP.
type Server struct {
	http    *http.Server
	handler *handler
	addr    string
	errc    chan error
}

// Run creates a new server and runs it in a new goroutine.
func Run(addr string, state *State) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("starting HTTP server: %v", err)
	}

	h, err := newHandler(state)
	if err != nil {
		l.Close()
		return nil, err
	}

	s := &Server{
		http: &http.Server{
			Handler: h,
		},
		handler: h,
		addr:    l.Addr().String(),
		errc:    make(chan error, 1),
	}

	go func() {
		if err := s.http.Serve(l); err != nil && err != http.ErrServerClosed {
			s.errc <- err
		}
	}()

	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.addr
}

// ReplaceCatalog replaces the catalog used for subsequent requests.
func (s *Server) ReplaceCatalog(cat *purpose.Catalog) {
	st := *s.handler.state.Load()
	st.Catalog = cat
	s.handler.state.Store(&st)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %v", err)
	}
	close(s.errc)
	return nil
}

// Error returns a channel to listen to errors while serving.
func (s *Server) Error() <-chan error {
	return s.errc
}
