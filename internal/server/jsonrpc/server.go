// Package jsonrpc serves the vault engine over HTTP JSON-RPC 2.0.
package jsonrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Server is the HTTP JSON-RPC front end.
type Server struct {
	handler *Handler
	httpd   *http.Server
}

// NewServer builds a server listening on addr with the given timeouts.
func NewServer(handler *Handler, addr string, readTimeout, writeTimeout time.Duration) *Server {
	s := &Server{handler: handler}

	mux := http.NewServeMux()
	mux.Handle("/", s)
	mux.Handle("/rpc", s)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"vaultd"}`))
	})

	s.httpd = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.httpd.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpd.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpd.Addr
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, Response{
			JSONRPC: "2.0",
			Error:   &Error{Code: CodeParseError, Message: "parse error"},
		})
		return
	}
	if req.Method == "" {
		writeResponse(w, Response{
			JSONRPC: "2.0",
			Error:   &Error{Code: CodeInvalidRequest, Message: "method is required"},
			ID:      req.ID,
		})
		return
	}

	result, rpcErr := s.handler.Handle(req.Method, req.Params)
	if rpcErr != nil {
		writeResponse(w, Response{JSONRPC: "2.0", Error: rpcErr, ID: req.ID})
		return
	}
	writeResponse(w, Response{JSONRPC: "2.0", Result: result, ID: req.ID})
}

func writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
