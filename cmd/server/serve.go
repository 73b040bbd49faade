package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"time"

	// Packages
	logger "github.com/atagle123/AgentFace/pkg/logger"
	version "github.com/atagle123/AgentFace/pkg/version"
	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"
	httpserver "github.com/mutablelogic/go-server/pkg/httpserver"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// HTTP configures a server
type HTTP struct {
	// TLS server options
	TLS struct {
		ServerName string `name:"name" help:"TLS server name"`
		CertFile   string `name:"cert" help:"TLS certificate file"`
		KeyFile    string `name:"key" help:"TLS key file"`
	} `embed:"" prefix:"tls."`

	// RequestTimeout bounds reading a request and writing its response
	RequestTimeout time.Duration `name:"http-timeout" default:"30m" help:"Request and response timeout"`
}

// listener is the part of the go-server HTTP server which a command runs
type listener interface {
	Listen() error
	Addr() string
	Run(context.Context) error
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

// apiPrefix is the path under which stage servers register their operations
const apiPrefix = "/api"

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// middleware returns the request middleware which every server uses
func (globals *Globals) middleware() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		logger.Middleware(globals.log),
		middleware.Recoverer,
	}
}

// router returns a router with the request middleware
func (globals *Globals) router() chi.Router {
	r := chi.NewRouter()
	r.Use(globals.middleware()...)
	return r
}

// server creates a server on addr which routes every request to handler.
// The handler is mounted on the server's own router.
func (cmd *HTTP) server(addr string, tlsConfig *tls.Config, handler http.Handler) (listener, error) {
	var opts []httpserver.Opt
	if cmd.RequestTimeout > 0 {
		opts = append(opts, httpserver.WithReadTimeout(cmd.RequestTimeout), httpserver.WithWriteTimeout(cmd.RequestTimeout))
	}
	server, err := httpserver.New(addr, tlsConfig, opts...)
	if err != nil {
		return nil, err
	}
	server.Router().Handle("/", handler)
	return server, nil
}

// Serve runs the server on addr and blocks until the context is cancelled
func (cmd *HTTP) Serve(globals *Globals, name, addr string, handler http.Handler) error {
	// Create the TLS config if TLS options are provided
	var tlsConfig *tls.Config
	if cmd.TLS.CertFile != "" || cmd.TLS.KeyFile != "" {
		var pemData [][]byte
		if cmd.TLS.CertFile != "" {
			certData, err := os.ReadFile(cmd.TLS.CertFile)
			if err != nil {
				return fmt.Errorf("failed to read TLS certificate: %w", err)
			}
			pemData = append(pemData, certData)
		}
		if cmd.TLS.KeyFile != "" {
			keyData, err := os.ReadFile(cmd.TLS.KeyFile)
			if err != nil {
				return fmt.Errorf("failed to read TLS key: %w", err)
			}
			pemData = append(pemData, keyData)
		}
		var err error
		tlsConfig, err = httpserver.TLSConfig(cmd.TLS.ServerName, false, pemData...)
		if err != nil {
			return fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	// Create the server
	server, err := cmd.server(addr, tlsConfig, handler)
	if err != nil {
		return err
	}

	// Run the server
	globals.log.InfoContext(globals.ctx, "started", "server", name, "version", version.Version(), "addr", server.Addr())
	if err := server.Run(globals.ctx); err != nil {
		return err
	}
	globals.log.InfoContext(globals.ctx, "stopped", "server", name)
	return nil
}
