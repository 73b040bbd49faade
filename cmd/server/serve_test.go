package main

import (
	"context"
	"io"
	"net/http"
	"testing"

	// Packages
	chi "github.com/go-chi/chi/v5"
	assert "github.com/stretchr/testify/assert"
)

func Test_serve_001(t *testing.T) {
	assert := assert.New(t)

	router := chi.NewRouter()
	router.Route(apiPrefix, func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		})
	})

	cmd := HTTP{}
	server, err := cmd.server("127.0.0.1:0", nil, router)
	if !assert.NoError(err) {
		t.FailNow()
	}
	if !assert.NoError(server.Listen()) {
		t.FailNow()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- server.Run(ctx)
	}()

	response, err := http.Get("http://" + server.Addr() + apiPrefix + "/ping")
	if assert.NoError(err) {
		body, err := io.ReadAll(response.Body)
		response.Body.Close()
		assert.NoError(err)
		assert.Equal(http.StatusOK, response.StatusCode)
		assert.Equal("pong", string(body))
	}

	response, err = http.Get("http://" + server.Addr() + "/missing")
	if assert.NoError(err) {
		response.Body.Close()
		assert.Equal(http.StatusNotFound, response.StatusCode)
	}

	cancel()
	assert.NoError(<-done)
}
