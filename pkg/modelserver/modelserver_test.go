package modelserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	modelserver "github.com/atagle123/AgentFace/pkg/modelserver"
	ollama "github.com/atagle123/AgentFace/pkg/provider/ollama"
	client "github.com/mutablelogic/go-client"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SET-UP

// fakeOllama becomes ready after a number of version probes
type fakeOllama struct {
	sync.Mutex
	readyAfter int
	probes     int
	pulls      []string
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.Lock()
	defer f.Unlock()
	var response any
	switch r.URL.Path {
	case "/api/version":
		f.probes++
		if f.readyAfter < 0 || f.probes <= f.readyAfter {
			http.Error(w, "starting", http.StatusServiceUnavailable)
			return
		}
		response = map[string]any{"version": "0.12.3"}
	case "/api/tags":
		response = map[string]any{"models": []map[string]any{{"name": "nomic-embed-text"}}}
	case "/api/pull":
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.pulls = append(f.pulls, body.Model)
		response = map[string]any{"status": "success"}
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// restart makes the next version probe fail, as if the server went away
func (f *fakeOllama) restart() {
	f.Lock()
	defer f.Unlock()
	f.readyAfter = f.probes + 1
}

func (f *fakeOllama) state() (int, []string) {
	f.Lock()
	defer f.Unlock()
	return f.probes, append([]string(nil), f.pulls...)
}

func newClient(t *testing.T, fake *fakeOllama) *ollama.Client {
	t.Helper()
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)
	c, err := ollama.New(ts.URL+"/api", client.OptTimeout(5*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "ollama")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_modelserver_001(t *testing.T) {
	assert := assert.New(t)
	fake := &fakeOllama{}
	server, err := modelserver.New(newClient(t, fake),
		modelserver.WithExecutable("/nonexistent/ollama"),
		modelserver.WithModels("llama3.2:3b", "nomic-embed-text"),
	)
	assert.NoError(err)

	// A running server is used and only missing models are pulled
	assert.NoError(server.Start(context.Background()))
	assert.False(server.Started())
	probes, pulls := fake.state()
	assert.Equal([]string{"llama3.2:3b"}, pulls)

	// Starting again does nothing
	assert.NoError(server.Start(context.Background()))
	again, pulls := fake.state()
	assert.Equal(probes, again)
	assert.Len(pulls, 1)
	assert.NoError(server.Stop())
}

func Test_modelserver_002(t *testing.T) {
	assert := assert.New(t)
	fake := &fakeOllama{readyAfter: 3}
	server, err := modelserver.New(newClient(t, fake),
		modelserver.WithExecutable(script(t, "exec sleep 30")),
		modelserver.WithTimeout(10*time.Second, 10*time.Millisecond),
	)
	assert.NoError(err)

	// The process is started once and polled until ready
	assert.NoError(server.Start(context.Background()))
	assert.True(server.Started())
	probes, _ := fake.state()
	assert.Greater(probes, 3)

	assert.NoError(server.Start(context.Background()))
	assert.NoError(server.Stop())
	assert.False(server.Started())
}

func Test_modelserver_003(t *testing.T) {
	assert := assert.New(t)

	// The process exits before it is ready
	server, err := modelserver.New(newClient(t, &fakeOllama{readyAfter: -1}),
		modelserver.WithExecutable(script(t, "exit 1")),
		modelserver.WithTimeout(10*time.Second, 10*time.Millisecond),
	)
	assert.NoError(err)
	assert.ErrorIs(server.Start(context.Background()), agentface.ErrIOFailure)

	// The server never becomes ready
	server, err = modelserver.New(newClient(t, &fakeOllama{readyAfter: -1}),
		modelserver.WithExecutable(script(t, "exec sleep 30")),
		modelserver.WithTimeout(100*time.Millisecond, 10*time.Millisecond),
	)
	assert.NoError(err)
	assert.ErrorIs(server.Start(context.Background()), agentface.ErrIOFailure)
	assert.NoError(server.Stop())

	// The executable does not exist
	server, err = modelserver.New(newClient(t, &fakeOllama{readyAfter: -1}),
		modelserver.WithExecutable("/nonexistent/ollama"),
	)
	assert.NoError(err)
	assert.ErrorIs(server.Start(context.Background()), agentface.ErrNotFound)
}

func Test_modelserver_004(t *testing.T) {
	assert := assert.New(t)
	_, err := modelserver.New(nil)
	assert.ErrorIs(err, agentface.ErrBadParameter)

	c, _ := ollama.New("http://127.0.0.1:1/api")
	_, err = modelserver.New(c, modelserver.WithTimeout(0, time.Second))
	assert.ErrorIs(err, agentface.ErrBadParameter)
}

func Test_modelserver_005(t *testing.T) {
	assert := assert.New(t)
	fake := &fakeOllama{readyAfter: 1}
	count := filepath.Join(t.TempDir(), "count")
	server, err := modelserver.New(newClient(t, fake),
		modelserver.WithExecutable(script(t, "echo x >> "+count+"\nexec sleep 1")),
		modelserver.WithTimeout(10*time.Second, 10*time.Millisecond),
	)
	assert.NoError(err)
	defer server.Stop()

	// The process is started and later exits by itself
	assert.NoError(server.Start(context.Background()))
	assert.Eventually(func() bool { return !server.Started() }, 10*time.Second, 10*time.Millisecond)

	// The next Start spawns the process again
	fake.restart()
	assert.NoError(server.Start(context.Background()))
	assert.True(server.Started())
	assert.Eventually(func() bool {
		data, err := os.ReadFile(count)
		return err == nil && string(data) == "x\nx\n"
	}, 10*time.Second, 10*time.Millisecond)
}
