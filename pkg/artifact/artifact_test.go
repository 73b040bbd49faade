package artifact_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	artifact "github.com/atagle123/AgentFace/pkg/artifact"
	assert "github.com/stretchr/testify/assert"
)

func Test_artifact_001(t *testing.T) {
	assert := assert.New(t)
	store, err := artifact.New(context.Background(), t.TempDir())
	assert.NoError(err)

	object, err := store.Put(context.Background(), "s1", "doc.pdf", "", strings.NewReader("%PDF-1.4"))
	assert.NoError(err)
	assert.Equal("s1", object.Session)
	assert.Equal("doc.pdf", object.Name)
	assert.Equal(int64(8), object.Size)
	assert.Equal("application/pdf", object.ContentType)

	r, object, err := store.Open(context.Background(), "s1", "doc.pdf")
	assert.NoError(err)
	defer r.Close()
	data, err := io.ReadAll(r)
	assert.NoError(err)
	assert.Equal("%PDF-1.4", string(data))
	assert.Equal(int64(8), object.Size)

	_, _, err = store.Open(context.Background(), "s1", "missing.pdf")
	assert.ErrorIs(err, agentface.ErrNotFound)
	_, _, err = store.Open(context.Background(), "s2", "doc.pdf")
	assert.ErrorIs(err, agentface.ErrNotFound)
}

func Test_artifact_002(t *testing.T) {
	assert := assert.New(t)
	store, err := artifact.NewDir(t.TempDir())
	assert.NoError(err)

	for _, name := range []string{"", ".", "..", "../x", "a/b", `a\b`} {
		_, err := store.Put(context.Background(), "s1", name, "", strings.NewReader("x"))
		assert.ErrorIs(err, agentface.ErrBadParameter, name)
		_, err = store.Put(context.Background(), name, "x.txt", "", strings.NewReader("x"))
		assert.ErrorIs(err, agentface.ErrBadParameter, name)
	}
}

func Test_artifact_003(t *testing.T) {
	assert := assert.New(t)
	store, err := artifact.NewDir(t.TempDir())
	assert.NoError(err)

	objects, err := store.List(context.Background(), "empty")
	assert.NoError(err)
	assert.Empty(objects)

	now := time.Now()
	for i, name := range []string{"old.mp4", "new.mp4", "mid.mp4"} {
		_, err := store.Put(context.Background(), "s1", name, "", strings.NewReader(name))
		assert.NoError(err)
		age := map[int]time.Duration{0: 2 * time.Hour, 1: 0, 2: time.Hour}[i]
		assert.NoError(os.Chtimes(filepath.Join(store.Root(), "s1", name), now.Add(-age), now.Add(-age)))
	}

	objects, err = store.List(context.Background(), "s1")
	assert.NoError(err)
	names := []string{}
	for _, object := range objects {
		names = append(names, object.Name)
	}
	assert.Equal([]string{"new.mp4", "mid.mp4", "old.mp4"}, names)
	assert.Equal("video/mp4", objects[0].ContentType)
}

func Test_artifact_004(t *testing.T) {
	assert := assert.New(t)
	store, err := artifact.NewDir(t.TempDir())
	assert.NoError(err)

	path := filepath.Join(t.TempDir(), "scene_combined.mp4")
	assert.NoError(os.WriteFile(path, []byte("video"), 0o644))
	object, err := artifact.PutFile(context.Background(), store, "s1", path)
	assert.NoError(err)
	assert.Equal("scene_combined.mp4", object.Name)
	assert.Equal(int64(5), object.Size)

	_, err = artifact.PutFile(context.Background(), store, "s1", filepath.Join(t.TempDir(), "missing.mp4"))
	assert.ErrorIs(err, agentface.ErrNotFound)
}

func Test_artifact_005(t *testing.T) {
	bucket := os.Getenv("GCS_BUCKET")
	if bucket == "" {
		t.Skip("GCS_BUCKET not set")
	}
	assert := assert.New(t)
	store, err := artifact.New(context.Background(), "gs://"+bucket+"/test")
	if !assert.NoError(err) {
		t.SkipNow()
	}
	object, err := store.Put(context.Background(), "s1", "hello.txt", "", strings.NewReader("hello"))
	assert.NoError(err)
	assert.Equal("hello.txt", object.Name)

	r, _, err := store.Open(context.Background(), "s1", "hello.txt")
	assert.NoError(err)
	defer r.Close()
	data, _ := io.ReadAll(r)
	assert.Equal("hello", string(data))
}
