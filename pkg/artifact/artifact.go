/*
artifact stores the files of a session: uploaded documents and generated
videos. Objects are addressed by session and name. A store is either a
local directory or a Google Cloud Storage bucket.
*/
package artifact

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Store holds session artifacts
type Store interface {
	// Put writes an object, replacing any existing object with the same name
	Put(ctx context.Context, session, name, contentType string, r io.Reader) (*Object, error)

	// Open returns a reader for an object. Returns ErrNotFound when the
	// object does not exist.
	Open(ctx context.Context, session, name string) (io.ReadCloser, *Object, error)

	// List returns the objects of a session, newest first
	List(ctx context.Context, session string) ([]*Object, error)
}

// Object describes a stored artifact
type Object struct {
	Session     string    `json:"session"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	Modified    time.Time `json:"modified"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	schemeGCS          = "gs://"
	defaultContentType = "application/octet-stream"
)

// Types which the system mime tables may not know
var contentTypes = map[string]string{
	".mp4": "video/mp4",
	".pdf": "application/pdf",
	".png": "image/png",
	".svg": "image/svg+xml",
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a store for a location, which is either a bucket URL of the
// form gs://bucket/prefix or a local directory
func New(ctx context.Context, location string) (Store, error) {
	if location == "" {
		return nil, agentface.ErrBadParameter.With("missing artifact location")
	}
	if strings.HasPrefix(location, schemeGCS) {
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(location, schemeGCS), "/")
		return NewBucket(ctx, bucket, prefix)
	}
	return NewDir(location)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// PutFile copies a local file into the store under its base name
func PutFile(ctx context.Context, store Store, session, path string) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, agentface.ErrNotFound.Withf("%q", path)
		}
		return nil, agentface.ErrIOFailure.With(err)
	}
	defer f.Close()
	name := filepath.Base(path)
	return store.Put(ctx, session, name, ContentType(name), f)
}

// ContentType returns the content type for a name from its extension
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, exists := contentTypes[ext]; exists {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return defaultContentType
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (o Object) String() string {
	return types.Stringify(o)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// validate checks a session or object name is a single path element
func validate(session, name string) error {
	for _, v := range []string{session, name} {
		switch {
		case v == "", v == ".", v == "..":
			return agentface.ErrBadParameter.Withf("invalid artifact name: %q", v)
		case strings.ContainsAny(v, `/\`):
			return agentface.ErrBadParameter.Withf("invalid artifact name: %q", v)
		}
	}
	return nil
}
