package artifact

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	// Packages
	agentface "github.com/atagle123/AgentFace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Dir stores artifacts in a local directory, one subdirectory per session
type Dir struct {
	root string
}

var _ Store = (*Dir)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewDir returns a store rooted at path, creating the directory
func NewDir(path string) (*Dir, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, agentface.ErrBadParameter.With(err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	}
	return &Dir{root: root}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Root returns the directory of the store
func (d *Dir) Root() string {
	return d.root
}

// Put writes the object to a temporary file which replaces the object when
// complete
func (d *Dir) Put(ctx context.Context, session, name, contentType string, r io.Reader) (*Object, error) {
	if err := validate(session, name); err != nil {
		return nil, err
	}
	dir := filepath.Join(d.root, session)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, &contextReader{ctx: ctx, r: r}); err != nil {
		tmp.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, agentface.ErrIOFailure.With(err)
	}
	if err := tmp.Close(); err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	}
	return d.stat(session, name)
}

// Open returns the file of an object
func (d *Dir) Open(_ context.Context, session, name string) (io.ReadCloser, *Object, error) {
	if err := validate(session, name); err != nil {
		return nil, nil, err
	}
	object, err := d.stat(session, name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(d.root, session, name))
	if err != nil {
		return nil, nil, agentface.ErrIOFailure.With(err)
	}
	return f, object, nil
}

// List returns the objects of a session, newest first. An unknown session
// has no objects.
func (d *Dir) List(_ context.Context, session string) ([]*Object, error) {
	if err := validate(session, "-"); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(d.root, session))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	}

	var result []*Object
	for _, entry := range entries {
		if !entry.Type().IsRegular() || entry.Name()[0] == '.' {
			continue
		}
		object, err := d.stat(session, entry.Name())
		if err != nil {
			continue
		}
		result = append(result, object)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Modified.After(result[j].Modified)
	})
	return result, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (d *Dir) stat(session, name string) (*Object, error) {
	info, err := os.Stat(filepath.Join(d.root, session, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, agentface.ErrNotFound.Withf("%s/%s", session, name)
	} else if err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	} else if !info.Mode().IsRegular() {
		return nil, agentface.ErrNotFound.Withf("%s/%s", session, name)
	}
	return &Object{
		Session:     session,
		Name:        name,
		Size:        info.Size(),
		ContentType: ContentType(name),
		Modified:    info.ModTime(),
	}, nil
}

// contextReader stops a copy when the context is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
