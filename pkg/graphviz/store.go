package graphviz

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Store is the diagrams folder
type Store struct {
	sync.Mutex
	dir string
}

// Entry describes a saved diagram
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Created time.Time `json:"created"`
	Size    int64     `json:"size"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffixLength   = 6
	maxAttempts    = 8
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewStore returns a store rooted at dir, which is created if it does not
// exist
func NewStore(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, agentface.ErrBadParameter.Withf("diagrams folder %q: %v", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, agentface.ErrIOFailure.Withf("diagrams folder %q: %v", dir, err)
	}
	return &Store{dir: abs}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Dir returns the absolute path of the diagrams folder
func (s *Store) Dir() string {
	return s.dir
}

// Write saves data as <name>.<format>, replacing any existing file
func (s *Store) Write(name, format string, data []byte) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	s.Lock()
	defer s.Unlock()

	path := filepath.Join(s.dir, name+"."+format)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", agentface.ErrIOFailure.Withf("write %q: %v", name, err)
	}
	return path, nil
}

// Create saves data as <name>.<format> without replacing an existing file.
// When the name is taken a random suffix is appended.
func (s *Store) Create(name, format string, data []byte) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	s.Lock()
	defer s.Unlock()

	candidate := name
	for range maxAttempts {
		path := filepath.Join(s.dir, candidate+"."+format)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			suffix, err := gonanoid.Generate(suffixAlphabet, suffixLength)
			if err != nil {
				return "", agentface.ErrInternalServerError.With(err)
			}
			candidate = name + "_" + suffix
			continue
		} else if err != nil {
			return "", agentface.ErrIOFailure.Withf("create %q: %v", candidate, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", agentface.ErrIOFailure.Withf("write %q: %v", candidate, err)
		}
		if err := f.Close(); err != nil {
			return "", agentface.ErrIOFailure.Withf("close %q: %v", candidate, err)
		}
		return path, nil
	}
	return "", agentface.ErrConflict.Withf("no free file name for %q", name)
}

// List returns the regular files in the folder, newest first. A positive
// limit truncates the list.
func (s *Store) List(limit int) ([]Entry, error) {
	s.Lock()
	defer s.Unlock()

	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, agentface.ErrIOFailure.Withf("list diagrams: %v", err)
	}
	result := make([]Entry, 0, len(dirents))
	for _, dirent := range dirents {
		if !dirent.Type().IsRegular() {
			continue
		}
		info, err := dirent.Info()
		if err != nil {
			// Removed while listing
			continue
		}
		result = append(result, Entry{
			Name:    dirent.Name(),
			Path:    filepath.Join(s.dir, dirent.Name()),
			Created: info.ModTime(),
			Size:    info.Size(),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Created.Equal(result[j].Created) {
			return result[i].Name > result[j].Name
		}
		return result[i].Created.After(result[j].Created)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Delete removes a file from the folder. It returns ErrNotFound when the
// file does not exist and ErrBadParameter when it is not a regular file.
func (s *Store) Delete(filename string) error {
	if err := validName(filename); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()

	path := filepath.Join(s.dir, filename)
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return agentface.ErrNotFound.Withf("diagram %q", filename)
	} else if err != nil {
		return agentface.ErrIOFailure.Withf("stat %q: %v", filename, err)
	} else if !info.Mode().IsRegular() {
		return agentface.ErrBadParameter.Withf("'%s' is not a file.", filename)
	}
	if err := os.Remove(path); err != nil {
		return agentface.ErrIOFailure.Withf("delete %q: %v", filename, err)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// validName rejects names which would escape the folder
func validName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return agentface.ErrBadParameter.Withf("invalid file name %q", name)
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, os.PathSeparator):
		return agentface.ErrBadParameter.Withf("file name %q must not contain a path separator", name)
	}
	return nil
}
