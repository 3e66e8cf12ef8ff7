package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
)

const tempPrefix = ".tagpack-"

// FileSystem stores objects as files below a root directory
type FileSystem struct {
	root string
}

// NewFileSystem creates root if needed and returns a store rooted there
func NewFileSystem(root string) (*FileSystem, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve storage directory", goerr.V("root", root))
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create storage directory", goerr.V("root", abs))
	}
	return &FileSystem{root: abs}, nil
}

// Root returns the directory objects are written below
func (s *FileSystem) Root() string {
	return s.root
}

// Put writes r to a temporary file next to the target and renames it into place,
// so readers never observe a partially written archive or descriptor
func (s *FileSystem) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	dst, err := s.path(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create directory", goerr.V("dir", dir))
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary file", goerr.V("dir", dir))
	}
	defer func() {
		_ = os.Remove(tmp.Name()) // no-op after a successful rename
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return goerr.Wrap(err, "failed to write object", goerr.V("key", key))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close object", goerr.V("key", key))
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return goerr.Wrap(err, "failed to set object permissions", goerr.V("key", key))
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return goerr.Wrap(err, "failed to move object into place", goerr.V("key", key))
	}

	return nil
}

// Get opens the file stored under key
func (s *FileSystem) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, goerr.Wrap(model.ErrNotFound, "object does not exist", goerr.V("key", key))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open object", goerr.V("key", key))
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, goerr.Wrap(err, "failed to stat object", goerr.V("key", key))
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, goerr.Wrap(model.ErrNotFound, "object is a directory", goerr.V("key", key))
	}

	return f, nil
}

// List returns keys beginning with prefix
func (s *FileSystem) List(ctx context.Context, prefix string) ([]string, error) {
	start := s.root
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		p, err := s.path(prefix[:i])
		if err != nil {
			return nil, err
		}
		start = p
	}

	var keys []string
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list objects", goerr.V("prefix", prefix))
	}

	sort.Strings(keys)
	return keys, nil
}

// path maps key onto the file system and rejects keys escaping the root
func (s *FileSystem) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", goerr.New("invalid object key", goerr.V("key", key))
	}

	p := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(p, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", goerr.New("object key escapes storage root", goerr.V("key", key))
	}
	return p, nil
}
