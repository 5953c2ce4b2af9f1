// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sink writes exported content files under a single output root.
// Directories are created one level at a time: a missing ancestor is an
// error, never silently created.
package sink

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Sink is the output root.
type Sink struct {
	root string
}

// New returns a Sink rooted at root. Nothing is created until Init or Dir.
func New(root string) *Sink {
	return &Sink{root: root}
}

// Root returns the output root path.
func (s *Sink) Root() string {
	return s.root
}

// Init creates the output root if it does not exist. The root's parent
// must already exist.
func (s *Sink) Init() error {
	return mkdir(s.root)
}

// Dir creates (if absent) and returns the named directory directly under
// the root.
func (s *Sink) Dir(name string) (Dir, error) {
	d := Dir{path: filepath.Join(s.root, name)}
	if err := mkdir(d.path); err != nil {
		return Dir{}, err
	}
	return d, nil
}

// Dir is one output directory.
type Dir struct {
	path string
}

// Path returns the directory's filesystem path.
func (d Dir) Path() string {
	return d.path
}

// Sub creates (if absent) and returns a directory nested in d.
func (d Dir) Sub(name string) (Dir, error) {
	sub := Dir{path: filepath.Join(d.path, name)}
	if err := mkdir(sub.path); err != nil {
		return Dir{}, err
	}
	return sub, nil
}

// Write stores content in the file name inside d, truncating any file
// already there. It returns the written path.
func (d Dir) Write(name, content string) (string, error) {
	path := filepath.Join(d.path, name)
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func mkdir(path string) error {
	err := os.Mkdir(path, dirPerm)
	if err == nil || errors.Is(err, fs.ErrExist) {
		if info, statErr := os.Stat(path); statErr == nil && !info.IsDir() {
			return fmt.Errorf("creating directory %s: not a directory", path)
		}
		return nil
	}
	return fmt.Errorf("creating directory %s: %w", path, err)
}
