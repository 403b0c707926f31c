// Package library owns the in-memory set of loaded tracks.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrNotFound is returned when no track is loaded for a path.
	ErrNotFound = errors.New("track not found")
	// ErrDuplicate is returned by Add when the path is already loaded.
	ErrDuplicate = errors.New("cannot add duplicate file")
	// ErrNotDirectory is returned when a directory scan targets a non-directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrStale is returned by CompareAndReplace when the stored record
	// changed after the caller took its snapshot.
	ErrStale = errors.New("track changed since it was read")
)

// Collection is an ordered set of tracks keyed by path. It never holds two
// tracks with the same path. Callers only ever see copies; use Update to
// change a stored track in place.
type Collection struct {
	mu     sync.Mutex
	tracks []*Track
	loader TrackLoader
	gen    uint64
}

// NewCollection creates an empty collection that loads files with loader.
func NewCollection(loader TrackLoader) *Collection {
	return &Collection{loader: loader}
}

// NewCollectionFromDirectory loads every regular file directly inside dir.
func NewCollectionFromDirectory(dir string, loader TrackLoader) (*Collection, error) {
	c := NewCollection(loader)
	if _, err := c.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadDirectory replaces the contents of c with the regular files directly
// inside dir and returns how many were loaded. Files the loader rejects are
// skipped. It fails only if dir is not an existing directory.
func (c *Collection) LoadDirectory(dir string) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrNotDirectory, dir, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var loaded []*Track
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		t, err := c.loader.Load(path)
		if err != nil {
			continue
		}
		loaded = append(loaded, t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracks = c.tracks[:0]
	for _, t := range loaded {
		c.store(t)
	}
	return len(loaded), nil
}

func clean(path string) string {
	return filepath.Clean(path)
}

// indexOf must be called with c.mu held.
func (c *Collection) indexOf(path string) int {
	for i, t := range c.tracks {
		if t.Path == path {
			return i
		}
	}
	return -1
}

// store appends t, stamping a new generation. Must be called with c.mu held
// and only after checking the path is absent.
func (c *Collection) store(t *Track) {
	c.gen++
	t.Generation = c.gen
	c.tracks = append(c.tracks, t)
}

// swap replaces the track at i, stamping a new generation. Must be called
// with c.mu held.
func (c *Collection) swap(i int, t *Track) {
	c.gen++
	t.Generation = c.gen
	c.tracks[i] = t
}

func (c *Collection) load(path string) (*Track, error) {
	t, err := c.loader.Load(path)
	if err != nil {
		return nil, err
	}
	t.Path = path
	return t, nil
}

// Add loads path and appends it. It fails if path is already loaded.
func (c *Collection) Add(path string) error {
	path = clean(path)
	if c.Contains(path) {
		return fmt.Errorf("%w: %s", ErrDuplicate, path)
	}
	t, err := c.load(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(path) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, path)
	}
	c.store(t)
	return nil
}

// Replace reloads a loaded path from disk, resetting it to NotFetched.
func (c *Collection) Replace(path string) error {
	path = clean(path)
	if !c.Contains(path) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	t, err := c.load(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(path)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	c.swap(i, t)
	return nil
}

// Insert reloads path if it is loaded and adds it otherwise.
func (c *Collection) Insert(path string) error {
	path = clean(path)
	t, err := c.load(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(path); i >= 0 {
		c.swap(i, t)
		return nil
	}
	c.store(t)
	return nil
}

// Remove drops the track for path.
func (c *Collection) Remove(path string) error {
	path = clean(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(path)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	c.tracks = append(c.tracks[:i], c.tracks[i+1:]...)
	return nil
}

// Clear drops every track.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracks = nil
}

// Contains reports whether path is loaded.
func (c *Collection) Contains(path string) bool {
	path = clean(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexOf(path) >= 0
}

// Get returns a copy of the track for path.
func (c *Collection) Get(path string) (*Track, bool) {
	path = clean(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(path)
	if i < 0 {
		return nil, false
	}
	return c.tracks[i].Clone(), true
}

// Update runs fn on the stored track for path while holding the lock. fn
// must not block. If fn fails the track is left as it was.
func (c *Collection) Update(path string, fn func(*Track) error) error {
	path = clean(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(path)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	t := c.tracks[i].Clone()
	if err := fn(t); err != nil {
		return err
	}
	t.Path = path
	c.swap(i, t)
	return nil
}

// ReplaceByRecord swaps in a copy of t for the track with the same path.
func (c *Collection) ReplaceByRecord(t *Track) error {
	path := clean(t.Path)
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(path)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	next := t.Clone()
	next.Path = path
	c.swap(i, next)
	return nil
}

// CompareAndReplace is ReplaceByRecord that also requires the stored track
// to still have the generation t was copied at.
func (c *Collection) CompareAndReplace(t *Track) error {
	path := clean(t.Path)
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(path)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if c.tracks[i].Generation != t.Generation {
		return fmt.Errorf("%w: %s", ErrStale, path)
	}
	next := t.Clone()
	next.Path = path
	c.swap(i, next)
	return nil
}

// Rekey replaces the track at oldPath with t, which may carry a new path. A
// different track already stored under t.Path is dropped so the path stays
// unique.
func (c *Collection) Rekey(oldPath string, t *Track) error {
	oldPath = clean(oldPath)
	newPath := clean(t.Path)
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(oldPath)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, oldPath)
	}
	next := t.Clone()
	next.Path = newPath
	c.swap(i, next)
	if newPath != oldPath {
		for j := len(c.tracks) - 1; j >= 0; j-- {
			if j != i && c.tracks[j].Path == newPath {
				c.tracks = append(c.tracks[:j], c.tracks[j+1:]...)
			}
		}
	}
	return nil
}

// List returns copies of every track in order.
func (c *Collection) List() []*Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Track, len(c.tracks))
	for i, t := range c.tracks {
		out[i] = t.Clone()
	}
	return out
}

// Paths returns the loaded paths in order.
func (c *Collection) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.tracks))
	for i, t := range c.tracks {
		out[i] = t.Path
	}
	return out
}

// Len is the number of loaded tracks.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tracks)
}
