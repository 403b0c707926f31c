package catalog

import "sync"

// AlbumCache keeps album lookups for the lifetime of a batch, since tracks of
// the same album all ask for the same album id.
type AlbumCache struct {
	albums   map[ID]*Album
	extended map[ID]*ExtendedAlbum
	mu       sync.RWMutex
}

// NewAlbumCache creates an empty cache.
func NewAlbumCache() *AlbumCache {
	return &AlbumCache{
		albums:   make(map[ID]*Album),
		extended: make(map[ID]*ExtendedAlbum),
	}
}

// Album returns the cached album detail or nil.
func (c *AlbumCache) Album(id ID) *Album {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.albums[id]
}

// SetAlbum stores an album detail.
func (c *AlbumCache) SetAlbum(id ID, album *Album) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.albums[id] = album
}

// ExtendedAlbum returns the cached extended album detail or nil.
func (c *AlbumCache) ExtendedAlbum(id ID) *ExtendedAlbum {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.extended[id]
}

// SetExtendedAlbum stores an extended album detail.
func (c *AlbumCache) SetExtendedAlbum(id ID, album *ExtendedAlbum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extended[id] = album
}

// Clear drops every cached entry.
func (c *AlbumCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.albums = make(map[ID]*Album)
	c.extended = make(map[ID]*ExtendedAlbum)
}

// Len is the number of cached album details.
func (c *AlbumCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.albums)
}
