// Package catalogtest provides an in-memory catalog.Client for tests.
package catalogtest

import (
	"context"
	"errors"
	"sync"

	"retagger/internal/catalog"
)

// ErrNotFound is returned for ids the fake does not know.
var ErrNotFound = errors.New("not found")

// Client is a scripted catalog. Maps are keyed by id (or by query for
// SearchResults). Errors in the *Err maps win over data.
type Client struct {
	mu sync.Mutex

	SearchResults  map[string][]catalog.Hit
	SearchErr      error
	Tracks         map[catalog.ID]*catalog.Track
	ExtendedTracks map[catalog.ID]*catalog.ExtendedTrack
	Albums         map[catalog.ID]*catalog.Album
	ExtendedAlbums map[catalog.ID]*catalog.ExtendedAlbum
	LyricsByID     map[catalog.ID]*catalog.Lyrics
	Errs           map[catalog.Part]error

	Queries []string
	Calls   map[catalog.Part]int
}

// New returns an empty fake.
func New() *Client {
	return &Client{
		SearchResults:  make(map[string][]catalog.Hit),
		Tracks:         make(map[catalog.ID]*catalog.Track),
		ExtendedTracks: make(map[catalog.ID]*catalog.ExtendedTrack),
		Albums:         make(map[catalog.ID]*catalog.Album),
		ExtendedAlbums: make(map[catalog.ID]*catalog.ExtendedAlbum),
		LyricsByID:     make(map[catalog.ID]*catalog.Lyrics),
		Errs:           make(map[catalog.Part]error),
		Calls:          make(map[catalog.Part]int),
	}
}

func (c *Client) record(part catalog.Part) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls[part]++
	return c.Errs[part]
}

// CallCount returns how many times part was looked up.
func (c *Client) CallCount(part catalog.Part) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Calls[part]
}

// SearchQueries returns the queries seen so far.
func (c *Client) SearchQueries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.Queries...)
}

func (c *Client) Search(_ context.Context, query string) ([]catalog.Hit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Queries = append(c.Queries, query)
	if c.SearchErr != nil {
		return nil, c.SearchErr
	}
	return c.SearchResults[query], nil
}

func (c *Client) Track(_ context.Context, id catalog.ID) (*catalog.Track, error) {
	if err := c.record(catalog.PartTrack); err != nil {
		return nil, err
	}
	if t, ok := c.Tracks[id]; ok {
		return t, nil
	}
	return nil, ErrNotFound
}

func (c *Client) ExtendedTrack(_ context.Context, id catalog.ID) (*catalog.ExtendedTrack, error) {
	if err := c.record(catalog.PartExtendedTrack); err != nil {
		return nil, err
	}
	if t, ok := c.ExtendedTracks[id]; ok {
		return t, nil
	}
	return nil, ErrNotFound
}

func (c *Client) Album(_ context.Context, id catalog.ID) (*catalog.Album, error) {
	if err := c.record(catalog.PartAlbum); err != nil {
		return nil, err
	}
	if a, ok := c.Albums[id]; ok {
		return a, nil
	}
	return nil, ErrNotFound
}

func (c *Client) ExtendedAlbum(_ context.Context, id catalog.ID) (*catalog.ExtendedAlbum, error) {
	if err := c.record(catalog.PartExtendedAlbum); err != nil {
		return nil, err
	}
	if a, ok := c.ExtendedAlbums[id]; ok {
		return a, nil
	}
	return nil, ErrNotFound
}

func (c *Client) Lyrics(_ context.Context, id catalog.ID) (*catalog.Lyrics, error) {
	if err := c.record(catalog.PartLyrics); err != nil {
		return nil, err
	}
	if l, ok := c.LyricsByID[id]; ok {
		return l, nil
	}
	return nil, ErrNotFound
}

// AddTrack registers a full set of lookups for one track and returns the hit
// a search should yield for it.
func (c *Client) AddTrack(track catalog.Track, ext *catalog.ExtendedTrack, album *catalog.Album, extAlbum *catalog.ExtendedAlbum, lyrics *catalog.Lyrics) catalog.Hit {
	t := track
	c.Tracks[t.ID] = &t
	if ext != nil {
		c.ExtendedTracks[t.ID] = ext
	}
	if album != nil {
		c.Albums[t.AlbumID] = album
	}
	if extAlbum != nil {
		c.ExtendedAlbums[t.AlbumID] = extAlbum
	}
	if lyrics != nil {
		c.LyricsByID[t.ID] = lyrics
	}
	return catalog.Hit{
		ID:      t.ID,
		Title:   t.Title,
		Artist:  t.ArtistName,
		Album:   t.AlbumTitle,
		AlbumID: t.AlbumID,
	}
}
