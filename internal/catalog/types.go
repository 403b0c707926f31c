// Package catalog describes the remote music catalog the tagger enriches
// files from, and assembles its independent lookups into one payload.
package catalog

import (
	"context"
	"errors"
)

// ID is a catalog identifier. Catalogs that use numbers store them in
// decimal form.
type ID string

// Hit is one search result.
type Hit struct {
	ID       ID     `json:"id"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Duration int    `json:"duration"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	AlbumID  ID     `json:"albumId"`
	Cover    string `json:"cover"`
}

// Track is the public track detail.
type Track struct {
	ID            ID      `json:"id"`
	Title         string  `json:"title"`
	ArtistName    string  `json:"artistName"`
	AlbumID       ID      `json:"albumId"`
	AlbumTitle    string  `json:"albumTitle"`
	TrackPosition int     `json:"trackPosition"`
	DiskNumber    int     `json:"diskNumber"`
	ReleaseDate   string  `json:"releaseDate"`
	ISRC          string  `json:"isrc"`
	BPM           float64 `json:"bpm"`
	Gain          float64 `json:"gain"`
}

// Contributor is an artist credited on a track together with its declared
// position in the credits.
type Contributor struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// ExtendedTrack is the internal track detail: the full artist credits and
// the contributors grouped by role ("composer", "producer", ...).
type ExtendedTrack struct {
	ID           ID                  `json:"id"`
	Artists      []Contributor       `json:"artists"`
	Contributors map[string][]string `json:"contributors"`
}

// Album is the public album detail.
type Album struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Artist      string   `json:"artist"`
	Genres      []string `json:"genres"`
	Label       string   `json:"label"`
	UPC         string   `json:"upc"`
	ReleaseDate string   `json:"releaseDate"`
	Cover       string   `json:"cover"`
}

// ExtendedAlbum is the internal album detail. OriginalReleaseDate is empty
// when the catalog does not know it.
type ExtendedAlbum struct {
	ID                  ID     `json:"id"`
	Copyright           string `json:"copyright"`
	TrackCount          int    `json:"trackCount"`
	DiscCount           int    `json:"discCount"`
	OriginalReleaseDate string `json:"originalReleaseDate"`
}

// SyncLine is one timed lyrics line. Timestamp is already formatted, e.g.
// "[00:12.34]".
type SyncLine struct {
	Timestamp string `json:"timestamp"`
	Line      string `json:"line"`
}

// Lyrics holds plain and synchronised lyrics; either may be empty.
type Lyrics struct {
	Text string     `json:"text"`
	Sync []SyncLine `json:"sync"`
}

// ErrUnsupported is returned by clients for lookups their catalog cannot
// answer.
var ErrUnsupported = errors.New("lookup not supported by this catalog")

// Client is the read-only catalog contract. Every call is independent and
// may fail on its own.
type Client interface {
	Search(ctx context.Context, query string) ([]Hit, error)
	Track(ctx context.Context, id ID) (*Track, error)
	ExtendedTrack(ctx context.Context, id ID) (*ExtendedTrack, error)
	Album(ctx context.Context, id ID) (*Album, error)
	ExtendedAlbum(ctx context.Context, id ID) (*ExtendedAlbum, error)
	Lyrics(ctx context.Context, id ID) (*Lyrics, error)
}
