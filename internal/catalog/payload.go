package catalog

import "fmt"

// Part names one of the five lookups that make up a Payload.
type Part string

const (
	PartTrack         Part = "track"
	PartExtendedTrack Part = "extended track"
	PartAlbum         Part = "album"
	PartExtendedAlbum Part = "extended album"
	PartLyrics        Part = "lyrics"
)

// Payload is the union of the lookups that succeeded for one match. Each
// part is optional on its own.
type Payload struct {
	Track         *Track
	ExtendedTrack *ExtendedTrack
	Album         *Album
	ExtendedAlbum *ExtendedAlbum
	Lyrics        *Lyrics

	// Failures holds the error of every lookup that did not succeed.
	Failures map[Part]error
}

// Empty reports whether no lookup succeeded.
func (p Payload) Empty() bool {
	return p.Track == nil && p.ExtendedTrack == nil && p.Album == nil && p.ExtendedAlbum == nil && p.Lyrics == nil
}

func (p *Payload) fail(part Part, err error) {
	if p.Failures == nil {
		p.Failures = make(map[Part]error)
	}
	p.Failures[part] = err
}

// FetchError wraps a search failure with the query that caused it.
type FetchError struct {
	Query string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("catalog search %q failed: %v", e.Query, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
