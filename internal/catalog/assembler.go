package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/sync/errgroup"

	"retagger/internal/shared"
	"retagger/internal/tags"
)

// ErrEmptyQuery is reported when a file has no title, album or artist and
// the file-name fallback is disabled.
var ErrEmptyQuery = errors.New("nothing to search for")

// ErrNoResults describes a search that completed without hits. Fetch does
// not return it; callers use it to report the Unsuccessful state.
var ErrNoResults = errors.New("no match found")

// Query is what the assembler searches for.
type Query struct {
	Title  string
	Album  string
	Artist string
	// FilePath is searched by base name when the three terms are empty and
	// UseFilename is set.
	FilePath    string
	UseFilename bool
}

// Result is the outcome of one Fetch. Err is set on transport failure or an
// empty query; zero Hits with a nil Err means the catalog had no match.
type Result struct {
	Query   string
	Hits    []Hit
	Sources []tags.CandidateSource
	Payload Payload
	Err     error
}

// Found reports whether the search returned at least one hit.
func (r Result) Found() bool {
	return r.Err == nil && len(r.Hits) > 0
}

// BuildQuery formats the advanced search string for the given terms.
func BuildQuery(title, album, artist string) string {
	return fmt.Sprintf(`track:"%s" album:"%s" artist:"%s"`, escapeTerm(title), escapeTerm(album), escapeTerm(artist))
}

// BuildFallbackQuery drops the artist from BuildQuery.
func BuildFallbackQuery(title, album string) string {
	return fmt.Sprintf(`track:"%s" album:"%s"`, escapeTerm(title), escapeTerm(album))
}

func escapeTerm(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), `"`, `\"`)
}

// Assembler runs a search and the five follow-up lookups for its first hit.
type Assembler struct {
	client Client
	cache  *AlbumCache
	debug  bool
}

// NewAssembler creates an Assembler. cache may be nil.
func NewAssembler(client Client, cache *AlbumCache, debug bool) *Assembler {
	return &Assembler{client: client, cache: cache, debug: debug}
}

// Fetch searches the catalog for q and assembles the payload of the first
// hit. It never returns an error of its own: failures are carried in the
// Result.
func (a *Assembler) Fetch(ctx context.Context, q Query) Result {
	title, album, artist := strings.TrimSpace(q.Title), strings.TrimSpace(q.Album), strings.TrimSpace(q.Artist)

	var queries []string
	switch {
	case title != "" || album != "" || artist != "":
		queries = append(queries, BuildQuery(title, album, artist))
		if title != "" || album != "" {
			queries = append(queries, BuildFallbackQuery(title, album))
		}
	case q.UseFilename && q.FilePath != "":
		queries = append(queries, shared.BaseNameWithoutExt(q.FilePath))
	default:
		return Result{Err: ErrEmptyQuery}
	}

	var res Result
	for _, query := range queries {
		res.Query = query
		shared.DebugPrint(a.debug, "searching catalog: %s", query)
		hits, err := a.client.Search(ctx, query)
		if err != nil {
			res.Err = &FetchError{Query: query, Err: err}
			return res
		}
		if len(hits) > 0 {
			res.Hits = hits
			break
		}
	}
	if len(res.Hits) == 0 {
		return res
	}

	res.Sources = Sources(res.Hits, artist, title)
	primary := res.Hits[0]
	res.Payload = a.fetchPayload(ctx, primary.ID, primary.AlbumID)
	return res
}

// FetchByID assembles the payload for a track id chosen by the caller. It
// fails only when none of the lookups succeeded.
func (a *Assembler) FetchByID(ctx context.Context, id ID) (Payload, error) {
	if id == "" {
		return Payload{}, fmt.Errorf("empty track id")
	}
	p := a.fetchPayload(ctx, id, "")
	if p.Empty() {
		if err := p.Failures[PartTrack]; err != nil {
			return p, fmt.Errorf("failed to fetch track %s: %w", id, err)
		}
		return p, fmt.Errorf("no data for track %s", id)
	}
	return p, nil
}

// fetchPayload runs the lookups concurrently. When albumID is unknown the
// album lookups wait for the track detail to name it.
func (a *Assembler) fetchPayload(ctx context.Context, trackID, albumID ID) Payload {
	var (
		p                                Payload
		trackErr, extTrackErr, lyricsErr error
		albumErr, extAlbumErr            error
		albumFetched                     bool
	)

	var g errgroup.Group
	g.Go(func() error {
		p.Track, trackErr = a.client.Track(ctx, trackID)
		return nil
	})
	g.Go(func() error {
		p.ExtendedTrack, extTrackErr = a.client.ExtendedTrack(ctx, trackID)
		return nil
	})
	g.Go(func() error {
		p.Lyrics, lyricsErr = a.client.Lyrics(ctx, trackID)
		return nil
	})
	if albumID != "" {
		albumFetched = true
		g.Go(func() error {
			p.Album, albumErr = a.album(ctx, albumID)
			return nil
		})
		g.Go(func() error {
			p.ExtendedAlbum, extAlbumErr = a.extendedAlbum(ctx, albumID)
			return nil
		})
	}
	_ = g.Wait()

	if !albumFetched && p.Track != nil && p.Track.AlbumID != "" {
		albumID = p.Track.AlbumID
		albumFetched = true
		var ag errgroup.Group
		ag.Go(func() error {
			p.Album, albumErr = a.album(ctx, albumID)
			return nil
		})
		ag.Go(func() error {
			p.ExtendedAlbum, extAlbumErr = a.extendedAlbum(ctx, albumID)
			return nil
		})
		_ = ag.Wait()
	}

	for part, err := range map[Part]error{
		PartTrack:         trackErr,
		PartExtendedTrack: extTrackErr,
		PartLyrics:        lyricsErr,
		PartAlbum:         albumErr,
		PartExtendedAlbum: extAlbumErr,
	} {
		if err != nil {
			p.fail(part, err)
		}
	}
	if !albumFetched {
		p.fail(PartAlbum, errors.New("album id unknown"))
	}
	return p
}

func (a *Assembler) album(ctx context.Context, id ID) (*Album, error) {
	if a.cache != nil {
		if album := a.cache.Album(id); album != nil {
			return album, nil
		}
	}
	album, err := a.client.Album(ctx, id)
	if err == nil && album != nil && a.cache != nil {
		a.cache.SetAlbum(id, album)
	}
	return album, err
}

func (a *Assembler) extendedAlbum(ctx context.Context, id ID) (*ExtendedAlbum, error) {
	if a.cache != nil {
		if album := a.cache.ExtendedAlbum(id); album != nil {
			return album, nil
		}
	}
	album, err := a.client.ExtendedAlbum(ctx, id)
	if err == nil && album != nil && a.cache != nil {
		a.cache.SetExtendedAlbum(id, album)
	}
	return album, err
}

// Sources projects hits into candidate sources. Score is the Jaro-Winkler
// similarity between "artist title" of the hit and of the local file; it is
// informational and the order of hits is kept.
func Sources(hits []Hit, artist, title string) []tags.CandidateSource {
	local := normalise(artist + " " + title)
	metric := metrics.NewJaroWinkler()
	metric.CaseSensitive = false

	out := make([]tags.CandidateSource, 0, len(hits))
	for _, h := range hits {
		src := tags.CandidateSource{
			ID:       string(h.ID),
			Title:    h.Title,
			Artist:   h.Artist,
			Album:    h.Album,
			Cover:    h.Cover,
			Duration: h.Duration,
			Link:     h.Link,
		}
		if local != "" {
			src.Score = strutil.Similarity(local, normalise(h.Artist+" "+h.Title), metric)
		}
		out = append(out, src)
	}
	return out
}

func normalise(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
