package deezer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"retagger/internal/catalog"
	"retagger/internal/shared"
)

var _ catalog.Client = (*Client)(nil)

// Search runs a track search and returns up to ten hits in Deezer's
// ranking order.
func (c *Client) Search(ctx context.Context, query string) ([]catalog.Hit, error) {
	var resp searchResponse
	err := c.get(ctx, "search", []shared.QueryParam{
		{Name: "q", Value: query},
		{Name: "limit", Value: strconv.Itoa(searchLimit)},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to search tracks: %w", err)
	}

	hits := make([]catalog.Hit, 0, len(resp.Data))
	for _, t := range resp.Data {
		hits = append(hits, catalog.Hit{
			ID:       catalog.ID(t.ID),
			Title:    t.Title,
			Link:     t.Link,
			Duration: t.Duration,
			Artist:   t.Artist.Name,
			Album:    t.Album.Title,
			AlbumID:  catalog.ID(t.Album.ID),
			Cover:    firstNonEmpty(t.Album.CoverXL, t.Album.Cover),
		})
	}
	return hits, nil
}

// Track retrieves the public track detail
func (c *Client) Track(ctx context.Context, id catalog.ID) (*catalog.Track, error) {
	var resp trackResponse
	if err := c.get(ctx, "track/"+string(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", id, err)
	}
	return &catalog.Track{
		ID:            catalog.ID(resp.ID),
		Title:         resp.Title,
		ArtistName:    resp.Artist.Name,
		AlbumID:       catalog.ID(resp.Album.ID),
		AlbumTitle:    resp.Album.Title,
		TrackPosition: resp.TrackPosition,
		DiskNumber:    resp.DiskNumber,
		ReleaseDate:   resp.ReleaseDate,
		ISRC:          resp.ISRC,
		BPM:           resp.BPM,
		Gain:          resp.Gain,
	}, nil
}

// ExtendedTrack retrieves the artist credits and role contributors through
// the gateway.
func (c *Client) ExtendedTrack(ctx context.Context, id catalog.ID) (*catalog.ExtendedTrack, error) {
	var song gwSong
	if err := c.gateway(ctx, "song.getData", map[string]string{"sng_id": string(id)}, &song); err != nil {
		return nil, fmt.Errorf("failed to get extended track %s: %w", id, err)
	}

	ext := &catalog.ExtendedTrack{
		ID:           id,
		Contributors: map[string][]string{},
	}
	for _, a := range song.Artists {
		ext.Artists = append(ext.Artists, catalog.Contributor{Name: a.Name, Order: int(a.Order)})
	}
	// SNG_CONTRIBUTORS is an empty array when the song has no credits.
	var roles map[string][]string
	if len(song.Contributors) > 0 && json.Unmarshal(song.Contributors, &roles) == nil {
		for role, names := range roles {
			ext.Contributors[role] = names
		}
	}
	return ext, nil
}

// Album retrieves the public album detail
func (c *Client) Album(ctx context.Context, id catalog.ID) (*catalog.Album, error) {
	var resp albumResponse
	if err := c.get(ctx, "album/"+string(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get album %s: %w", id, err)
	}
	album := &catalog.Album{
		ID:          catalog.ID(resp.ID),
		Title:       resp.Title,
		Artist:      resp.Artist.Name,
		Label:       resp.Label,
		UPC:         resp.UPC,
		ReleaseDate: resp.ReleaseDate,
		Cover:       firstNonEmpty(resp.CoverXL, resp.Cover),
	}
	for _, g := range resp.Genres.Data {
		album.Genres = append(album.Genres, g.Name)
	}
	return album, nil
}

// ExtendedAlbum retrieves copyright and track/disc counts through the
// gateway.
func (c *Client) ExtendedAlbum(ctx context.Context, id catalog.ID) (*catalog.ExtendedAlbum, error) {
	var alb gwAlbum
	if err := c.gateway(ctx, "album.getData", map[string]string{"alb_id": string(id)}, &alb); err != nil {
		return nil, fmt.Errorf("failed to get extended album %s: %w", id, err)
	}
	return &catalog.ExtendedAlbum{
		ID:                  id,
		Copyright:           alb.Copyright,
		TrackCount:          int(alb.TrackCount),
		DiscCount:           int(alb.DiscCount),
		OriginalReleaseDate: alb.OriginalReleaseDate,
	}, nil
}

// Lyrics retrieves plain and synchronised lyrics through the gateway.
// Sync entries without a timestamp are kept; they are the blank spacer
// lines between verses.
func (c *Client) Lyrics(ctx context.Context, id catalog.ID) (*catalog.Lyrics, error) {
	var raw gwLyrics
	if err := c.gateway(ctx, "song.getLyrics", map[string]string{"sng_id": string(id)}, &raw); err != nil {
		return nil, fmt.Errorf("failed to get lyrics %s: %w", id, err)
	}
	lyrics := &catalog.Lyrics{Text: raw.Text}
	for _, l := range raw.Sync {
		lyrics.Sync = append(lyrics.Sync, catalog.SyncLine{Timestamp: l.Timestamp, Line: l.Line})
	}
	return lyrics, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
