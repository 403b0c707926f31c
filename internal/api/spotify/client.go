// Package spotify implements catalog.Client on top of the Spotify Web API.
// Spotify has no internal credits or lyrics endpoints, so the extended
// lookups are derived from the public objects and Lyrics is unsupported.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"retagger/internal/catalog"
)

const (
	searchLimit = 10

	defaultRateLimit  = 200 * time.Millisecond
	defaultBurstLimit = 5
)

// ErrMissingCredentials is returned when no client id or secret is configured.
var ErrMissingCredentials = errors.New("spotify client id and secret are required")

// SpotifyClient holds the spotify client and other required fields
type SpotifyClient struct {
	ID     string
	Secret string

	mu          sync.Mutex
	client      *spotify.Client
	rateLimiter *rate.Limiter
}

var _ catalog.Client = (*SpotifyClient)(nil)

// NewSpotifyClient creates a client that authenticates with the client
// credentials flow on first use.
func NewSpotifyClient(id, secret string) *SpotifyClient {
	return &SpotifyClient{
		ID:          id,
		Secret:      secret,
		rateLimiter: rate.NewLimiter(rate.Every(defaultRateLimit), defaultBurstLimit),
	}
}

// NewSpotifyClientWith wraps an already authenticated API client.
func NewSpotifyClientWith(client *spotify.Client) *SpotifyClient {
	return &SpotifyClient{
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Every(defaultRateLimit), defaultBurstLimit),
	}
}

// Authenticate authenticates the client with the spotify api
func (s *SpotifyClient) Authenticate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticate(ctx)
}

func (s *SpotifyClient) authenticate(ctx context.Context) error {
	if s.ID == "" || s.Secret == "" {
		return ErrMissingCredentials
	}
	config := &clientcredentials.Config{
		ClientID:     s.ID,
		ClientSecret: s.Secret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := config.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate with spotify: %w", err)
	}

	httpClient := spotifyauth.New().Client(context.Background(), token)
	s.client = spotify.New(httpClient)
	return nil
}

// api returns the authenticated client once the rate limiter allows
// another request.
func (s *SpotifyClient) api(ctx context.Context) (*spotify.Client, error) {
	s.mu.Lock()
	if s.client == nil {
		if err := s.authenticate(ctx); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	client := s.client
	s.mu.Unlock()

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}
	return client, nil
}

// Search runs a track search.
func (s *SpotifyClient) Search(ctx context.Context, query string) ([]catalog.Hit, error) {
	client, err := s.api(ctx)
	if err != nil {
		return nil, err
	}
	result, err := client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(searchLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to search tracks: %w", err)
	}
	if result.Tracks == nil {
		return nil, nil
	}

	hits := make([]catalog.Hit, 0, len(result.Tracks.Tracks))
	for _, t := range result.Tracks.Tracks {
		hits = append(hits, catalog.Hit{
			ID:       catalog.ID(t.ID),
			Title:    t.Name,
			Link:     t.ExternalURLs["spotify"],
			Duration: int(t.Duration) / 1000,
			Artist:   firstArtist(t.Artists),
			Album:    t.Album.Name,
			AlbumID:  catalog.ID(t.Album.ID),
			Cover:    firstImage(t.Album.Images),
		})
	}
	return hits, nil
}

func (s *SpotifyClient) fullTrack(ctx context.Context, id catalog.ID) (*spotify.FullTrack, error) {
	client, err := s.api(ctx)
	if err != nil {
		return nil, err
	}
	track, err := client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", id, err)
	}
	return track, nil
}

func (s *SpotifyClient) fullAlbum(ctx context.Context, id catalog.ID) (*spotify.FullAlbum, error) {
	client, err := s.api(ctx)
	if err != nil {
		return nil, err
	}
	album, err := client.GetAlbum(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get album %s: %w", id, err)
	}
	return album, nil
}

// Track retrieves the track detail. Spotify exposes neither BPM nor gain
// on track objects.
func (s *SpotifyClient) Track(ctx context.Context, id catalog.ID) (*catalog.Track, error) {
	t, err := s.fullTrack(ctx, id)
	if err != nil {
		return nil, err
	}
	return &catalog.Track{
		ID:            catalog.ID(t.ID),
		Title:         t.Name,
		ArtistName:    firstArtist(t.Artists),
		AlbumID:       catalog.ID(t.Album.ID),
		AlbumTitle:    t.Album.Name,
		TrackPosition: int(t.TrackNumber),
		DiskNumber:    int(t.DiscNumber),
		ReleaseDate:   t.Album.ReleaseDate,
	}, nil
}

// ExtendedTrack lists every credited artist in credit order.
func (s *SpotifyClient) ExtendedTrack(ctx context.Context, id catalog.ID) (*catalog.ExtendedTrack, error) {
	t, err := s.fullTrack(ctx, id)
	if err != nil {
		return nil, err
	}
	ext := &catalog.ExtendedTrack{ID: id, Contributors: map[string][]string{}}
	for i, a := range t.Artists {
		ext.Artists = append(ext.Artists, catalog.Contributor{Name: a.Name, Order: i})
	}
	return ext, nil
}

// Album retrieves the album detail.
func (s *SpotifyClient) Album(ctx context.Context, id catalog.ID) (*catalog.Album, error) {
	a, err := s.fullAlbum(ctx, id)
	if err != nil {
		return nil, err
	}
	return &catalog.Album{
		ID:          catalog.ID(a.ID),
		Title:       a.Name,
		Artist:      firstArtist(a.Artists),
		Genres:      a.Genres,
		ReleaseDate: a.ReleaseDate,
		Cover:       firstImage(a.Images),
	}, nil
}

// ExtendedAlbum derives copyright and track/disc counts from the album
// object. The disc count is the highest disc number on the first page of
// tracks.
func (s *SpotifyClient) ExtendedAlbum(ctx context.Context, id catalog.ID) (*catalog.ExtendedAlbum, error) {
	a, err := s.fullAlbum(ctx, id)
	if err != nil {
		return nil, err
	}
	ext := &catalog.ExtendedAlbum{
		ID:         id,
		TrackCount: int(a.Tracks.Total),
	}
	for _, c := range a.Copyrights {
		if ext.Copyright == "" || c.Type == "C" {
			ext.Copyright = c.Text
		}
	}
	for _, t := range a.Tracks.Tracks {
		if n := int(t.DiscNumber); n > ext.DiscCount {
			ext.DiscCount = n
		}
	}
	return ext, nil
}

// Lyrics is not available from Spotify.
func (s *SpotifyClient) Lyrics(ctx context.Context, id catalog.ID) (*catalog.Lyrics, error) {
	return nil, fmt.Errorf("spotify lyrics for %s: %w", strconv.Quote(string(id)), catalog.ErrUnsupported)
}

func firstArtist(artists []spotify.SimpleArtist) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].Name
}

func firstImage(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
