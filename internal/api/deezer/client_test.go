package deezer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retagger/internal/catalog"
	"retagger/internal/merge"
	"retagger/internal/shared"
)

const gatewayPath = "/ajax/gw-light.php"

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, srv.URL+gatewayPath, srv.Client())
	c.SetRetryPolicy(3, time.Millisecond)
	c.SetRateLimit(time.Millisecond, 100)
	return c
}

func writeBody(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func TestSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `track:"Song" artist:"Band"`, r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, shared.UserAgent, r.Header.Get("User-Agent"))
		writeBody(w, `{"data":[
			{"id":3135556,"title":"Song","link":"https://www.deezer.com/track/3135556","duration":210,
			 "artist":{"id":27,"name":"Band"},"album":{"id":302127,"title":"Record","cover_xl":"https://img/xl.jpg"}},
			{"id":42,"title":"Song (Live)","duration":250,"artist":{"name":"Band"},"album":{"id":7,"title":"Live","cover":"https://img/c.jpg"}}
		],"total":2}`)
	})
	c := newTestClient(t, mux)

	hits, err := c.Search(context.Background(), `track:"Song" artist:"Band"`)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, catalog.Hit{
		ID:       "3135556",
		Title:    "Song",
		Link:     "https://www.deezer.com/track/3135556",
		Duration: 210,
		Artist:   "Band",
		Album:    "Record",
		AlbumID:  "302127",
		Cover:    "https://img/xl.jpg",
	}, hits[0])
	assert.Equal(t, "https://img/c.jpg", hits[1].Cover)
}

func TestTrackAndAlbum(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/track/3135556", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{"id":3135556,"title":"Song","isrc":"GBDUW0000059","track_position":4,"disk_number":1,
			"release_date":"2001-03-07","bpm":123.4,"gain":-12.5,"artist":{"name":"Band"},"album":{"id":302127,"title":"Record"}}`)
	})
	mux.HandleFunc("/album/302127", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{"id":302127,"title":"Record","upc":"724384960650","label":"Parlophone","release_date":"2001-03-07",
			"cover_xl":"https://img/xl.jpg","artist":{"name":"Band"},
			"genres":{"data":[{"id":132,"name":"Pop"},{"id":85,"name":"Alternative"}]}}`)
	})
	c := newTestClient(t, mux)

	track, err := c.Track(context.Background(), "3135556")
	require.NoError(t, err)
	assert.Equal(t, &catalog.Track{
		ID:            "3135556",
		Title:         "Song",
		ArtistName:    "Band",
		AlbumID:       "302127",
		AlbumTitle:    "Record",
		TrackPosition: 4,
		DiskNumber:    1,
		ReleaseDate:   "2001-03-07",
		ISRC:          "GBDUW0000059",
		BPM:           123.4,
		Gain:          -12.5,
	}, track)

	album, err := c.Album(context.Background(), "302127")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pop", "Alternative"}, album.Genres)
	assert.Equal(t, "Parlophone", album.Label)
	assert.Equal(t, "724384960650", album.UPC)
	assert.Equal(t, "Band", album.Artist)
	assert.Equal(t, "https://img/xl.jpg", album.Cover)
}

func TestAPIErrorBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/track/1", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{"error":{"type":"DataException","message":"no data","code":800}}`)
	})
	mux.HandleFunc("/track/2", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{"error":{"type":"ParameterException","message":"Wrong parameter","code":500}}`)
	})
	c := newTestClient(t, mux)

	_, err := c.Track(context.Background(), "1")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = c.Track(context.Background(), "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Wrong parameter")
}

func TestRetriesRateLimits(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/album/9", func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			writeBody(w, `{"error":{"type":"Exception","message":"Quota limit exceeded","code":4}}`)
		default:
			writeBody(w, `{"id":9,"title":"Nine"}`)
		}
	})
	c := newTestClient(t, mux)

	album, err := c.Album(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "Nine", album.Title)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/album/9", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	})
	c := newTestClient(t, mux)

	_, err := c.Album(context.Background(), "9")
	var httpErr *shared.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// fakeGateway answers gw-light calls; tokens lists the session tokens handed
// out in order and invalid holds tokens to reject once.
type fakeGateway struct {
	t        *testing.T
	tokens   []string
	issued   int32
	invalid  map[string]bool
	handlers map[string]func(payload map[string]string) string
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	assert.Equal(g.t, http.MethodPost, r.Method)
	assert.Equal(g.t, "3", q.Get("input"))
	assert.Equal(g.t, "1.0", q.Get("api_version"))

	method := q.Get("method")
	if method == "deezer.getUserData" {
		i := atomic.AddInt32(&g.issued, 1) - 1
		writeBody(w, `{"error":[],"results":{"checkForm":"`+g.tokens[i]+`"}}`)
		return
	}
	token := q.Get("api_token")
	if g.invalid[token] {
		delete(g.invalid, token)
		writeBody(w, `{"error":{"VALID_TOKEN_REQUIRED":"Invalid CSRF token"},"results":{}}`)
		return
	}
	var payload map[string]string
	require.NoError(g.t, json.NewDecoder(r.Body).Decode(&payload))
	handler, ok := g.handlers[method]
	if !ok {
		writeBody(w, `{"error":{"METHOD_NOT_FOUND":"unknown"},"results":{}}`)
		return
	}
	writeBody(w, `{"error":[],"results":`+handler(payload)+`}`)
}

func TestExtendedTrack(t *testing.T) {
	gw := &fakeGateway{
		t:      t,
		tokens: []string{"tok1"},
		handlers: map[string]func(map[string]string) string{
			"song.getData": func(p map[string]string) string {
				if p["sng_id"] == "2" {
					return `{"SNG_ID":"2","ARTISTS":[{"ART_NAME":"Solo","ARTISTS_SONGS_ORDER":"0"}],"SNG_CONTRIBUTORS":[]}`
				}
				return `{"SNG_ID":"1","ARTISTS":[
					{"ART_NAME":"Guest","ARTISTS_SONGS_ORDER":"1"},
					{"ART_NAME":"Main","ARTISTS_SONGS_ORDER":0}],
					"SNG_CONTRIBUTORS":{"composer":["A","B"],"producer":["P"]}}`
			},
		},
	}
	mux := http.NewServeMux()
	mux.Handle(gatewayPath, gw)
	c := newTestClient(t, mux)

	ext, err := c.ExtendedTrack(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, []catalog.Contributor{{Name: "Guest", Order: 1}, {Name: "Main", Order: 0}}, ext.Artists)
	assert.Equal(t, map[string][]string{"composer": {"A", "B"}, "producer": {"P"}}, ext.Contributors)

	ext, err = c.ExtendedTrack(context.Background(), "2")
	require.NoError(t, err)
	assert.Empty(t, ext.Contributors)
	assert.Equal(t, int32(1), atomic.LoadInt32(&gw.issued), "session token is reused")
}

func TestGatewayRenewsRejectedToken(t *testing.T) {
	gw := &fakeGateway{
		t:       t,
		tokens:  []string{"stale", "fresh"},
		invalid: map[string]bool{"stale": true},
		handlers: map[string]func(map[string]string) string{
			"album.getData": func(p map[string]string) string {
				assert.Equal(t, "302127", p["alb_id"])
				return `{"ALB_ID":"302127","COPYRIGHT":"(P) 2001 Label","NUMBER_TRACK":"12","NUMBER_DISK":"2","ORIGINAL_RELEASE_DATE":"1999-01-01"}`
			},
		},
	}
	mux := http.NewServeMux()
	mux.Handle(gatewayPath, gw)
	c := newTestClient(t, mux)

	ext, err := c.ExtendedAlbum(context.Background(), "302127")
	require.NoError(t, err)
	assert.Equal(t, &catalog.ExtendedAlbum{
		ID:                  "302127",
		Copyright:           "(P) 2001 Label",
		TrackCount:          12,
		DiscCount:           2,
		OriginalReleaseDate: "1999-01-01",
	}, ext)
	assert.Equal(t, int32(2), atomic.LoadInt32(&gw.issued))
}

func TestGatewayError(t *testing.T) {
	gw := &fakeGateway{t: t, tokens: []string{"tok"}}
	mux := http.NewServeMux()
	mux.Handle(gatewayPath, gw)
	c := newTestClient(t, mux)

	_, err := c.Lyrics(context.Background(), "1")
	assert.True(t, errors.Is(err, ErrGateway))
}

func TestLyrics(t *testing.T) {
	gw := &fakeGateway{
		t:      t,
		tokens: []string{"tok"},
		handlers: map[string]func(map[string]string) string{
			"song.getLyrics": func(p map[string]string) string {
				return `{"LYRICS_TEXT":"one\r\ntwo","LYRICS_SYNC_JSON":[
					{"lrc_timestamp":"[00:05.89]","line":"one","duration":"1000"},
					{"line":""},
					{"lrc_timestamp":"[00:07.10]","line":"two"}]}`
			},
		},
	}
	mux := http.NewServeMux()
	mux.Handle(gatewayPath, gw)
	c := newTestClient(t, mux)

	lyrics, err := c.Lyrics(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "one\r\ntwo", lyrics.Text)
	assert.Equal(t, []catalog.SyncLine{
		{Timestamp: "[00:05.89]", Line: "one"},
		{},
		{Timestamp: "[00:07.10]", Line: "two"},
	}, lyrics.Sync)
	assert.Equal(t, "[00:05.89] one\r\n\r\n[00:07.10] two", merge.RenderLyrics(*lyrics, true))
}
