package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retagger/internal/catalog"
	"retagger/internal/catalog/catalogtest"
	"retagger/internal/config"
	"retagger/internal/core/library"
	"retagger/internal/core/tagger"
	"retagger/internal/shared"
	"retagger/internal/tags"
	"retagger/internal/tags/tagstest"
)

type testEnv struct {
	dir    string
	client *catalogtest.Client
	tagger *tagger.Tagger
	srv    *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	warnings := shared.NewWarningCollector(false)
	loader := library.NewLoader(cfg.Tagging.Separator, nil, warnings)
	coll := library.NewCollection(loader)
	client := catalogtest.New()
	asm := catalog.NewAssembler(client, catalog.NewAlbumCache(), false)
	tg := tagger.New(cfg, coll, asm, loader, nil, nil, warnings)

	s := New(filepath.Join(dir, "config.json"), tg, zerolog.New(io.Discard))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{dir: dir, client: client, tagger: tg, srv: srv}
}

func (e *testEnv) writeFile(t *testing.T, name, title string) string {
	t.Helper()
	return tagstest.WriteFLACInDir(t, e.dir, name,
		tags.Frame{Key: "TITLE", Value: title},
		tags.Frame{Key: "ALBUM", Value: "Record"},
	)
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestTrackLifecycle(t *testing.T) {
	e := newTestEnv(t)
	path := e.writeFile(t, "a.flac", "Song")

	resp := e.do(t, http.MethodPost, "/api/tracks", pathRequest{Path: path})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var track library.Track
	decodeBody(t, resp, &track)
	assert.Equal(t, "Song", track.Tags.Title)
	assert.Equal(t, library.NotFetched, track.State)

	resp = e.do(t, http.MethodPost, "/api/tracks", pathRequest{Path: path})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = e.do(t, http.MethodPut, "/api/tracks", pathRequest{Path: path})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/tracks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []library.Track
	decodeBody(t, resp, &list)
	require.Len(t, list, 1)

	resp = e.do(t, http.MethodGet, "/api/tracks/item?path="+url.QueryEscape(path), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/tracks/reload", pathRequest{Path: path})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodDelete, "/api/tracks?path="+url.QueryEscape(path), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/tracks/item?path="+url.QueryEscape(path), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = e.do(t, http.MethodDelete, "/api/tracks?path="+url.QueryEscape(path), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoadDirectoryAndClear(t *testing.T) {
	e := newTestEnv(t)
	e.writeFile(t, "a.flac", "One")
	e.writeFile(t, "b.flac", "Two")

	resp := e.do(t, http.MethodPost, "/api/directory", directoryRequest{Directory: e.dir})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Loaded int             `json:"loaded"`
		Tracks []library.Track `json:"tracks"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, 2, out.Loaded)
	assert.Len(t, out.Tracks, 2)

	resp = e.do(t, http.MethodPost, "/api/directory", directoryRequest{Directory: filepath.Join(e.dir, "missing")})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/tracks/clear", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/tracks", nil)
	var list []library.Track
	decodeBody(t, resp, &list)
	assert.Empty(t, list)
}

func TestFetchSelectAndSave(t *testing.T) {
	e := newTestEnv(t)
	path := e.writeFile(t, "a.flac", "Song")
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/tracks", pathRequest{Path: path}).StatusCode)

	album := &catalog.Album{ID: "100", Title: "Record", Artist: "Band"}
	var hits []catalog.Hit
	for i, id := range []catalog.ID{"1", "2"} {
		hits = append(hits, e.client.AddTrack(catalog.Track{
			ID: id, Title: "Song", ArtistName: "Band", AlbumID: "100", AlbumTitle: "Record", TrackPosition: 3 + i,
		}, nil, album, nil, nil))
	}
	e.client.SearchResults[catalog.BuildQuery("Song", "Record", "")] = hits

	resp := e.do(t, http.MethodPost, "/api/tracks/fetch", pathRequest{Path: path})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var track library.Track
	decodeBody(t, resp, &track)
	assert.Equal(t, library.HasCandidates, track.State)
	require.Len(t, track.Sources, 2)

	resp = e.do(t, http.MethodPost, "/api/tracks/select", selectRequest{Path: path, ID: "2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &track)
	assert.Equal(t, library.Matched, track.State)
	assert.Equal(t, "04", track.TagsToSave.TrackNumber)

	rec := track.TagsToSave
	rec.Comment = "edited"
	resp = e.do(t, http.MethodPut, "/api/tracks/tags", tagsRequest{Path: path, Tags: &rec})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/tracks/save", tagsRequest{Path: path})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var saved struct {
		Track   library.Track `json:"track"`
		Warning string        `json:"warning"`
	}
	decodeBody(t, resp, &saved)
	assert.Equal(t, library.Finalized, saved.Track.State)
	assert.Equal(t, "edited", saved.Track.Tags.Comment)
	assert.Equal(t, "Band", saved.Track.Tags.Artist)
	assert.Empty(t, saved.Warning)
}

func TestBadRequests(t *testing.T) {
	e := newTestEnv(t)

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/tracks", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "invalid_request", body["error"])

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/tracks/fetch", pathRequest{}).StatusCode)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/tracks/select", selectRequest{Path: "x"}).StatusCode)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPut, "/api/tracks/tags", tagsRequest{Path: "x"}).StatusCode)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, "/api/tracks/fetch", pathRequest{Path: "/nope.flac"}).StatusCode)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, "/api/tracks/save", tagsRequest{Path: "/nope.flac"}).StatusCode)
}

func TestConfigEndpoints(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodGet, "/api/config/parallelism", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v configValue
	decodeBody(t, resp, &v)
	assert.Equal(t, "5", v.Value)

	resp = e.do(t, http.MethodPut, "/api/config/parallelism", configValue{Value: "8"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &v)
	assert.Equal(t, "8", v.Value)
	assert.Equal(t, 8, e.tagger.Config().Parallelism)

	saved := config.Default()
	require.NoError(t, config.LoadConfig(filepath.Join(e.dir, "config.json"), saved))
	assert.Equal(t, 8, saved.Parallelism)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPut, "/api/config/parallelism", configValue{Value: "many"}).StatusCode)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/config/bogus", nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPut, "/api/config/bogus", configValue{Value: "1"}).StatusCode)

	resp = e.do(t, http.MethodGet, "/api/config", nil)
	var all []configValue
	decodeBody(t, resp, &all)
	assert.Len(t, all, len(config.OptionNames()))
}

// Option changes publish a new config while fetches keep reading the one
// they started with; run with -race.
func TestConfigChangesDuringFetch(t *testing.T) {
	e := newTestEnv(t)
	before := e.tagger.Config()

	var paths []string
	for _, name := range []string{"a.flac", "b.flac", "c.flac", "d.flac"} {
		path := e.writeFile(t, name, "Song")
		require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/tracks", pathRequest{Path: path}).StatusCode)
		paths = append(paths, path)
	}
	album := &catalog.Album{ID: "100", Title: "Record", Artist: "Band"}
	hit := e.client.AddTrack(catalog.Track{
		ID: "1", Title: "Song", ArtistName: "Band", AlbumID: "100", AlbumTitle: "Record", TrackPosition: 1,
	}, nil, album, nil, nil)
	e.client.SearchResults[catalog.BuildQuery("Song", "Record", "")] = []catalog.Hit{hit}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(path string) {
			defer wg.Done()
			resp := e.do(t, http.MethodPost, "/api/tracks/fetch", pathRequest{Path: path})
			assert.Contains(t, []int{http.StatusOK, http.StatusConflict}, resp.StatusCode)
		}(paths[i%len(paths)])
		go func(i int) {
			defer wg.Done()
			value := "true"
			if i%2 == 0 {
				value = "false"
			}
			resp := e.do(t, http.MethodPut, "/api/config/tag_dz_title", configValue{Value: value})
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}(i)
	}
	wg.Wait()

	assert.NotSame(t, before, e.tagger.Config())
	assert.True(t, before.Tagging.Title, "published config must not be edited in place")
}
