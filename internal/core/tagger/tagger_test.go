package tagger_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

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

// fakeFS relocates files to <output>/<title>.flac.
type fakeFS struct{}

func (fakeFS) EnsureDirectoryExists(path string) error { return os.MkdirAll(path, 0o755) }
func (fakeFS) FileExists(path string) bool             { return shared.FileExists(path) }
func (fakeFS) GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
func (fakeFS) SanitizeFileName(name string) string { return shared.SanitizeFileName(name) }
func (fakeFS) RelocationPath(rec tags.Record, _ string, cfg *config.Config) string {
	return filepath.Join(cfg.OutputDirectory, "sorted", rec.Title+".flac")
}
func (fakeFS) MoveFile(src, dst string) error { return os.Rename(src, dst) }

type fakeNotifier struct {
	calls int32
	err   error
}

func (n *fakeNotifier) Name() string { return "fake" }
func (n *fakeNotifier) LibraryChanged(context.Context) error {
	atomic.AddInt32(&n.calls, 1)
	return n.err
}

// hookClient runs beforeSearch ahead of every search so tests can change
// the collection while a fetch is in flight.
type hookClient struct {
	*catalogtest.Client
	beforeSearch func()
}

func (c *hookClient) Search(ctx context.Context, query string) ([]catalog.Hit, error) {
	if c.beforeSearch != nil {
		c.beforeSearch()
	}
	return c.Client.Search(ctx, query)
}

type env struct {
	dir      string
	cfg      *config.Config
	client   *hookClient
	coll     *library.Collection
	tagger   *tagger.Tagger
	warnings *shared.WarningCollector
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := config.Default()
	cfg.Parallelism = 2
	warnings := shared.NewWarningCollector(true)
	loader := library.NewLoader(cfg.Tagging.Separator, nil, warnings)
	coll := library.NewCollection(loader)
	client := &hookClient{Client: catalogtest.New()}
	asm := catalog.NewAssembler(client, catalog.NewAlbumCache(), false)
	return &env{
		dir:      t.TempDir(),
		cfg:      cfg,
		client:   client,
		coll:     coll,
		tagger:   tagger.New(cfg, coll, asm, loader, fakeFS{}, nil, warnings),
		warnings: warnings,
	}
}

// addFile writes a FLAC titled "Song" on "Record" with no artist and loads it.
func (e *env) addFile(t *testing.T, name string) string {
	t.Helper()
	path := tagstest.WriteFLACInDir(t, e.dir, name,
		tags.Frame{Key: "TITLE", Value: "Song"},
		tags.Frame{Key: "ALBUM", Value: "Record"},
		tags.Frame{Key: "CUSTOM", Value: "keep me"},
	)
	require.NoError(t, e.coll.Add(path))
	return path
}

func remoteTrack(id catalog.ID, position int) catalog.Track {
	return catalog.Track{
		ID:            id,
		Title:         "Song",
		ArtistName:    "Band",
		AlbumID:       "100",
		AlbumTitle:    "Record",
		TrackPosition: position,
		DiskNumber:    1,
		ReleaseDate:   "2019-05-03",
	}
}

func (e *env) addHits(ids ...catalog.ID) {
	var hits []catalog.Hit
	for i, id := range ids {
		hits = append(hits, e.client.AddTrack(remoteTrack(id, 7+i), nil,
			&catalog.Album{ID: "100", Title: "Record", Artist: "Band", Genres: []string{"Pop/Rock"}},
			&catalog.ExtendedAlbum{ID: "100", TrackCount: 12, DiscCount: 1}, nil))
	}
	e.client.SearchResults[catalog.BuildQuery("Song", "Record", "")] = hits
}

func TestEnrichSingleHit(t *testing.T) {
	e := newEnv(t)
	path := e.addFile(t, "a.flac")
	e.addHits("1")

	track, err := e.tagger.Enrich(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, library.Matched, track.State)
	assert.Equal(t, "Band", track.TagsToSave.Artist)
	assert.Equal(t, "07", track.TagsToSave.TrackNumber)
	assert.Equal(t, "Pop, Rock", track.TagsToSave.Genre)
	assert.Equal(t, "1", track.TagsToSave.SourceID)
	assert.Equal(t, []tags.ExtraTag{{Key: "CUSTOM", Value: "keep me"}}, track.TagsToSave.ExtraTags)
	assert.Empty(t, track.Tags.Artist, "baseline stays as read from disk")
	assert.Equal(t, "Band", track.TagsRemote.Artist)
	assert.Empty(t, track.TagsRemote.ExtraTags)
	require.Len(t, track.Sources, 1)
}

func TestEnrichAmbiguousThenSelect(t *testing.T) {
	e := newEnv(t)
	path := e.addFile(t, "a.flac")
	e.addHits("1", "2", "3")

	track, err := e.tagger.Enrich(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, library.HasCandidates, track.State)
	assert.Len(t, track.Sources, 3)
	assert.Equal(t, "07", track.TagsToSave.TrackNumber, "first hit is merged")

	track, err = e.tagger.SelectCandidate(context.Background(), path, "3")
	require.NoError(t, err)
	assert.Equal(t, library.Matched, track.State)
	assert.Equal(t, "09", track.TagsToSave.TrackNumber)
	assert.Equal(t, "3", track.TagsToSave.SourceID)
	assert.Len(t, track.Sources, 3, "candidates stay available")

	_, err = e.tagger.SelectCandidate(context.Background(), path, "404")
	assert.Error(t, err)
	stored, _ := e.coll.Get(path)
	assert.Equal(t, "3", stored.TagsToSave.SourceID, "failed selection changes nothing")
}

func TestEnrichNoResults(t *testing.T) {
	e := newEnv(t)
	path := e.addFile(t, "a.flac")

	track, err := e.tagger.Enrich(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, library.Unsuccessful, track.State)
	assert.Contains(t, track.StateMessage, catalog.ErrNoResults.Error())
	assert.Equal(t, track.Tags, track.TagsToSave)
	assert.True(t, e.warnings.HasWarnings())
}

func TestEnrichTransportFailure(t *testing.T) {
	e := newEnv(t)
	path := e.addFile(t, "a.flac")
	e.client.SearchErr = errors.New("connection reset")

	track, err := e.tagger.Enrich(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, library.Unsuccessful, track.State)
	assert.Contains(t, track.StateMessage, "connection reset")
}

func TestEnrichMissingTrack(t *testing.T) {
	e := newEnv(t)
	_, err := e.tagger.Enrich(context.Background(), filepath.Join(e.dir, "nope.flac"))
	assert.True(t, errors.Is(err, library.ErrNotFound))
}

func TestEnrichDoesNotOverwriteConcurrentChange(t *testing.T) {
	e := newEnv(t)
	path := e.addFile(t, "a.flac")
	e.addHits("1")
	e.client.beforeSearch = func() {
		require.NoError(t, e.coll.Update(path, func(tr *library.Track) error {
			tr.TagsToSave.Comment = "edited meanwhile"
			return nil
		}))
	}

	_, err := e.tagger.Enrich(context.Background(), path)
	assert.True(t, errors.Is(err, library.ErrStale))
	stored, _ := e.coll.Get(path)
	assert.Equal(t, "edited meanwhile", stored.TagsToSave.Comment)
	assert.Equal(t, library.NotFetched, stored.State)
}

func TestEnrichDoesNotResurrectRemovedTrack(t *testing.T) {
	e := newEnv(t)
	path := e.addFile(t, "a.flac")
	e.addHits("1")
	e.client.beforeSearch = func() { require.NoError(t, e.coll.Remove(path)) }

	_, err := e.tagger.Enrich(context.Background(), path)
	assert.True(t, errors.Is(err, library.ErrNotFound))
	assert.False(t, e.coll.Contains(path))
}

func TestEnrichBatch(t *testing.T) {
	e := newEnv(t)
	matched := e.addFile(t, "a.flac")
	e.addHits("1")
	unmatched := tagstest.WriteFLACInDir(t, e.dir, "b.flac", tags.Frame{Key: "TITLE", Value: "Unknown"})
	require.NoError(t, e.coll.Add(unmatched))

	stats := e.tagger.EnrichBatch(context.Background(), []string{matched, unmatched, filepath.Join(e.dir, "gone.flac")})
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 1, stats.SkippedCount)
	assert.Equal(t, 1, stats.FailedCount)
	assert.Error(t, stats.Err())
}

func TestSaveFinalizesAndRereads(t *testing.T) {
	e := newEnv(t)
	path := e.addFile(t, "a.flac")
	e.addHits("1")
	notifier := &fakeNotifier{}
	e.tagger.SetNotifier(notifier)

	_, err := e.tagger.Enrich(context.Background(), path)
	require.NoError(t, err)
	track, err := e.tagger.Save(context.Background(), path, nil)
	require.NoError(t, err)

	assert.Equal(t, library.Finalized, track.State)
	assert.Equal(t, "Band", track.Tags.Artist)
	assert.Equal(t, track.Tags, track.TagsToSave)
	assert.Len(t, track.Sources, 1)
	assert.Equal(t, "Band", track.TagsRemote.Artist)
	assert.Equal(t, int32(1), atomic.LoadInt32(&notifier.calls))

	rec, _, err := tags.ReadFile(path, e.cfg.Tagging.Separator)
	require.NoError(t, err)
	assert.Equal(t, "Band", rec.Artist)
	assert.Equal(t, "07", rec.TrackNumber)
	assert.Equal(t, []tags.ExtraTag{{Key: "CUSTOM", Value: "keep me"}}, rec.ExtraTags)

	// Editing a finalized track puts it back to Matched.
	edit := track.TagsToSave
	edit.Comment = "hand edit"
	track, err = e.tagger.UpdateTags(path, edit)
	require.NoError(t, err)
	assert.Equal(t, library.Matched, track.State)
	assert.Equal(t, "hand edit", track.TagsToSave.Comment)
}

func TestSaveExplicitRecord(t *testing.T) {
	e := newEnv(t)
	path := e.addFile(t, "a.flac")

	rec := tags.Record{Title: "Other", TrackNumber: "x"}
	track, err := e.tagger.Save(context.Background(), path, &rec)
	require.NoError(t, err)
	assert.Equal(t, "Other", track.Tags.Title)
	assert.Equal(t, "0", track.Tags.TrackNumber)
	assert.Empty(t, track.Tags.Album)
	assert.Equal(t, library.Finalized, track.State)

	track, err = e.tagger.UpdateTags(path, track.Tags)
	require.NoError(t, err)
	assert.Equal(t, library.NotFetched, track.State, "no remote tags to fall back to")
}

func TestSaveFailureLeavesTrackUntouched(t *testing.T) {
	e := newEnv(t)
	path := tagstest.WriteFLACWithoutComments(t, filepath.Join(e.dir, "bare.flac"))
	require.NoError(t, e.coll.Add(path))
	before, _ := e.coll.Get(path)

	_, err := e.tagger.Save(context.Background(), path, &tags.Record{Title: "x"})
	assert.True(t, errors.Is(err, tags.ErrNoCommentBlock))
	after, _ := e.coll.Get(path)
	assert.Equal(t, before, after)
}

func TestSaveRelocates(t *testing.T) {
	e := newEnv(t)
	path := e.addFile(t, "a.flac")
	e.cfg.RelocateOnSave = true
	e.cfg.OutputDirectory = filepath.Join(e.dir, "out")

	track, err := e.tagger.Save(context.Background(), path, nil)
	require.NoError(t, err)

	dst := filepath.Join(e.dir, "out", "sorted", "Song.flac")
	assert.Equal(t, dst, track.Path)
	assert.FileExists(t, dst)
	assert.NoFileExists(t, path)
	assert.True(t, e.coll.Contains(dst))
	assert.False(t, e.coll.Contains(path))
	assert.Equal(t, 1, e.coll.Len())
}

func TestSaveRelocationNeverClobbers(t *testing.T) {
	e := newEnv(t)
	path := e.addFile(t, "a.flac")
	e.cfg.RelocateOnSave = true
	e.cfg.OutputDirectory = filepath.Join(e.dir, "out")
	dst := filepath.Join(e.dir, "out", "sorted", "Song.flac")
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, []byte("existing"), 0o644))

	track, err := e.tagger.Save(context.Background(), path, nil)
	assert.True(t, errors.Is(err, tagger.ErrDestinationExists))
	require.NotNil(t, track)
	assert.Equal(t, path, track.Path)
	assert.Equal(t, library.Finalized, track.State)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data))
}

func TestSaveNotifierFailureIsAWarning(t *testing.T) {
	e := newEnv(t)
	path := e.addFile(t, "a.flac")
	e.tagger.SetNotifier(&fakeNotifier{err: errors.New("offline")})

	_, err := e.tagger.Save(context.Background(), path, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, e.warnings.GetWarningsByType()[shared.LibraryRescanWarning])
}

func TestSaveBatch(t *testing.T) {
	e := newEnv(t)
	a := e.addFile(t, "a.flac")
	b := e.addFile(t, "b.flac")
	notifier := &fakeNotifier{}
	e.tagger.SetNotifier(notifier)

	err := e.tagger.SaveBatch(context.Background(), []string{a, b, filepath.Join(e.dir, "gone.flac")})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&notifier.calls))
	for _, p := range []string{a, b} {
		track, ok := e.coll.Get(p)
		require.True(t, ok)
		assert.Equal(t, library.Finalized, track.State)
	}
}

func TestReload(t *testing.T) {
	e := newEnv(t)
	path := e.addFile(t, "a.flac")
	e.addHits("1")
	_, err := e.tagger.Enrich(context.Background(), path)
	require.NoError(t, err)

	track, err := e.tagger.Reload(path)
	require.NoError(t, err)
	assert.Equal(t, library.NotFetched, track.State)
	assert.Empty(t, track.TagsToSave.Artist)
	assert.Empty(t, track.Sources)
}

func TestSetConfigAppliesToLaterFetches(t *testing.T) {
	e := newEnv(t)
	path := e.addFile(t, "a.flac")
	e.addHits("1")

	next := e.tagger.Config().Clone()
	next.Tagging.Artist = false
	e.tagger.SetConfig(next)

	track, err := e.tagger.Enrich(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, track.TagsToSave.Artist)
	assert.True(t, e.cfg.Tagging.Artist)
	assert.Same(t, next, e.tagger.Config())
}
