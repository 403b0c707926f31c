package tags_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retagger/internal/tags"
	"retagger/internal/tags/tagstest"
)

func TestOpenFile(t *testing.T) {
	path := tagstest.WriteFLAC(t, filepath.Join(t.TempDir(), "a.flac"),
		tags.Frame{Key: "TITLE", Value: "Song"},
		tags.Frame{Key: "ARTIST", Value: "A"},
		tags.Frame{Key: "ARTIST", Value: "B"},
		tags.Frame{Key: "MOOD", Value: "calm"},
	)

	f, err := tags.OpenFile(path)
	require.NoError(t, err)
	assert.True(t, f.HasCommentBlock())
	assert.Equal(t, 10*time.Second, f.Length())
	assert.Equal(t, tagstest.Vendor, f.Comments().Vendor)

	rec := f.Record(" & ")
	assert.Equal(t, "Song", rec.Title)
	assert.Equal(t, "A & B", rec.Artist)
	assert.Equal(t, 10.0, rec.Length)
	assert.Equal(t, []tags.ExtraTag{{Key: "MOOD", Value: "calm"}}, rec.ExtraTags)
}

func TestOpenFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.flac")
	require.NoError(t, os.WriteFile(path, []byte("not a flac file"), 0o644))

	_, err := tags.OpenFile(path)
	assert.Error(t, err)
}

func TestReadMetadata(t *testing.T) {
	path := tagstest.WriteFLAC(t, filepath.Join(t.TempDir(), "a.flac"),
		tags.Frame{Key: "TITLE", Value: "Song"},
		tags.Frame{Key: "TRACKNUMBER", Value: "3"},
	)

	full, err := tags.OpenFile(path)
	require.NoError(t, err)
	meta, err := tags.ReadMetadata(path)
	require.NoError(t, err)

	assert.True(t, meta.HasCommentBlock())
	assert.Equal(t, full.Length(), meta.Length())
	assert.Equal(t, full.Record("; "), meta.Record("; "))
	assert.Equal(t, full.Pictures(), meta.Pictures())

	before, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.ErrorIs(t, meta.Save(path), tags.ErrMetadataOnly)
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReadMetadataRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.flac")
	require.NoError(t, os.WriteFile(path, []byte("not a flac file"), 0o644))

	_, err := tags.ReadMetadata(path)
	assert.Error(t, err)

	_, err = tags.ReadMetadata(filepath.Join(t.TempDir(), "missing.flac"))
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := tagstest.WriteFLAC(t, filepath.Join(t.TempDir(), "a.flac"),
		tags.Frame{Key: "TITLE", Value: "Old"},
		tags.Frame{Key: "MOOD", Value: "calm"},
	)

	rec, _, err := tags.ReadFile(path, "; ")
	require.NoError(t, err)
	rec.Title = "New"
	rec.TrackNumber = "not a number"
	rec.Genre = "Pop,Rock"
	require.NoError(t, tags.WriteFile(path, rec))

	got, _, err := tags.ReadFile(path, "; ")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "0", got.TrackNumber)
	assert.Equal(t, "Pop,Rock", got.Genre)
	assert.Equal(t, []tags.ExtraTag{{Key: "MOOD", Value: "calm"}}, got.ExtraTags)
	assert.Equal(t, 10.0, got.Length)

	f, err := tags.OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, tagstest.Vendor, f.Comments().Vendor)
}

func TestWriteFileWithoutCommentBlock(t *testing.T) {
	path := tagstest.WriteFLACWithoutComments(t, filepath.Join(t.TempDir(), "bare.flac"))

	rec, _, err := tags.ReadFile(path, "; ")
	require.NoError(t, err)
	assert.Equal(t, "", rec.Title)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = tags.WriteFile(path, tags.Record{Title: "x"})
	assert.ErrorIs(t, err, tags.ErrNoCommentBlock)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDetectImageFormat(t *testing.T) {
	assert.Equal(t, "image/png", tags.DetectImageFormat([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D}))
	assert.Equal(t, "image/jpeg", tags.DetectImageFormat([]byte{0xFF, 0xD8, 0xFF}))
	assert.Equal(t, "image/webp", tags.DetectImageFormat([]byte("RIFF\x00\x00\x00\x00WEBPVP8 ")))
	assert.Equal(t, "image/gif", tags.DetectImageFormat([]byte("GIF89a")))
	assert.Equal(t, "image/jpeg", tags.DetectImageFormat(nil))
}
