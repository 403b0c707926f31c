// Package tagstest writes small FLAC fixtures for tests.
package tagstest

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"retagger/internal/tags"
)

// SampleRate and Samples describe the fixture stream: ten seconds at 44.1kHz.
const (
	SampleRate = 44100
	Samples    = 441000
	Vendor     = "reference libFLAC 1.4.3 20230623"
)

// StreamInfo returns a STREAMINFO block for a 16-bit stereo stream.
func StreamInfo(sampleRate int, samples int64) *flac.MetaDataBlock {
	data := make([]byte, 34)
	binary.BigEndian.PutUint16(data[0:2], 4096)
	binary.BigEndian.PutUint16(data[2:4], 4096)
	v := uint64(sampleRate)<<44 | uint64(2-1)<<41 | uint64(16-1)<<36 | uint64(samples)
	binary.BigEndian.PutUint64(data[10:18], v)
	return &flac.MetaDataBlock{Type: flac.StreamInfo, Data: data}
}

// Comments returns a VORBIS_COMMENT block holding frames in order.
func Comments(frames ...tags.Frame) *flac.MetaDataBlock {
	lines := make([]string, len(frames))
	for i, f := range frames {
		lines[i] = f.Key + "=" + f.Value
	}
	cmt := &flacvorbis.MetaDataBlockVorbisComment{Vendor: Vendor, Comments: lines}
	block := cmt.Marshal()
	return &block
}

// WriteFLAC writes a FLAC file with a comment block to path.
func WriteFLAC(t testing.TB, path string, frames ...tags.Frame) string {
	t.Helper()
	return write(t, path, StreamInfo(SampleRate, Samples), Comments(frames...))
}

// WriteFLACWithoutComments writes a FLAC file that has only STREAMINFO.
func WriteFLACWithoutComments(t testing.TB, path string) string {
	t.Helper()
	return write(t, path, StreamInfo(SampleRate, Samples))
}

// WriteFLACInDir writes name into dir and returns the full path.
func WriteFLACInDir(t testing.TB, dir, name string, frames ...tags.Frame) string {
	t.Helper()
	return WriteFLAC(t, filepath.Join(dir, name), frames...)
}

func write(t testing.TB, path string, meta ...*flac.MetaDataBlock) string {
	t.Helper()
	f := &flac.File{
		Meta:   meta,
		Frames: []byte{0xFF, 0xF8, 0x69, 0x08, 0x00, 0x00},
	}
	if err := f.Save(path); err != nil {
		t.Fatalf("failed to write FLAC fixture: %v", err)
	}
	return path
}
