package tags

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

// ErrNoCommentBlock is returned when saving a FLAC file that has no
// VORBIS_COMMENT block to write into.
var ErrNoCommentBlock = errors.New("file has no vorbis comment block")

// ErrMetadataOnly is returned when saving a File read by ReadMetadata, which
// holds no audio frames.
var ErrMetadataOnly = errors.New("file was read without its audio frames")

// File is a parsed FLAC file: its comment block as a FrameStore, its pictures
// and its stream length.
type File struct {
	path     string
	flac     *flac.File
	comments *Comments
	hasBlock bool
	pictures []Picture
	// picturesSet is true once SetPictures replaced the embedded list.
	picturesSet bool
	length      time.Duration
	metaOnly    bool
}

// OpenFile parses the whole FLAC file at path, audio frames included, so it
// can be saved again.
func OpenFile(path string) (*File, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FLAC file: %w", err)
	}
	return newFile(path, f)
}

// ReadMetadata parses only the metadata blocks of the FLAC file at path. The
// audio stream is never read; Save on the result fails with ErrMetadataOnly.
func ReadMetadata(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := flac.ParseMetadata(bufio.NewReader(fh))
	if err != nil {
		return nil, fmt.Errorf("failed to parse FLAC metadata: %w", err)
	}
	file, err := newFile(path, f)
	if err != nil {
		return nil, err
	}
	file.metaOnly = true
	return file, nil
}

func newFile(path string, f *flac.File) (*File, error) {
	file := &File{path: path, flac: f, comments: NewComments("")}
	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				return nil, fmt.Errorf("failed to parse vorbis comment: %w", err)
			}
			file.comments = ParseCommentLines(cmt.Vendor, cmt.Comments)
			file.hasBlock = true
		case flac.Picture:
			pic, err := flacpicture.ParseFromMetaDataBlock(*block)
			if err != nil {
				// A broken picture never blocks access to the comments.
				continue
			}
			file.pictures = append(file.pictures, Picture{
				Type:        uint32(pic.PictureType),
				MIME:        pic.MIME,
				Description: pic.Description,
				Width:       pic.Width,
				Height:      pic.Height,
				Data:        pic.ImageData,
			})
		}
	}

	if info, err := f.GetStreamInfo(); err == nil && info.SampleRate > 0 {
		file.length = time.Duration(float64(info.SampleCount) / float64(info.SampleRate) * float64(time.Second))
	}
	return file, nil
}

// Path is where the file was read from.
func (f *File) Path() string { return f.path }

// Comments is the editable comment block.
func (f *File) Comments() *Comments { return f.comments }

// HasCommentBlock reports whether the file carried a VORBIS_COMMENT block.
func (f *File) HasCommentBlock() bool { return f.hasBlock }

// Pictures returns the embedded pictures in file order.
func (f *File) Pictures() []Picture { return ClonePictures(f.pictures) }

// Length is the stream duration derived from STREAMINFO.
func (f *File) Length() time.Duration { return f.length }

// Record decodes the comment block and fills in the stream length.
func (f *File) Record(sep string) Record {
	rec := DecodeStore(f.comments, sep)
	rec.Length = f.length.Seconds()
	return rec
}

// SetPictures replaces the picture list written on the next Save.
func (f *File) SetPictures(pictures []Picture) {
	f.pictures = ClonePictures(pictures)
	f.picturesSet = true
}

// Save writes the comment block and pictures back to path. The file is
// written next to its destination and renamed over it, so a failed write
// leaves the original untouched.
func (f *File) Save(path string) error {
	if f.metaOnly {
		return ErrMetadataOnly
	}
	if !f.hasBlock {
		return ErrNoCommentBlock
	}

	cmt := &flacvorbis.MetaDataBlockVorbisComment{
		Vendor:   f.comments.Vendor,
		Comments: f.comments.Lines(),
	}
	commentBlock := cmt.Marshal()

	meta := make([]*flac.MetaDataBlock, 0, len(f.flac.Meta)+len(f.pictures))
	for _, block := range f.flac.Meta {
		switch block.Type {
		case flac.VorbisComment:
			meta = append(meta, &commentBlock)
		case flac.Picture:
			if !f.picturesSet {
				meta = append(meta, block)
			}
		default:
			meta = append(meta, block)
		}
	}
	if f.picturesSet {
		for _, p := range f.pictures {
			block, err := pictureBlock(p)
			if err != nil {
				return err
			}
			meta = append(meta, block)
		}
	}
	f.flac.Meta = meta

	tmp, err := os.CreateTemp(filepath.Dir(path), ".retagger-*.flac")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := f.flac.Save(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write FLAC file: %w", err)
	}
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpPath, info.Mode().Perm())
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace FLAC file: %w", err)
	}
	f.path = path
	return nil
}

func pictureBlock(p Picture) (*flac.MetaDataBlock, error) {
	mime := p.MIME
	if mime == "" {
		mime = DetectImageFormat(p.Data)
	}
	pic, err := flacpicture.NewFromImageData(flacpicture.PictureType(p.Type), p.Description, p.Data, mime)
	if err != nil {
		return nil, fmt.Errorf("failed to create picture metadata: %w", err)
	}
	block := pic.Marshal()
	return &block, nil
}

// DetectImageFormat sniffs the MIME type of image data, defaulting to JPEG.
func DetectImageFormat(data []byte) string {
	switch {
	case len(data) >= 4 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
		return "image/png"
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return "image/jpeg"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	case len(data) >= 4 && string(data[0:4]) == "GIF8":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// ReadFile reads the metadata of path and returns its decoded record and
// pictures.
func ReadFile(path, sep string) (Record, []Picture, error) {
	f, err := ReadMetadata(path)
	if err != nil {
		return Record{}, nil, err
	}
	return f.Record(sep), f.Pictures(), nil
}

// WriteFile encodes rec into the comment block of the FLAC file at path and
// saves it in place. Pictures are kept as they are.
func WriteFile(path string, rec Record) error {
	f, err := OpenFile(path)
	if err != nil {
		return err
	}
	if !f.HasCommentBlock() {
		return ErrNoCommentBlock
	}
	Encode(f.Comments(), rec)
	if err := f.Save(path); err != nil {
		return err
	}
	return nil
}
