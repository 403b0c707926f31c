package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"retagger/internal/interfaces"
	"retagger/internal/shared"
	"retagger/internal/tags"
)

// TrackLoader builds a Track from a file on disk.
type TrackLoader interface {
	Load(path string) (*Track, error)
}

// Loader reads FLAC files into Tracks. Files it cannot decode still become
// Tracks, with HasTags false.
type Loader struct {
	Separator string
	Logger    interfaces.LoggerService
	Warnings  *shared.WarningCollector
}

// NewLoader creates a Loader joining multi-valued fields with sep.
func NewLoader(sep string, logger interfaces.LoggerService, warnings *shared.WarningCollector) *Loader {
	return &Loader{Separator: sep, Logger: logger, Warnings: warnings}
}

// Load stats path and decodes its tags. It fails only when path is not a
// regular file.
func (l *Loader) Load(path string) (*Track, error) {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	t := &Track{
		Path:          path,
		FileName:      filepath.Base(path),
		FileSize:      info.Size(),
		FileExtension: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		State:         NotFetched,
	}

	fileType, err := identify(path)
	if err != nil {
		l.warnf("could not identify %s: %v", path, err)
		if l.Warnings != nil {
			l.Warnings.AddUnsupportedFileWarning(path, err.Error())
		}
		return t, nil
	}
	t.FileType = string(fileType)
	if fileType != tag.FLAC {
		if l.Warnings != nil {
			l.Warnings.AddUnsupportedFileWarning(path, string(fileType))
		}
		return t, nil
	}

	f, err := tags.ReadMetadata(path)
	if err != nil {
		l.warnf("failed to decode %s: %v", path, err)
		if l.Warnings != nil {
			l.Warnings.AddDecodeWarning(path, err.Error())
		}
		return t, nil
	}

	sep := l.Separator
	if sep == "" {
		sep = tags.DefaultSeparator
	}
	t.Tags = f.Record(sep)
	t.TagsToSave = t.Tags.Clone()
	t.Pictures = f.Pictures()
	t.HasTags = true
	return t, nil
}

func (l *Loader) warnf(format string, args ...interface{}) {
	if l.Logger != nil {
		l.Logger.Debug(format, args...)
	}
}

func identify(path string) (tag.FileType, error) {
	f, err := os.Open(path)
	if err != nil {
		return tag.UnknownFileType, err
	}
	defer f.Close()
	_, fileType, err := tag.Identify(f)
	if err != nil {
		return tag.UnknownFileType, err
	}
	return fileType, nil
}
