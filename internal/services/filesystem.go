package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"retagger/internal/config"
	"retagger/internal/shared"
	"retagger/internal/tags"
)

// FileSystemService implementation
type FileSystemService struct {
	config *config.Config
}

func NewFileSystemService(cfg *config.Config) *FileSystemService {
	return &FileSystemService{config: cfg}
}

func (fss *FileSystemService) EnsureDirectoryExists(path string) error {
	return config.CreateDirIfNotExists(path)
}

func (fss *FileSystemService) FileExists(path string) bool {
	return shared.FileExists(path)
}

func (fss *FileSystemService) GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (fss *FileSystemService) SanitizeFileName(filename string) string {
	return shared.SanitizeFileName(filename)
}

// ProcessNamingMask fills a naming mask template from a tag record
func (fss *FileSystemService) ProcessNamingMask(mask string, rec tags.Record) string {
	if mask == "" {
		return ""
	}
	year := rec.Year
	if year == "" && len(rec.Date) >= 4 {
		year = rec.Date[:4]
	}
	albumArtist := rec.AlbumArtist
	if albumArtist == "" {
		albumArtist = rec.Artist
	}

	// Path separators inside values must not create folders.
	clean := func(v string) string { return strings.ReplaceAll(v, "/", "_") }
	replacer := strings.NewReplacer(
		"{title}", clean(rec.Title),
		"{artist}", clean(rec.Artist),
		"{album_artist}", clean(albumArtist),
		"{album}", clean(rec.Album),
		"{track_number}", padNumber(rec.TrackNumber),
		"{disc_number}", padNumber(rec.DiscNumber),
		"{year}", year,
	)
	return replacer.Replace(mask)
}

// padNumber zero-pads a bare number to two digits and drops a "/total"
// suffix; anything else is returned trimmed.
func padNumber(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.IndexByte(v, '/'); i >= 0 {
		v = v[:i]
	}
	if len(v) == 1 && v[0] >= '0' && v[0] <= '9' {
		return "0" + v
	}
	return v
}

// ProcessNamingMaskForFolder processes a naming mask for a relative path
// (sanitizes each component separately)
func (fss *FileSystemService) ProcessNamingMaskForFolder(mask string, rec tags.Record) string {
	result := fss.ProcessNamingMask(mask, rec)
	parts := strings.Split(result, "/")
	for i, part := range parts {
		parts[i] = fss.SanitizeFileName(part)
	}
	return filepath.Join(parts...)
}

// RelocationPath builds the destination of a saved file: the output
// directory joined with the file mask, keeping the current extension. The
// mask may contain "/" to create sub folders.
func (fss *FileSystemService) RelocationPath(rec tags.Record, currentPath string, cfg *config.Config) string {
	if cfg == nil {
		cfg = fss.config
	}
	mask := cfg.NamingMasks.FileMask
	if mask == "" {
		mask = config.GetDefaultNamingMasks().FileMask
	}
	ext := filepath.Ext(currentPath)
	if ext == "" {
		ext = ".flac"
	}
	rel := fss.ProcessNamingMaskForFolder(mask, rec)
	return filepath.Join(cfg.OutputDirectory, rel+ext)
}

// MoveFile renames src to dst, copying across file systems when needed. An
// existing dst is never overwritten.
func (fss *FileSystemService) MoveFile(src, dst string) error {
	if fss.FileExists(dst) {
		return fmt.Errorf("destination already exists: %s", dst)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
