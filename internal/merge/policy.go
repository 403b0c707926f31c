// Package merge applies remote catalog data onto a tag record under a
// per-field policy.
package merge

// Policy switches which fields the remote catalog may overwrite and how the
// written values are formatted. The zero Policy touches nothing.
type Policy struct {
	Separator string `json:"tag_separator" yaml:"tag_separator"`

	Title        bool `json:"tag_dz_title" yaml:"tag_dz_title"`
	Artist       bool `json:"tag_dz_artist" yaml:"tag_dz_artist"`
	Album        bool `json:"tag_dz_album" yaml:"tag_dz_album"`
	AlbumArtist  bool `json:"tag_dz_album_artist" yaml:"tag_dz_album_artist"`
	Composer     bool `json:"tag_dz_composer" yaml:"tag_dz_composer"`
	Performer    bool `json:"tag_dz_performer" yaml:"tag_dz_performer"`
	Producer     bool `json:"tag_dz_producer" yaml:"tag_dz_producer"`
	Genre        bool `json:"tag_dz_genre" yaml:"tag_dz_genre"`
	Lyrics       bool `json:"tag_dz_lyrics" yaml:"tag_dz_lyrics"`
	Copyright    bool `json:"tag_dz_copyright" yaml:"tag_dz_copyright"`
	TrackNumber  bool `json:"tag_dz_track_number" yaml:"tag_dz_track_number"`
	TrackTotal   bool `json:"tag_dz_track_total" yaml:"tag_dz_track_total"`
	DiskNumber   bool `json:"tag_dz_disk_number" yaml:"tag_dz_disk_number"`
	DiskTotal    bool `json:"tag_dz_disk_total" yaml:"tag_dz_disk_total"`
	Date         bool `json:"tag_dz_date" yaml:"tag_dz_date"`
	Year         bool `json:"tag_dz_year" yaml:"tag_dz_year"`
	OriginalDate bool `json:"tag_dz_original_date" yaml:"tag_dz_original_date"`
	Label        bool `json:"tag_dz_label" yaml:"tag_dz_label"`
	Barcode      bool `json:"tag_dz_barcode" yaml:"tag_dz_barcode"`
	ISRC         bool `json:"tag_dz_isrc" yaml:"tag_dz_isrc"`
	BPM          bool `json:"tag_dz_bpm" yaml:"tag_dz_bpm"`
	TrackGain    bool `json:"tag_dz_replaygain_track_gain" yaml:"tag_dz_replaygain_track_gain"`
	SourceID     bool `json:"tag_dz_source_id" yaml:"tag_dz_source_id"`

	PadTrack           bool `json:"tag_pad_track" yaml:"tag_pad_track"`
	PadTrackTotal      bool `json:"tag_pad_track_total" yaml:"tag_pad_track_total"`
	PadDisk            bool `json:"tag_pad_disk" yaml:"tag_pad_disk"`
	PadDiskTotal       bool `json:"tag_pad_disk_total" yaml:"tag_pad_disk_total"`
	DateAsYear         bool `json:"tag_date_as_year" yaml:"tag_date_as_year"`
	OriginalDateAsYear bool `json:"tag_originaldate_as_year" yaml:"tag_originaldate_as_year"`
	PreferSyncLyrics   bool `json:"tag_prefer_sync_lyrics" yaml:"tag_prefer_sync_lyrics"`

	// FetchWithFilename lets the search fall back to the file's base name
	// when title, album and artist are all empty. It does not affect Apply.
	FetchWithFilename bool `json:"tag_fetch_with_filename" yaml:"tag_fetch_with_filename"`
}

// DefaultPolicy overwrites every field and pads track and disc numbers.
func DefaultPolicy() Policy {
	return Policy{
		Separator:        ", ",
		Title:            true,
		Artist:           true,
		Album:            true,
		AlbumArtist:      true,
		Composer:         true,
		Performer:        true,
		Producer:         true,
		Genre:            true,
		Lyrics:           true,
		Copyright:        true,
		TrackNumber:      true,
		TrackTotal:       true,
		DiskNumber:       true,
		DiskTotal:        true,
		Date:             true,
		Year:             true,
		OriginalDate:     true,
		Label:            true,
		Barcode:          true,
		ISRC:             true,
		BPM:              true,
		TrackGain:        true,
		SourceID:         true,
		PadTrack:         true,
		PadTrackTotal:    true,
		PadDisk:          true,
		PadDiskTotal:     true,
		PreferSyncLyrics: true,
	}
}

// Overwrites reports whether any field switch is on.
func (p Policy) Overwrites() bool {
	return p.Title || p.Artist || p.Album || p.AlbumArtist || p.Composer || p.Performer ||
		p.Producer || p.Genre || p.Lyrics || p.Copyright || p.TrackNumber || p.TrackTotal ||
		p.DiskNumber || p.DiskTotal || p.Date || p.Year || p.OriginalDate || p.Label ||
		p.Barcode || p.ISRC || p.BPM || p.TrackGain || p.SourceID
}
