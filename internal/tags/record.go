// Package tags holds the structured view of an audio file's metadata and the
// codec that maps it to and from a FLAC Vorbis comment block.
package tags

// ExtraTag is a comment frame whose key is not one of the recognised fields.
type ExtraTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Record is the decoded metadata of one audio file. Numeric fields are kept
// as display strings because files routinely carry placeholders or padded
// values in them.
type Record struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	AlbumArtist string `json:"albumArtist"`
	Composer    string `json:"composer"`
	Performer   string `json:"performer"`
	Producer    string `json:"producer"`
	Genre       string `json:"genre"`
	Comment     string `json:"comment"`
	Description string `json:"description"`
	Copyright   string `json:"copyright"`
	Lyrics      string `json:"lyrics"`

	TrackNumber string `json:"trackNumber"`
	TrackTotal  string `json:"trackTotal"`
	DiscNumber  string `json:"discNumber"`
	DiscTotal   string `json:"discTotal"`

	Date         string `json:"date"`
	Year         string `json:"year"`
	OriginalDate string `json:"originalDate"`

	Label   string `json:"label"`
	Barcode string `json:"barcode"`
	ISRC    string `json:"isrc"`
	BPM     string `json:"bpm"`

	ReplayGainTrackGain string `json:"replayGainTrackGain"`
	ReplayGainTrackPeak string `json:"replayGainTrackPeak"`
	ReplayGainAlbumGain string `json:"replayGainAlbumGain"`
	ReplayGainAlbumPeak string `json:"replayGainAlbumPeak"`

	SourceID string `json:"sourceId"`
	Encoder  string `json:"encoder"`

	// Length in seconds, taken from the stream properties. Never encoded.
	Length float64 `json:"length"`

	ExtraTags []ExtraTag `json:"extraTags"`
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	if r.ExtraTags != nil {
		out.ExtraTags = make([]ExtraTag, len(r.ExtraTags))
		copy(out.ExtraTags, r.ExtraTags)
	}
	return out
}

// IsZero reports whether r carries no values at all.
func (r Record) IsZero() bool {
	if len(r.ExtraTags) > 0 || r.Length != 0 {
		return false
	}
	for _, f := range fieldTable {
		if *f.ptr(&r) != "" {
			return false
		}
	}
	return true
}

// Picture is an embedded image. The merge engine never looks inside it.
type Picture struct {
	Type        uint32 `json:"type"`
	MIME        string `json:"mime"`
	Description string `json:"description"`
	Width       uint32 `json:"width"`
	Height      uint32 `json:"height"`
	Data        []byte `json:"-"`
}

// Size is the image payload length in bytes.
func (p Picture) Size() int {
	return len(p.Data)
}

// ClonePictures deep-copies a picture list.
func ClonePictures(in []Picture) []Picture {
	if in == nil {
		return nil
	}
	out := make([]Picture, len(in))
	for i, p := range in {
		out[i] = p
		out[i].Data = append([]byte(nil), p.Data...)
	}
	return out
}

// CandidateSource summarises one remote search hit so a caller can choose
// between ambiguous matches.
type CandidateSource struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	Cover    string  `json:"cover"`
	Duration int     `json:"duration"`
	Link     string  `json:"link"`
	Score    float64 `json:"score"`
}
