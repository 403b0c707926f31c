package tags

import "strings"

type fieldSpec struct {
	// keys[0] is the canonical spelling; the rest are aliases.
	keys    []string
	multi   bool
	numeric bool
	ptr     func(*Record) *string
}

var fieldTable = []fieldSpec{
	{keys: []string{"TITLE"}, ptr: func(r *Record) *string { return &r.Title }},
	{keys: []string{"ARTIST"}, multi: true, ptr: func(r *Record) *string { return &r.Artist }},
	{keys: []string{"ALBUM"}, ptr: func(r *Record) *string { return &r.Album }},
	{keys: []string{"ALBUMARTIST"}, ptr: func(r *Record) *string { return &r.AlbumArtist }},
	{keys: []string{"COMPOSER"}, multi: true, ptr: func(r *Record) *string { return &r.Composer }},
	{keys: []string{"PERFORMER"}, multi: true, ptr: func(r *Record) *string { return &r.Performer }},
	{keys: []string{"PRODUCER"}, multi: true, ptr: func(r *Record) *string { return &r.Producer }},
	{keys: []string{"GENRE"}, ptr: func(r *Record) *string { return &r.Genre }},
	{keys: []string{"COMMENT"}, ptr: func(r *Record) *string { return &r.Comment }},
	{keys: []string{"DESCRIPTION"}, ptr: func(r *Record) *string { return &r.Description }},
	{keys: []string{"COPYRIGHT"}, ptr: func(r *Record) *string { return &r.Copyright }},
	{keys: []string{"LYRICS"}, ptr: func(r *Record) *string { return &r.Lyrics }},
	{keys: []string{"TRACKNUMBER"}, numeric: true, ptr: func(r *Record) *string { return &r.TrackNumber }},
	{keys: []string{"TRACKTOTAL", "TOTALTRACKS"}, numeric: true, ptr: func(r *Record) *string { return &r.TrackTotal }},
	{keys: []string{"DISCNUMBER"}, numeric: true, ptr: func(r *Record) *string { return &r.DiscNumber }},
	{keys: []string{"DISCTOTAL", "TOTALDISCS"}, numeric: true, ptr: func(r *Record) *string { return &r.DiscTotal }},
	{keys: []string{"DATE"}, ptr: func(r *Record) *string { return &r.Date }},
	{keys: []string{"YEAR"}, numeric: true, ptr: func(r *Record) *string { return &r.Year }},
	{keys: []string{"ORIGINALDATE"}, ptr: func(r *Record) *string { return &r.OriginalDate }},
	{keys: []string{"LABEL"}, multi: true, ptr: func(r *Record) *string { return &r.Label }},
	{keys: []string{"BARCODE"}, ptr: func(r *Record) *string { return &r.Barcode }},
	{keys: []string{"ISRC"}, ptr: func(r *Record) *string { return &r.ISRC }},
	{keys: []string{"BPM"}, ptr: func(r *Record) *string { return &r.BPM }},
	{keys: []string{"REPLAYGAIN_TRACK_GAIN"}, ptr: func(r *Record) *string { return &r.ReplayGainTrackGain }},
	{keys: []string{"REPLAYGAIN_TRACK_PEAK"}, ptr: func(r *Record) *string { return &r.ReplayGainTrackPeak }},
	{keys: []string{"REPLAYGAIN_ALBUM_GAIN"}, ptr: func(r *Record) *string { return &r.ReplayGainAlbumGain }},
	{keys: []string{"REPLAYGAIN_ALBUM_PEAK"}, ptr: func(r *Record) *string { return &r.ReplayGainAlbumPeak }},
	{keys: []string{"SOURCEID"}, ptr: func(r *Record) *string { return &r.SourceID }},
	{keys: []string{"ENCODER"}, ptr: func(r *Record) *string { return &r.Encoder }},
}

// fieldIndex maps an upper-cased key (canonical or alias) to its fieldTable row.
var fieldIndex = func() map[string]int {
	idx := make(map[string]int)
	for i, f := range fieldTable {
		for _, k := range f.keys {
			idx[k] = i
		}
	}
	return idx
}()

func lookupField(key string) (int, bool) {
	i, ok := fieldIndex[strings.ToUpper(key)]
	return i, ok
}

// IsKnownKey reports whether a comment key maps to a Record field rather than
// to the extra tags.
func IsKnownKey(key string) bool {
	_, ok := lookupField(key)
	return ok
}

// KnownKeys lists the canonical spelling of every recognised key.
func KnownKeys() []string {
	out := make([]string, 0, len(fieldTable))
	for _, f := range fieldTable {
		out = append(out, f.keys[0])
	}
	return out
}

// Fields lists the non-empty known fields of r under their canonical keys,
// in table order, followed by the extra tags.
func (r Record) Fields() []ExtraTag {
	var out []ExtraTag
	for _, f := range fieldTable {
		if v := *f.ptr(&r); v != "" {
			out = append(out, ExtraTag{Key: f.keys[0], Value: v})
		}
	}
	return append(out, r.ExtraTags...)
}
