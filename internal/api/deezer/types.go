package deezer

import (
	"encoding/json"
	"strconv"
	"strings"
)

// flexInt decodes numbers the gateway sends either bare or as strings.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

// flexID decodes ids that arrive as numbers or strings.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*id = flexID(s)
	return nil
}

type artistRef struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

type albumRef struct {
	ID      flexID `json:"id"`
	Title   string `json:"title"`
	Cover   string `json:"cover"`
	CoverXL string `json:"cover_xl"`
}

type searchResponse struct {
	Data  []searchTrack `json:"data"`
	Total int           `json:"total"`
}

type searchTrack struct {
	ID       flexID    `json:"id"`
	Title    string    `json:"title"`
	Link     string    `json:"link"`
	Duration int       `json:"duration"`
	Artist   artistRef `json:"artist"`
	Album    albumRef  `json:"album"`
}

type trackResponse struct {
	ID            flexID    `json:"id"`
	Title         string    `json:"title"`
	ISRC          string    `json:"isrc"`
	TrackPosition int       `json:"track_position"`
	DiskNumber    int       `json:"disk_number"`
	ReleaseDate   string    `json:"release_date"`
	BPM           float64   `json:"bpm"`
	Gain          float64   `json:"gain"`
	Artist        artistRef `json:"artist"`
	Album         albumRef  `json:"album"`
}

type albumResponse struct {
	ID          flexID    `json:"id"`
	Title       string    `json:"title"`
	UPC         string    `json:"upc"`
	Label       string    `json:"label"`
	ReleaseDate string    `json:"release_date"`
	Cover       string    `json:"cover"`
	CoverXL     string    `json:"cover_xl"`
	Artist      artistRef `json:"artist"`
	Genres      struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	} `json:"genres"`
}

type gwArtist struct {
	Name  string  `json:"ART_NAME"`
	Order flexInt `json:"ARTISTS_SONGS_ORDER"`
}

type gwSong struct {
	ID           flexID          `json:"SNG_ID"`
	Artists      []gwArtist      `json:"ARTISTS"`
	Contributors json.RawMessage `json:"SNG_CONTRIBUTORS"`
}

type gwAlbum struct {
	ID                  flexID  `json:"ALB_ID"`
	Copyright           string  `json:"COPYRIGHT"`
	TrackCount          flexInt `json:"NUMBER_TRACK"`
	DiscCount           flexInt `json:"NUMBER_DISK"`
	OriginalReleaseDate string  `json:"ORIGINAL_RELEASE_DATE"`
}

type gwLyrics struct {
	Text string `json:"LYRICS_TEXT"`
	Sync []struct {
		Timestamp string `json:"lrc_timestamp"`
		Line      string `json:"line"`
	} `json:"LYRICS_SYNC_JSON"`
}
