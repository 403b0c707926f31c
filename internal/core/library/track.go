package library

import (
	"encoding/json"
	"fmt"
	"strings"

	"retagger/internal/tags"
)

// MatchState is where a track stands in remote enrichment.
type MatchState int

const (
	// NotFetched: no fetch since the record was loaded or reloaded.
	NotFetched MatchState = iota
	// Unsuccessful: the last fetch found nothing or failed.
	Unsuccessful
	// HasCandidates: several hits; the first was merged and the caller may
	// pick another.
	HasCandidates
	// Matched: exactly one hit, or a candidate was chosen explicitly.
	Matched
	// Finalized: tags_to_save was written to disk.
	Finalized
)

var matchStateNames = []string{"not_fetched", "unsuccessful", "has_candidates", "matched", "finalized"}

func (s MatchState) String() string {
	if s < 0 || int(s) >= len(matchStateNames) {
		return fmt.Sprintf("MatchState(%d)", int(s))
	}
	return matchStateNames[s]
}

// MarshalJSON encodes the state by name.
func (s MatchState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the state name.
func (s *MatchState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseMatchState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseMatchState parses a state name.
func ParseMatchState(name string) (MatchState, error) {
	for i, n := range matchStateNames {
		if strings.EqualFold(n, name) {
			return MatchState(i), nil
		}
	}
	return NotFetched, fmt.Errorf("unknown match state %q", name)
}

// StateForHits maps the number of search hits to the resulting state.
func StateForHits(n int) MatchState {
	switch {
	case n <= 0:
		return Unsuccessful
	case n == 1:
		return Matched
	default:
		return HasCandidates
	}
}

// Track is everything known about one file. Path is the collection key.
type Track struct {
	Path          string `json:"filePath"`
	FileName      string `json:"fileName"`
	FileSize      int64  `json:"fileSize"`
	FileExtension string `json:"fileExtension"`
	FileType      string `json:"fileType"`

	// HasTags is false when the file could not be decoded.
	HasTags bool `json:"hasTags"`

	State        MatchState `json:"matchState"`
	StateMessage string     `json:"stateMessage,omitempty"`

	// Tags is the baseline last read from disk.
	Tags tags.Record `json:"tags"`
	// TagsRemote holds only the values the catalog supplied.
	TagsRemote tags.Record `json:"tagsRemote"`
	// TagsToSave is the working copy written by Save.
	TagsToSave tags.Record `json:"tagsToSave"`

	Sources  []tags.CandidateSource `json:"tagsSources"`
	Pictures []tags.Picture         `json:"pictures"`

	// Generation changes every time the collection stores this record.
	Generation uint64 `json:"generation"`
}

// Clone returns a deep copy of t.
func (t *Track) Clone() *Track {
	if t == nil {
		return nil
	}
	out := *t
	out.Tags = t.Tags.Clone()
	out.TagsRemote = t.TagsRemote.Clone()
	out.TagsToSave = t.TagsToSave.Clone()
	if t.Sources != nil {
		out.Sources = append([]tags.CandidateSource(nil), t.Sources...)
	}
	out.Pictures = tags.ClonePictures(t.Pictures)
	return &out
}

// SetTagsToSave replaces the working copy. A finalized record moves back to
// Matched when it has remote data, otherwise to NotFetched.
func (t *Track) SetTagsToSave(rec tags.Record) {
	t.TagsToSave = rec.Clone()
	if t.State == Finalized {
		if t.TagsRemote.IsZero() {
			t.State = NotFetched
		} else {
			t.State = Matched
		}
		t.StateMessage = ""
	}
}

// Title is a display name for the track: its title tag or its file name.
func (t *Track) Title() string {
	if t.Tags.Title != "" {
		return t.Tags.Title
	}
	return t.FileName
}
