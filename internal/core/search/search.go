// Package search lets a user pick among the candidate matches of an
// ambiguous track on the command line.
package search

import (
	"context"
	"fmt"
	"strings"

	"retagger/internal/catalog"
	"retagger/internal/core/library"
	"retagger/internal/core/tagger"
	"retagger/internal/shared"
	"retagger/internal/tags"
)

// Prompter asks for one line of input, returning defaultValue on empty input.
type Prompter func(prompt, defaultValue string) string

// FormatSource renders one candidate as a numbered list line.
func FormatSource(n int, s tags.CandidateSource) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s - %s", n, s.Artist, s.Title)
	if s.Album != "" {
		fmt.Fprintf(&b, " (%s)", s.Album)
	}
	if s.Duration > 0 {
		fmt.Fprintf(&b, " [%d:%02d]", s.Duration/60, s.Duration%60)
	}
	fmt.Fprintf(&b, " score %.2f", s.Score)
	return b.String()
}

// ChooseCandidate lists the candidates of track and returns the one picked.
// With auto set the first candidate is taken without asking. Entering "q"
// returns shared.ErrCancelled.
func ChooseCandidate(track *library.Track, auto bool, prompt Prompter) (*tags.CandidateSource, error) {
	if len(track.Sources) == 0 {
		return nil, shared.ErrNoItemsSelected
	}
	if auto {
		s := track.Sources[0]
		return &s, nil
	}
	if prompt == nil {
		prompt = shared.GetUserInput
	}

	shared.ColorInfo.Printf("\n🔎 %d candidates for %s:\n", len(track.Sources), track.FileName)
	for i, s := range track.Sources {
		fmt.Println(FormatSource(i+1, s))
	}

	input := prompt("Pick a candidate ('q' to keep the current merge)", "1")
	if strings.EqualFold(strings.TrimSpace(input), "q") {
		return nil, shared.ErrCancelled
	}
	picked, err := shared.ParseSelectionInput(input, len(track.Sources))
	if err != nil {
		return nil, fmt.Errorf("invalid selection: %w", err)
	}
	if len(picked) == 0 {
		return nil, shared.ErrNoItemsSelected
	}
	s := track.Sources[picked[0]-1]
	return &s, nil
}

// Resolve asks the user to settle a track in the HasCandidates state and
// merges the chosen candidate. Other tracks are returned unchanged.
func Resolve(ctx context.Context, tg *tagger.Tagger, path string, auto bool, prompt Prompter) (*library.Track, error) {
	track, ok := tg.Collection().Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", library.ErrNotFound, path)
	}
	if track.State != library.HasCandidates {
		return track, nil
	}
	source, err := ChooseCandidate(track, auto, prompt)
	if err != nil {
		return track, err
	}
	return tg.SelectCandidate(ctx, path, catalog.ID(source.ID))
}
