package merge

import "strings"

type indexedGenre struct {
	index int
	name  string
}

// SplitGenres expands compound "A/B" genre names into their parts. Plain
// names keep their order; the parts of a compound name are inserted at the
// position the compound held, each part claiming the next free index so no
// two parts compete for one slot. Names already present are skipped and the
// result holds every genre once.
func SplitGenres(genres []string) []string {
	var out []string
	var parts []indexedGenre
	for i, g := range genres {
		if !strings.Contains(g, "/") {
			out = append(out, strings.TrimSpace(g))
			continue
		}
		for _, part := range strings.Split(g, "/") {
			parts = append(parts, indexedGenre{index: i, name: strings.TrimSpace(part)})
		}
	}

	claimIndices(parts)

	for _, p := range parts {
		if p.name == "" || contains(out, p.name) {
			continue
		}
		at := p.index
		if at > len(out) {
			at = len(out)
		}
		out = append(out, "")
		copy(out[at+1:], out[at:])
		out[at] = p.name
	}

	return dedupe(out)
}

// claimIndices gives every part a distinct index, first come first served:
// a part whose index is taken moves to the next free one.
func claimIndices(parts []indexedGenre) {
	claimed := make(map[int]bool, len(parts))
	for i := range parts {
		idx := parts[i].index
		for claimed[idx] {
			idx++
		}
		claimed[idx] = true
		parts[i].index = idx
	}
}

func dedupe(list []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != "" && !contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
