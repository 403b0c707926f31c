package merge

import (
	"strings"

	"retagger/internal/catalog"
)

// RenderLyrics picks the lyrics text to store. Synchronised lines are
// rendered as "[timestamp] text" joined by CRLF when preferred and present;
// otherwise the plain text is used.
func RenderLyrics(l catalog.Lyrics, preferSync bool) string {
	if preferSync && len(l.Sync) > 0 {
		lines := make([]string, 0, len(l.Sync))
		for _, s := range l.Sync {
			if s.Timestamp != "" {
				lines = append(lines, s.Timestamp+" "+s.Line)
			} else {
				lines = append(lines, s.Line)
			}
		}
		return strings.Join(lines, "\r\n")
	}
	return l.Text
}
