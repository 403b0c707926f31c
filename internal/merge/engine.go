package merge

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"retagger/internal/catalog"
	"retagger/internal/tags"
)

// Apply returns a copy of target with the payload written into every field
// the policy enables. target itself is never modified. A field whose source
// is missing from the payload keeps its current value.
func Apply(p catalog.Payload, target tags.Record, pol Policy) tags.Record {
	out := target.Clone()
	var artists []string

	if t := p.Track; t != nil {
		setString(&out.Title, t.Title, pol.Title)
		setString(&out.Album, t.AlbumTitle, pol.Album)
		if pol.AlbumArtist {
			albumArtist := t.ArtistName
			if p.Album != nil && p.Album.Artist != "" {
				albumArtist = p.Album.Artist
			}
			setString(&out.AlbumArtist, albumArtist, true)
		}
		if t.ArtistName != "" {
			artists = append(artists, t.ArtistName)
		}
		if pol.TrackNumber && t.TrackPosition > 0 {
			out.TrackNumber = formatCount(t.TrackPosition, pol.PadTrack)
		}
		if pol.DiskNumber && t.DiskNumber > 0 {
			out.DiscNumber = formatCount(t.DiskNumber, pol.PadDisk)
		}
		if t.ReleaseDate != "" {
			if pol.Date {
				if pol.DateAsYear {
					out.Date = yearOf(t.ReleaseDate)
				} else {
					out.Date = t.ReleaseDate
				}
			}
			if pol.Date || pol.Year {
				out.Year = yearOf(t.ReleaseDate)
			}
		}
		setString(&out.ISRC, t.ISRC, pol.ISRC)
		if pol.BPM && t.BPM != 0 {
			out.BPM = formatFloat(t.BPM)
		}
		if pol.TrackGain && t.Gain != 0 {
			out.ReplayGainTrackGain = formatFloat(t.Gain) + " dB"
		}
		setString(&out.SourceID, string(t.ID), pol.SourceID)
	}

	if e := p.ExtendedTrack; e != nil {
		artists = appendUnique(artists, orderedArtists(e.Artists)...)
		if pol.Composer {
			setRole(&out.Composer, e.Contributors, "composer", pol.Separator)
		}
		if pol.Performer {
			setRole(&out.Performer, e.Contributors, "performer", pol.Separator)
		}
		if pol.Producer {
			setRole(&out.Producer, e.Contributors, "producer", pol.Separator)
		}
	}

	if a := p.Album; a != nil {
		if pol.Genre {
			setString(&out.Genre, strings.Join(SplitGenres(a.Genres), pol.Separator), true)
		}
		setString(&out.Label, a.Label, pol.Label)
		setString(&out.Barcode, a.UPC, pol.Barcode)
	}

	if a := p.ExtendedAlbum; a != nil {
		setString(&out.Copyright, a.Copyright, pol.Copyright)
		if pol.TrackTotal && a.TrackCount > 0 {
			out.TrackTotal = formatCount(a.TrackCount, pol.PadTrackTotal)
		}
		if pol.DiskTotal && a.DiscCount > 0 {
			out.DiscTotal = formatCount(a.DiscCount, pol.PadDiskTotal)
		}
		if pol.OriginalDate && a.OriginalReleaseDate != "" {
			if pol.OriginalDateAsYear {
				out.OriginalDate = yearOf(a.OriginalReleaseDate)
			} else {
				out.OriginalDate = a.OriginalReleaseDate
			}
		}
	}

	if l := p.Lyrics; l != nil && pol.Lyrics {
		setString(&out.Lyrics, RenderLyrics(*l, pol.PreferSyncLyrics), true)
	}

	if pol.Artist && len(artists) > 0 {
		out.Artist = strings.Join(artists, pol.Separator)
	}
	return out
}

func setString(dst *string, value string, enabled bool) {
	if enabled && value != "" {
		*dst = value
	}
}

func setRole(dst *string, contributors map[string][]string, role, sep string) {
	names, ok := contributors[role]
	if !ok || len(names) == 0 {
		return
	}
	*dst = strings.Join(names, sep)
}

// orderedArtists sorts credits by their declared order, keeping the catalog
// order for ties.
func orderedArtists(credits []catalog.Contributor) []string {
	sorted := make([]catalog.Contributor, len(credits))
	copy(sorted, credits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	names := make([]string, 0, len(sorted))
	for _, c := range sorted {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if !contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func formatCount(n int, pad bool) string {
	if pad {
		return fmt.Sprintf("%02d", n)
	}
	return strconv.Itoa(n)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// yearOf returns the first four characters of a release date.
func yearOf(date string) string {
	if len(date) < 4 {
		return date
	}
	return date[:4]
}
