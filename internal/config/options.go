package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type option struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringOption(field func(*Config) *string) option {
	return option{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			*field(c) = v
			return nil
		},
	}
}

func boolOption(field func(*Config) *bool) option {
	return option{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", v)
			}
			*field(c) = b
			return nil
		},
	}
}

func intOption(field func(*Config) *int) option {
	return option{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("expected a number, got %q", v)
			}
			*field(c) = n
			return nil
		},
	}
}

// options lists every setting addressable by name, keyed by the name used
// in the config file.
var options = map[string]option{
	"catalog":               stringOption(func(c *Config) *string { return &c.Catalog }),
	"deezer_api_url":        stringOption(func(c *Config) *string { return &c.DeezerAPIURL }),
	"deezer_gateway_url":    stringOption(func(c *Config) *string { return &c.DeezerGatewayURL }),
	"spotify_client_id":     stringOption(func(c *Config) *string { return &c.SpotifyClientID }),
	"spotify_client_secret": stringOption(func(c *Config) *string { return &c.SpotifyClientSecret }),
	"navidrome_url":         stringOption(func(c *Config) *string { return &c.NavidromeURL }),
	"navidrome_username":    stringOption(func(c *Config) *string { return &c.NavidromeUsername }),
	"navidrome_password":    stringOption(func(c *Config) *string { return &c.NavidromePassword }),
	"output_directory":      stringOption(func(c *Config) *string { return &c.OutputDirectory }),
	"relocate_on_save":      boolOption(func(c *Config) *bool { return &c.RelocateOnSave }),
	"file_mask":             stringOption(func(c *Config) *string { return &c.NamingMasks.FileMask }),
	"parallelism":           intOption(func(c *Config) *int { return &c.Parallelism }),
	"max_retry_attempts":    intOption(func(c *Config) *int { return &c.MaxRetryAttempts }),
	"warning_behavior":      stringOption(func(c *Config) *string { return &c.WarningBehavior }),
	"log_format":            stringOption(func(c *Config) *string { return &c.LogFormat }),
	"server_addr":           stringOption(func(c *Config) *string { return &c.ServerAddr }),

	"tag_separator":                stringOption(func(c *Config) *string { return &c.Tagging.Separator }),
	"tag_dz_title":                 boolOption(func(c *Config) *bool { return &c.Tagging.Title }),
	"tag_dz_artist":                boolOption(func(c *Config) *bool { return &c.Tagging.Artist }),
	"tag_dz_album":                 boolOption(func(c *Config) *bool { return &c.Tagging.Album }),
	"tag_dz_album_artist":          boolOption(func(c *Config) *bool { return &c.Tagging.AlbumArtist }),
	"tag_dz_composer":              boolOption(func(c *Config) *bool { return &c.Tagging.Composer }),
	"tag_dz_performer":             boolOption(func(c *Config) *bool { return &c.Tagging.Performer }),
	"tag_dz_producer":              boolOption(func(c *Config) *bool { return &c.Tagging.Producer }),
	"tag_dz_genre":                 boolOption(func(c *Config) *bool { return &c.Tagging.Genre }),
	"tag_dz_lyrics":                boolOption(func(c *Config) *bool { return &c.Tagging.Lyrics }),
	"tag_dz_copyright":             boolOption(func(c *Config) *bool { return &c.Tagging.Copyright }),
	"tag_dz_track_number":          boolOption(func(c *Config) *bool { return &c.Tagging.TrackNumber }),
	"tag_dz_track_total":           boolOption(func(c *Config) *bool { return &c.Tagging.TrackTotal }),
	"tag_dz_disk_number":           boolOption(func(c *Config) *bool { return &c.Tagging.DiskNumber }),
	"tag_dz_disk_total":            boolOption(func(c *Config) *bool { return &c.Tagging.DiskTotal }),
	"tag_dz_date":                  boolOption(func(c *Config) *bool { return &c.Tagging.Date }),
	"tag_dz_year":                  boolOption(func(c *Config) *bool { return &c.Tagging.Year }),
	"tag_dz_original_date":         boolOption(func(c *Config) *bool { return &c.Tagging.OriginalDate }),
	"tag_dz_label":                 boolOption(func(c *Config) *bool { return &c.Tagging.Label }),
	"tag_dz_barcode":               boolOption(func(c *Config) *bool { return &c.Tagging.Barcode }),
	"tag_dz_isrc":                  boolOption(func(c *Config) *bool { return &c.Tagging.ISRC }),
	"tag_dz_bpm":                   boolOption(func(c *Config) *bool { return &c.Tagging.BPM }),
	"tag_dz_replaygain_track_gain": boolOption(func(c *Config) *bool { return &c.Tagging.TrackGain }),
	"tag_dz_source_id":             boolOption(func(c *Config) *bool { return &c.Tagging.SourceID }),
	"tag_pad_track":                boolOption(func(c *Config) *bool { return &c.Tagging.PadTrack }),
	"tag_pad_track_total":          boolOption(func(c *Config) *bool { return &c.Tagging.PadTrackTotal }),
	"tag_pad_disk":                 boolOption(func(c *Config) *bool { return &c.Tagging.PadDisk }),
	"tag_pad_disk_total":           boolOption(func(c *Config) *bool { return &c.Tagging.PadDiskTotal }),
	"tag_date_as_year":             boolOption(func(c *Config) *bool { return &c.Tagging.DateAsYear }),
	"tag_originaldate_as_year":     boolOption(func(c *Config) *bool { return &c.Tagging.OriginalDateAsYear }),
	"tag_prefer_sync_lyrics":       boolOption(func(c *Config) *bool { return &c.Tagging.PreferSyncLyrics }),
	"tag_fetch_with_filename":      boolOption(func(c *Config) *bool { return &c.Tagging.FetchWithFilename }),
}

// ErrUnknownOption is returned by Get and Set for names not in OptionNames.
var ErrUnknownOption = errors.New("unknown option")

// OptionNames lists every name accepted by Get and Set, sorted.
func OptionNames() []string {
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the value of one option as a string.
func (cfg *Config) Get(name string) (string, error) {
	o, ok := options[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownOption, name)
	}
	return o.get(cfg), nil
}

// Set parses value into one option.
func (cfg *Config) Set(name, value string) error {
	o, ok := options[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownOption, name)
	}
	if err := o.set(cfg, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return nil
}
