// Package tagger runs enrichment and saves against a library.Collection.
//
// Every operation that talks to the catalog follows the same protocol:
// copy the track out of the collection, do the network work and the merge
// on the copy, then commit it back with CompareAndReplace. The collection
// lock is never held across a network call.
package tagger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/sync/semaphore"

	"retagger/internal/catalog"
	"retagger/internal/config"
	"retagger/internal/core/library"
	"retagger/internal/interfaces"
	"retagger/internal/merge"
	"retagger/internal/shared"
	"retagger/internal/tags"
)

// ErrDestinationExists is returned when relocation would overwrite a file.
var ErrDestinationExists = errors.New("destination file already exists")

// Tagger wires the collection to the catalog, the merge engine and disk.
type Tagger struct {
	cfg        atomic.Pointer[config.Config]
	collection *library.Collection
	assembler  *catalog.Assembler
	loader     library.TrackLoader
	fileSystem interfaces.FileSystemService
	notifier   interfaces.LibraryNotifier
	logger     interfaces.LoggerService
	warnings   *shared.WarningCollector

	// ShowProgress draws a progress bar for batches on a terminal.
	ShowProgress bool
}

// New creates a Tagger. loader is used to refresh tracks after a save and
// should be the one the collection was built with.
func New(cfg *config.Config, collection *library.Collection, assembler *catalog.Assembler, loader library.TrackLoader,
	fileSystem interfaces.FileSystemService, logger interfaces.LoggerService, warnings *shared.WarningCollector) *Tagger {
	t := &Tagger{
		collection: collection,
		assembler:  assembler,
		loader:     loader,
		fileSystem: fileSystem,
		logger:     logger,
		warnings:   warnings,
	}
	t.cfg.Store(cfg)
	return t
}

// Config returns the configuration in effect. Callers must treat it as
// read-only; publish changes with SetConfig.
func (t *Tagger) Config() *config.Config {
	return t.cfg.Load()
}

// SetConfig publishes a new configuration. Operations already running keep
// the one they started with.
func (t *Tagger) SetConfig(cfg *config.Config) {
	t.cfg.Store(cfg)
}

// SetNotifier registers a media server to tell about saved files. nil
// disables notification.
func (t *Tagger) SetNotifier(n interfaces.LibraryNotifier) {
	t.notifier = n
}

// Collection returns the collection the tagger operates on.
func (t *Tagger) Collection() *library.Collection {
	return t.collection
}

func (t *Tagger) policy() merge.Policy {
	return t.Config().Tagging
}

func (t *Tagger) snapshot(path string) (*library.Track, error) {
	track, ok := t.collection.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", library.ErrNotFound, filepath.Clean(path))
	}
	return track, nil
}

// commit stores next if the track was not changed since it was copied and
// returns the stored copy.
func (t *Tagger) commit(next *library.Track) (*library.Track, error) {
	if err := t.collection.CompareAndReplace(next); err != nil {
		return nil, err
	}
	return t.snapshot(next.Path)
}

func (t *Tagger) reportFailures(path string, p catalog.Payload) {
	for part, err := range p.Failures {
		t.warnings.AddPartialFetchWarning(path, string(part), err.Error())
		if t.logger != nil {
			t.logger.Debug("%s: %s lookup failed: %v", path, part, err)
		}
	}
}

// Enrich searches the catalog for the track at path and merges the first
// hit into its tags_to_save. A search that fails or finds nothing is not an
// error: the track becomes Unsuccessful with the reason in StateMessage.
// Errors are returned only when the track is missing or was changed while
// the search ran.
func (t *Tagger) Enrich(ctx context.Context, path string) (*library.Track, error) {
	snap, err := t.snapshot(path)
	if err != nil {
		return nil, err
	}
	pol := t.policy()

	res := t.assembler.Fetch(ctx, catalog.Query{
		Title:       snap.Tags.Title,
		Album:       snap.Tags.Album,
		Artist:      snap.Tags.Artist,
		FilePath:    snap.Path,
		UseFilename: pol.FetchWithFilename,
	})

	next := snap.Clone()
	next.Sources = res.Sources
	switch {
	case res.Err != nil:
		next.State = library.Unsuccessful
		next.StateMessage = res.Err.Error()
	case !res.Found():
		next.State = library.Unsuccessful
		next.StateMessage = fmt.Sprintf("%v for %s", catalog.ErrNoResults, res.Query)
		t.warnings.AddNoMatchWarning(snap.Path, res.Query)
	default:
		next.State = library.StateForHits(len(res.Hits))
		next.StateMessage = ""
		next.TagsToSave = merge.Apply(res.Payload, snap.TagsToSave, pol)
		next.TagsRemote = merge.Apply(res.Payload, tags.Record{}, pol)
		t.reportFailures(snap.Path, res.Payload)
	}

	return t.commit(next)
}

// SelectCandidate assembles the payload of a chosen candidate and merges it
// onto the track's baseline tags, replacing any earlier merge.
func (t *Tagger) SelectCandidate(ctx context.Context, path string, id catalog.ID) (*library.Track, error) {
	snap, err := t.snapshot(path)
	if err != nil {
		return nil, err
	}
	pol := t.policy()

	payload, err := t.assembler.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := snap.Clone()
	next.State = library.Matched
	next.StateMessage = ""
	next.TagsToSave = merge.Apply(payload, snap.Tags, pol)
	next.TagsRemote = merge.Apply(payload, tags.Record{}, pol)
	t.reportFailures(snap.Path, payload)

	return t.commit(next)
}

// UpdateTags replaces tags_to_save with rec.
func (t *Tagger) UpdateTags(path string, rec tags.Record) (*library.Track, error) {
	err := t.collection.Update(path, func(track *library.Track) error {
		track.SetTagsToSave(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t.snapshot(path)
}

// Reload rereads the track from disk, dropping every pending change.
func (t *Tagger) Reload(path string) (*library.Track, error) {
	if err := t.collection.Replace(path); err != nil {
		return nil, err
	}
	return t.snapshot(path)
}

// EnrichBatch enriches paths concurrently, bounded by the configured
// parallelism. A failing path never stops the others.
func (t *Tagger) EnrichBatch(ctx context.Context, paths []string) *shared.BatchStats {
	return t.batch(ctx, "Fetching", paths, func(path string) error {
		track, err := t.Enrich(ctx, path)
		if err != nil {
			return err
		}
		if track.State == library.Unsuccessful {
			return errSkipped
		}
		return nil
	})
}

var errSkipped = errors.New("skipped")

func (t *Tagger) batch(ctx context.Context, prefix string, paths []string, fn func(path string) error) *shared.BatchStats {
	stats := shared.NewBatchStats()
	parallelism := t.Config().Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	var bar *pb.ProgressBar
	if t.ShowProgress && shared.IsTTY() && len(paths) > 1 {
		bar = pb.New(len(paths))
		bar.SetTemplateString(`{{ string . "prefix" }} {{ counters . }} {{ bar . }} {{ percent . }}`)
		bar.Set("prefix", prefix)
		bar.Start()
	}

	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(int64(parallelism))
	for _, path := range paths {
		if err := sem.Acquire(ctx, 1); err != nil {
			stats.Fail(path, err)
			continue
		}
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer sem.Release(1)
			if bar != nil {
				defer bar.Increment()
			}

			switch err := fn(path); {
			case err == nil:
				stats.Success()
			case errors.Is(err, errSkipped):
				stats.Skip()
			default:
				stats.Fail(path, err)
			}
		}(path)
	}
	wg.Wait()

	if bar != nil {
		bar.Finish()
	}
	return stats
}
