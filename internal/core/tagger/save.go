package tagger

import (
	"context"
	"fmt"
	"path/filepath"

	"retagger/internal/core/library"
	"retagger/internal/tags"
)

// Save writes the track's tags_to_save (or rec, when given) to its file,
// relocates the file when configured, rereads it and marks it Finalized.
// A failed write leaves the in-memory track untouched. A failed relocation
// still refreshes the track at its original path and returns the error.
func (t *Tagger) Save(ctx context.Context, path string, rec *tags.Record) (*library.Track, error) {
	track, err := t.save(path, rec)
	if track != nil {
		t.notify(ctx)
	}
	return track, err
}

// SaveBatch saves every path and notifies the media server once at the end
// if anything was written.
func (t *Tagger) SaveBatch(ctx context.Context, paths []string) error {
	stats := t.batch(ctx, "Saving", paths, func(path string) error {
		_, err := t.save(path, nil)
		return err
	})
	if stats.SuccessCount > 0 {
		t.notify(ctx)
	}
	if t.logger != nil {
		t.logger.Info("Saved %d file(s), %d failed", stats.SuccessCount, stats.FailedCount)
	}
	return stats.Err()
}

func (t *Tagger) save(path string, rec *tags.Record) (*library.Track, error) {
	snap, err := t.snapshot(path)
	if err != nil {
		return nil, err
	}
	toSave := snap.TagsToSave
	if rec != nil {
		toSave = rec.Clone()
	}

	if err := tags.WriteFile(snap.Path, toSave); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", snap.Path, err)
	}

	finalPath, relocErr := t.relocate(snap.Path, toSave)
	if relocErr != nil {
		t.warnings.AddRelocateWarning(snap.Path, relocErr.Error())
	}

	loaded, err := t.loader.Load(finalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to reload %s: %w", finalPath, err)
	}
	loaded.State = library.Finalized
	loaded.StateMessage = ""
	loaded.Sources = snap.Sources
	loaded.TagsRemote = snap.TagsRemote

	if err := t.collection.Rekey(snap.Path, loaded); err != nil {
		return nil, err
	}
	stored, err := t.snapshot(finalPath)
	if err != nil {
		return nil, err
	}
	if relocErr != nil {
		return stored, relocErr
	}
	return stored, nil
}

// relocate moves a saved file into the output directory when relocation is
// enabled and returns where the file now lives.
func (t *Tagger) relocate(path string, rec tags.Record) (string, error) {
	cfg := t.Config()
	if !cfg.RelocateOnSave || cfg.OutputDirectory == "" || t.fileSystem == nil {
		return path, nil
	}
	dst := t.fileSystem.RelocationPath(rec, path, cfg)
	if dst == "" || filepath.Clean(dst) == filepath.Clean(path) {
		return path, nil
	}
	if t.fileSystem.FileExists(dst) {
		return path, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}
	if err := t.fileSystem.EnsureDirectoryExists(filepath.Dir(dst)); err != nil {
		return path, fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}
	if err := t.fileSystem.MoveFile(path, dst); err != nil {
		return path, fmt.Errorf("failed to move %s to %s: %w", path, dst, err)
	}
	if t.logger != nil {
		t.logger.Debug("moved %s to %s", path, dst)
	}
	return dst, nil
}

func (t *Tagger) notify(ctx context.Context) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.LibraryChanged(ctx); err != nil {
		t.warnings.AddLibraryRescanWarning(t.notifier.Name(), err.Error())
		if t.logger != nil {
			t.logger.Warning("%s rescan failed: %v", t.notifier.Name(), err)
		}
	}
}
