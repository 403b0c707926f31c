package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"retagger/internal/core/library"
	"retagger/internal/core/search"
	"retagger/internal/shared"
)

// NewFetchCommand creates the command enriching files from the catalog
func NewFetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [path...]",
		Short: "Look files up in the catalog and merge the remote tags.",
		Long: `Look files up in the catalog and merge the remote tags.

Directories are expanded to the files directly inside them. Without --save
nothing is written; the merged tags are only printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFetchCommand,
	}

	cmd.Flags().Bool("interactive", false, "Choose between candidates when a search is ambiguous")
	cmd.Flags().Bool("save", false, "Write the merged tags to the files")
	return cmd
}

func runFetchCommand(cmd *cobra.Command, args []string) error {
	cfg, container, err := initConfigAndServices()
	if err != nil {
		return err
	}
	interactive, _ := cmd.Flags().GetBool("interactive")
	save, _ := cmd.Flags().GetBool("save")

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	paths = loadTracks(container, paths)
	if len(paths) == 0 {
		return shared.ErrNoItemsSelected
	}

	ctx := cmd.Context()
	tg := container.Tagger
	tg.ShowProgress = true

	container.Logger.Info("🔍 Fetching %d file(s) from %s", len(paths), cfg.Catalog)
	stats := tg.EnrichBatch(ctx, paths)

	if interactive {
		for _, p := range paths {
			_, err := search.Resolve(ctx, tg, p, false, shared.GetUserInput)
			if errors.Is(err, shared.ErrCancelled) {
				container.Logger.Warning("Candidate selection cancelled")
				break
			}
			if err != nil && !errors.Is(err, shared.ErrNoItemsSelected) {
				container.Logger.Error("%s: %v", p, err)
			}
		}
	}

	var toSave []string
	for _, p := range paths {
		t, ok := container.Collection.Get(p)
		if !ok {
			continue
		}
		if t.State == library.Unsuccessful {
			container.Logger.Warning("%s: %s", t.FileName, t.StateMessage)
			continue
		}
		if t.State == library.Matched || t.State == library.HasCandidates {
			toSave = append(toSave, p)
		}
	}
	printTrackTable(container.Collection.List())
	stats.PrintSummary("Fetch")

	if !save && interactive && len(toSave) > 0 {
		save = shared.GetYesNoInput(fmt.Sprintf("Save %d file(s)?", len(toSave)), "n")
	}
	if save && len(toSave) > 0 {
		if err := tg.SaveBatch(ctx, toSave); err != nil {
			printWarnings(cfg, container)
			return err
		}
	}
	printWarnings(cfg, container)
	return stats.Err()
}
