package commands

import (
	"github.com/spf13/cobra"

	"retagger/internal/shared"
)

// NewSaveCommand creates the command rewriting files from their tags
func NewSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save [path...]",
		Short: "Rewrite files with their current tags, relocating them when configured.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSaveCommand,
	}
}

func runSaveCommand(cmd *cobra.Command, args []string) error {
	cfg, container, err := initConfigAndServices()
	if err != nil {
		return err
	}

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	paths = loadTracks(container, paths)
	if len(paths) == 0 {
		return shared.ErrNoItemsSelected
	}

	container.Tagger.ShowProgress = true
	err = container.Tagger.SaveBatch(cmd.Context(), paths)
	printWarnings(cfg, container)
	return err
}
