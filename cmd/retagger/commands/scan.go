package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"retagger/internal/core/library"
	"retagger/internal/shared"
)

// NewScanCommand creates the directory scan command
func NewScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [directory]",
		Short: "List the FLAC files in a directory with their current tags.",
		Args:  cobra.ExactArgs(1),
		RunE:  runScanCommand,
	}
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	cfg, container, err := initConfigAndServices()
	if err != nil {
		return err
	}

	n, err := container.Collection.LoadDirectory(args[0])
	if err != nil {
		return err
	}
	container.Logger.Info("📂 Loaded %d file(s) from %s", n, args[0])
	printTrackTable(container.Collection.List())
	printWarnings(cfg, container)
	return nil
}

func printTrackTable(tracks []*library.Track) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATE\tFILE\tTITLE\tARTIST\tALBUM\tTRACK")
	for _, t := range tracks {
		state := shared.MatchStateColor(t.State.String()).Sprint(t.State.String())
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			state,
			shared.TruncateString(t.FileName, 40),
			shared.TruncateString(t.Title(), 40),
			shared.TruncateString(t.TagsToSave.Artist, 30),
			shared.TruncateString(t.TagsToSave.Album, 30),
			t.TagsToSave.TrackNumber)
	}
	w.Flush()
}
