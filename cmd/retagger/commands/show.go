package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"retagger/internal/shared"
)

// NewShowCommand creates the command printing one file's decoded tags
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Print the decoded tags of a FLAC file.",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCommand,
	}
}

func runShowCommand(cmd *cobra.Command, args []string) error {
	_, container, err := initConfigAndServices()
	if err != nil {
		return err
	}

	track, err := container.Loader.Load(args[0])
	if err != nil {
		return err
	}

	shared.ColorHeader.Printf("%s\n", track.Path)
	shared.ColorMuted.Printf("%s, %d bytes, %.0fs\n", track.FileType, track.FileSize, track.Tags.Length)
	if !track.HasTags {
		shared.ColorWarning.Println("⚠️  no readable tags")
		return nil
	}
	for _, f := range track.Tags.Fields() {
		fmt.Printf("%-22s %s\n", f.Key, f.Value)
	}
	for _, p := range track.Pictures {
		shared.ColorMuted.Printf("picture type %d, %s, %dx%d, %d bytes\n", p.Type, p.MIME, p.Width, p.Height, p.Size())
	}
	return nil
}
