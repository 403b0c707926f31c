package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"retagger/internal/server"
	"retagger/internal/services"
)

// NewServeCommand creates the command running the local command API
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local JSON command API.",
		Args:  cobra.NoArgs,
		RunE:  runServeCommand,
	}
	cmd.Flags().String("addr", "", "Listen address (defaults to server_addr from the config)")
	cmd.Flags().String("dir", "", "Directory to load before serving")
	return cmd
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	cfg, container, err := initConfigAndServices()
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ServerAddr
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		if _, err := container.Collection.LoadDirectory(dir); err != nil {
			return err
		}
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	if jl, ok := container.Logger.(*services.JSONLogger); ok {
		logger = jl.Zerolog()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := server.New(configFile, container.Tagger, logger)
	return s.ListenAndServe(ctx, addr)
}
