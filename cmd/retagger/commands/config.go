package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"retagger/internal/config"
	"retagger/internal/services"
	"retagger/internal/shared"
)

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change configuration options.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [option]",
		Short: "Print one option, or all of them.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigGet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set [option] [value]",
		Short: "Change an option and save the config file.",
		Args:  cobra.ExactArgs(2),
		RunE:  runConfigSet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(configFile)
			if err != nil {
				return err
			}
			fmt.Println(abs)
			return nil
		},
	})
	return cmd
}

// readConfigFile loads the config file alone, without environment
// overrides, so that set never persists values taken from the environment.
func readConfigFile() (*config.Config, error) {
	configService := services.NewConfigService()
	if !shared.FileExists(configFile) {
		return configService.GetDefaultConfig(), nil
	}
	return configService.LoadConfig(configFile)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		v, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	}
	for _, name := range config.OptionNames() {
		v, _ := cfg.Get(name)
		fmt.Printf("%s = %s\n", shared.ColorInfo.Sprint(name), v)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := readConfigFile()
	if err != nil {
		return err
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	effective := *cfg
	if err := config.ApplyEnv(&effective, envFile); err != nil {
		return err
	}
	if err := services.NewConfigService().ValidateConfig(&effective); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.SaveConfig(configFile, cfg); err != nil {
		return err
	}
	shared.ColorSuccess.Printf("✅ %s saved to %s\n", args[0], configFile)
	return nil
}
