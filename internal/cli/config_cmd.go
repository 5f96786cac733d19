package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/captionforge/captionforge/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage captionforge config documents",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a sample config document",
	Long: `Write a sample config document with every setting at its default value.
The document is written to info.json in the current directory unless a path
is given. Existing files are left alone unless --force is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate a config document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile()
		if len(args) == 1 {
			path = args[0]
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		fmt.Printf("Config OK: %s -> %s\n", cfg.Filename, cfg.Output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigFile()
	if len(args) == 1 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("check %s: %w", path, err)
	}

	if err := config.CreateSample(path); err != nil {
		return err
	}

	absPath, _ := filepath.Abs(path)
	fmt.Printf("Sample config written: %s\n", absPath)
	return nil
}
