package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"codeberg.org/snonux/pimsleur2anki/internal/archive"
	"codeberg.org/snonux/pimsleur2anki/internal/cli"
	"codeberg.org/snonux/pimsleur2anki/internal/processor"
)

func main() {
	// API keys may live in a .env file next to the data
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load .env: %v\n", err)
	}

	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, flags *cli.Flags) error {
	config, err := cli.ResolveConfig(flags)
	if err != nil {
		return err
	}

	// Handle --archive-sounds flag
	if flags.ArchiveSounds {
		if _, err := archive.ArchiveSounds(config.SoundsPath(), os.Stdout); err != nil {
			return fmt.Errorf("failed to archive sounds: %w", err)
		}
		return nil
	}

	proc := processor.NewProcessor(flags, config)
	if _, err := proc.Run(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("\nDone!\n")
	return nil
}
