package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/virtualboard/vb-ident/internal/config"
)

var (
	rootCmd = &cobra.Command{
		Use:           "vbid",
		Short:         "Turn arbitrary strings into safe identifiers",
		Long:          "vbid replaces every character outside [A-Za-z0-9] with an underscore, for names used in generated code and file names.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Current(); err == nil {
				return nil
			}
			opts := config.New()
			if err := opts.Init(flags); err != nil {
				return WrapCLIError(ExitCodeValidation, err)
			}
			cmd.SetContext(opts.WithContext(cmd.Context()))
			return nil
		},
	}

	flags config.Flags
)

// Execute runs the root command.
func Execute() error {
	registerCommands()
	err := rootCmd.Execute()
	if opts, cerr := config.Current(); cerr == nil {
		if cerr := opts.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "failed to close resources: %v\n", cerr)
		}
	}
	return err
}

// RootCommand returns the configured root command; primarily for testing scenarios.
func RootCommand() *cobra.Command {
	registerCommands()
	return rootCmd
}

// registerCommands ensures all subcommands are attached before execution.
func registerCommands() {
	if len(rootCmd.Commands()) > 0 {
		return
	}
	rootCmd.PersistentFlags().BoolVar(&flags.JSON, "json", false, "Output machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flags.Mode, "mode", "", "Character granularity: rune or byte (default rune)")
	rootCmd.PersistentFlags().StringVar(&flags.LogFile, "log-file", "", "File to write verbose logs")
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Optional YAML config file")

	rootCmd.AddCommand(newSanitizeCommand())
	rootCmd.AddCommand(newBatchCommand())
	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newUpgradeCommand())
}
