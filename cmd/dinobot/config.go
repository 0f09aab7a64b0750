package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/dinobot/internal/config"
)

var flagConfigDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration dinobot would run with, after the config
file and the global flags are applied. With --defaults, print the
commented default file instead, a starting point for ~/.dinobot/config.yaml.

Examples:
  dinobot config
  dinobot config --defaults > ~/.dinobot/config.yaml`,
	Args: cobra.NoArgs,
	Run:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigDefaults, "defaults", false, "Print the commented default config")
}

func runConfig(cmd *cobra.Command, _ []string) {
	exitOnError(printConfig(cmd))
}

func printConfig(cmd *cobra.Command) error {
	w := cmd.OutOrStdout()
	if flagConfigDefaults {
		_, err := w.Write(config.DefaultYAML())
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
