// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"firestige.xyz/dissector/internal/config"
	"firestige.xyz/dissector/internal/log"

	_ "firestige.xyz/dissector/plugins" // built-in plugins
)

var (
	// Global flags
	configFile string
	envFile    string

	// cfg is loaded once per invocation by the root pre-run hook.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dissector",
	Short: "Dissector - layered packet decoder for Ethernet, IP, TCP/UDP/ICMP and DNS",
	Long: `Dissector decodes raw Ethernet frames layer by layer into structured records.

Frames come from a capture file (pcap or pcapng), a live interface (AF_PACKET,
Linux only) or hexadecimal strings on the command line. Decoded records are
filtered by processors and written by reporters (console or Kafka).

Configuration is read from the file given by --config, with DISSECTOR_*
environment variables taking precedence. A .env file in the working directory
is loaded first when present.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadGlobalConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (defaults only when empty)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"dotenv file loaded before the config, ignored when missing")

	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(frameCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadGlobalConfig(cmd *cobra.Command, args []string) error {
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := log.Init(c.Log); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	cfg = c
	return nil
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Debug("loaded env file", "path", path)
	return nil
}
