// Package main provides the entry point for the langspeak CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/langspeak/internal/config"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "langspeak",
		Short: "Speak every language in its own voice",
		Long: paragraph(
			fmt.Sprintf("\nInsert %s into speech sequences so each run is read by a voice that speaks its language.", keyword("language changes")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return validateOptions()
		},
	}
)

func validateOptions() error {
	if debug || viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
		log.Debug("Using configuration file", "path", configFile)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	path, err := loadDefaultConfig(viper.GetViper())
	if err != nil {
		log.Warn("Could not load configuration", "error", err)
	}
	defaultConfigPath = path
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	config.SetDefaults(nil)

	rootCmd.AddCommand(injectCmd, filterCmd, detectCmd, voicesCmd, configCmd, manCmd)
}

// configSearchDirs lists the directories searched for langspeak.yml, most
// specific first.
func configSearchDirs() ([]string, error) {
	dirs, err := gap.NewScope(gap.User, "langspeak").ConfigDirs()
	if err != nil {
		return nil, fmt.Errorf("unable to find configuration directory: %w", err)
	}
	var overrides []string
	if c := os.Getenv("LANGSPEAK_CONFIG_HOME"); c != "" {
		overrides = append(overrides, c)
	}
	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		overrides = append(overrides, filepath.Join(c, "langspeak"))
	}
	return append(overrides, dirs...), nil
}

// loadDefaultConfig points v at the search directories and the LANGSPEAK_
// environment, then reads the first config file found. It returns the path
// a new config file should be written to when none exists.
func loadDefaultConfig(v *viper.Viper) (string, error) {
	dirs, err := configSearchDirs()
	if err != nil {
		return "", err
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	v.SetConfigName("langspeak")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("langspeak")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return "", fmt.Errorf("unable to parse configuration file: %w", err)
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		if _, err := config.LoadFromViper(v); err != nil {
			log.Warn("Configuration file has invalid settings", "path", used, "error", err)
		}
		return used, nil
	}
	return filepath.Join(dirs[0], "langspeak.yml"), nil
}
