package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"phenofetch/internal/config"
	"phenofetch/internal/models"
)

// cfgFile holds the path to the config file specified by the user
var cfgFile string

// logLevel and logFormat hold the --log-level and --log-format flag values
var logLevel string
var logFormat string

// globalConfig holds the loaded configuration
var globalConfig models.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "phenofetch",
	Short: "A tool to crawl and download PhenoCam camera archives",
	Long: `Phenofetch browses the PhenoCam network's per-day archive pages
for a camera site, lists the images, thumbnails and metadata files it finds,
and optionally downloads them or estimates their total size.`,
	PersistentPreRunE: loadGlobalConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	config.SetDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default is ./config.toml or ~/.config/phenofetch/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Logging level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", config.DefaultLogFormat, "Logging format (text, json)")

	_ = viper.BindPFlag("loglevel", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logformat", rootCmd.PersistentFlags().Lookup("log-format"))
}

// loadGlobalConfig reads the config file (if any), applies environment and
// flag overrides through viper, and configures logging for the run.
func loadGlobalConfig(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "phenofetch"))
		}
	}

	viper.SetEnvPrefix("PHENOFETCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Debug("No config file found, using defaults and flags")
		} else {
			return fmt.Errorf("reading config file: %w", err)
		}
	} else {
		log.Infof("Using config file: %s", viper.ConfigFileUsed())
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("unmarshalling config: %w", err)
	}

	initLogging(viper.GetString("loglevel"), viper.GetString("logformat"))
	return nil
}

// initLogging applies the level and format to the global logrus logger.
func initLogging(level, format string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Invalid log level %q, defaulting to info", level)
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)

	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// newHTTPClient builds the client every command shares, honoring the
// configured timeout.
func newHTTPClient() *http.Client {
	timeout := globalConfig.TimeoutSec
	if timeout <= 0 {
		timeout = config.DefaultTimeoutSec
	}
	return &http.Client{Timeout: time.Duration(timeout) * time.Second}
}
