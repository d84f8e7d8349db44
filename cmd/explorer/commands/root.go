// Package commands holds the cobra commands of the explorer CLI.
package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.vocdoni.io/explorer/config"
	"go.vocdoni.io/explorer/internal"
	"go.vocdoni.io/explorer/log"
)

// cli is the state shared by the commands of a command tree.
type cli struct {
	cfg *config.ExplorerCfg
	au  aurora.Aurora
}

// NewRootCmd returns the explorer command tree.
func NewRootCmd() *cobra.Command {
	c := &cli{cfg: config.NewConfig(), au: aurora.NewAurora(false)}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	root := &cobra.Command{
		Use:               "explorer",
		Short:             "election results explorer",
		Version:           internal.Version,
		PersistentPreRunE: c.loadConfig,
		SilenceUsage:      true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&c.cfg.DataDir, "dataDir", filepath.Join(home, ".explorer"),
		"directory holding the explorer.yml config file")
	flags.StringVar(&c.cfg.LogLevel, "logLevel", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&c.cfg.LogOutput, "logOutput", c.cfg.LogOutput, "log output (stdout, stderr or filepath)")
	flags.StringVar(&c.cfg.LogErrorFile, "logErrorFile", "", "log errors and warnings to a file")
	flags.StringSliceVar(&c.cfg.Languages, "lang", c.cfg.Languages,
		"preferred languages for the election texts, most preferred first")
	flags.BoolVar(&c.cfg.Color, "color", c.cfg.Color, "colorize output")
	flags.BoolVar(&c.cfg.JSON, "json", false, "print JSON instead of tables")
	flags.StringVar(&c.cfg.Backend.URL, "backend", c.cfg.Backend.URL, "URL of the election backend API")
	flags.StringVar(&c.cfg.Backend.Token, "backendToken", "", "bearer token (UUID) for the backend API")
	flags.StringVar(&c.cfg.Backend.DataFile, "dataFile", "",
		"read the elections from a JSON snapshot instead of the backend")
	flags.IntVar(&c.cfg.Query.CacheSize, "cacheSize", c.cfg.Query.CacheSize, "maximum number of cached queries")
	flags.DurationVar(&c.cfg.Query.StaleTime, "staleTime", c.cfg.Query.StaleTime,
		"how long fetched elections and results are fresh")
	flags.IntVar(&c.cfg.Query.Retries, "retries", c.cfg.Query.Retries,
		"retries after a failed backend request (negative disables)")
	flags.DurationVar(&c.cfg.Query.RetryDelay, "retryDelay", c.cfg.Query.RetryDelay,
		"initial delay between retries")

	root.AddCommand(
		c.electionsCmd(),
		c.resultsCmd(),
		c.chartCmd(),
		c.trackCmd(),
		c.serveCmd(),
	)
	return root
}

// Execute runs the explorer command tree.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges the flags with the EXPLORER_* environment and the
// explorer.yml file in the data directory, then sets the logger up.
func (c *cli) loadConfig(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	v.SetConfigName("explorer")
	v.SetConfigType("yml")
	v.SetEnvPrefix("EXPLORER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	v.AddConfigPath(v.GetString("dataDir"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("cannot read config file: %w", err)
		}
	}

	cfg := c.cfg
	cfg.DataDir = v.GetString("dataDir")
	cfg.LogLevel = v.GetString("logLevel")
	cfg.LogOutput = v.GetString("logOutput")
	cfg.LogErrorFile = v.GetString("logErrorFile")
	cfg.Languages = v.GetStringSlice("lang")
	cfg.Color = v.GetBool("color")
	cfg.JSON = v.GetBool("json")
	cfg.Backend.URL = v.GetString("backend")
	cfg.Backend.Token = v.GetString("backendToken")
	cfg.Backend.DataFile = v.GetString("dataFile")
	cfg.Query.CacheSize = v.GetInt("cacheSize")
	cfg.Query.StaleTime = v.GetDuration("staleTime")
	cfg.Query.Retries = v.GetInt("retries")
	cfg.Query.RetryDelay = v.GetDuration("retryDelay")
	if cmd.Flags().Lookup("port") != nil {
		cfg.API.Host = v.GetString("host")
		cfg.API.Port = v.GetInt("port")
		cfg.API.Route = v.GetString("route")
		cfg.API.AdminToken = v.GetString("adminToken")
		cfg.API.TLSDomain = v.GetString("tlsDomain")
		cfg.API.TLSDirCert = v.GetString("tlsDirCert")
		cfg.API.Metrics = v.GetBool("metrics")
	}

	log.Init(cfg.LogLevel, cfg.LogOutput)
	if cfg.LogErrorFile != "" {
		if err := log.SetFileErrorLog(cfg.LogErrorFile); err != nil {
			return fmt.Errorf("cannot create error log file: %w", err)
		}
	}
	if !cfg.Color {
		color.NoColor = true
	}
	c.au = aurora.NewAurora(cfg.Color && !color.NoColor)
	log.Debugw("config loaded", "file", v.ConfigFileUsed(), "backend", cfg.Backend.URL,
		"dataFile", cfg.Backend.DataFile, "languages", cfg.Languages)
	return nil
}
