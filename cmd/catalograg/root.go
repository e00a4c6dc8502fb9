package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/config"
	logpkg "github.com/kailas-cloud/catalograg/internal/logger"
	"github.com/kailas-cloud/catalograg/internal/version"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	env        string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "catalograg",
		Short: "Semantic product search with LLM recommendations",
		Long: `catalograg indexes a product catalog into a Redis/Valkey vector index and
answers free-form questions about it: the query is rewritten by an LLM,
matched against the catalog and turned into a short recommendation.`,
		Version:       version.String(),
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default config/<env>.yaml)")
	flags.StringVar(&opts.env, "env", "", "environment: local, dev, prod (default $ENV or local)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config")
	flags.StringVar(&opts.logLevel, "log-level", "", "override the log level: debug, info, warn, error")

	cmd.AddCommand(
		newServeCmd(opts),
		newIndexCmd(opts),
		newSearchCmd(opts),
		newChatCmd(opts),
		newStatsCmd(opts),
	)
	return cmd
}

// resolveEnv returns the environment name from the flag, then $ENV.
func (o *rootOptions) resolveEnv() string {
	if o.env != "" {
		return o.env
	}
	return config.GetEnv()
}

// loadConfig loads the dotenv file (if present) and then the YAML config.
func (o *rootOptions) loadConfig() (config.Config, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("load %s: %w", o.envFile, err)
		}
	}

	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load(o.resolveEnv())
}

// serverLogger builds the long-running service logger for the environment.
func (o *rootOptions) serverLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	return logpkg.NewLogger(o.resolveEnv(), level)
}

// cliLogger builds a quiet logger for interactive commands.
func (o *rootOptions) cliLogger() (*zap.Logger, error) {
	return logpkg.NewLogger("cli", o.logLevel)
}

// bootstrap loads config and a CLI logger and assembles the application.
func (o *rootOptions) bootstrap(cmd *cobra.Command) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := o.cliLogger()
	if err != nil {
		return nil, err
	}
	a, err := newApp(cmd.Context(), &cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}
