// Package cli implements the mediaflow command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/Conte777/mediaflow/config"
	"github.com/Conte777/mediaflow/internal/app"
	"github.com/Conte777/mediaflow/internal/usecase"
)

// EnvPrefix prefixes environment variables that override flags
const EnvPrefix = "TGMD"

// CLI holds the state shared by all commands
type CLI struct {
	v       *viper.Viper
	console *Console
	load    func() (*config.Config, error)
}

// New creates a CLI writing to out and reading answers from in
func New(in io.Reader, out io.Writer) *CLI {
	return &CLI{
		v:       newViper(),
		console: NewConsole(in, out),
		load:    config.Load,
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Execute runs the root command until it finishes or ctx is cancelled
func Execute(ctx context.Context) error {
	c := New(os.Stdin, os.Stdout)
	root := c.RootCmd()
	root.SilenceErrors = true
	root.SilenceUsage = true
	return root.ExecuteContext(ctx)
}

// RootCmd builds the command tree
func (c *CLI) RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mediaflow",
		Short: "Download media from Telegram conversations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(c.v, cmd.Flags())
		},
	}

	flags := root.PersistentFlags()
	flags.Int("api-id", 0, "Telegram API ID (overrides TELEGRAM_API_ID)")
	flags.String("api-hash", "", "Telegram API hash (overrides TELEGRAM_API_HASH)")
	flags.String("data-dir", "", "Directory holding session files")
	flags.String("log-level", "", "Log level: debug, info, warn, error, disabled")
	flags.Bool("http", false, "Serve /health, /job and /metrics while the command runs")
	flags.String("http-addr", "", "Status server listen address")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.chatsCmd(),
		c.profileCmd(),
		c.downloadCmd(),
	)

	return root
}

// bindFlags binds flags so that TGMD_* variables can supply their values
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	return nil
}

// applyOverrides copies flag and TGMD_* values over the loaded configuration
func applyOverrides(cfg *config.Config, v *viper.Viper) {
	if v.IsSet("api-id") {
		cfg.Telegram.APIID = v.GetInt("api-id")
	}
	if v.IsSet("api-hash") {
		cfg.Telegram.APIHash = v.GetString("api-hash")
	}
	if s := v.GetString("data-dir"); s != "" {
		cfg.Telegram.DataDir = s
	}
	if s := v.GetString("log-level"); s != "" {
		cfg.Logging.Level = s
	}
	if v.GetBool("http") {
		cfg.HTTP.Enabled = true
	}
	if s := v.GetString("http-addr"); s != "" {
		cfg.HTTP.Addr = s
	}
}

// loadConfig loads configuration with overrides applied
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := c.load()
	if err != nil {
		return nil, err
	}

	applyOverrides(cfg, c.v)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withService starts the application, runs fn and stops the application
func (c *CLI) withService(ctx context.Context, fn func(svc *usecase.Service, logger zerolog.Logger) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	var (
		svc    *usecase.Service
		logger zerolog.Logger
	)
	application := fx.New(
		app.CreateAppWithConfig(cfg),
		fx.NopLogger,
		fx.Populate(&svc, &logger),
	)
	if err := application.Err(); err != nil {
		return err
	}

	if err := application.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
		defer cancel()
		if err := application.Stop(stopCtx); err != nil {
			logger.Warn().Err(err).Msg("Failed to stop application")
		}
	}()

	return fn(svc, logger)
}
