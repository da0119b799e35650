package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/mediaflow/config"
	pkgerrors "github.com/Conte777/mediaflow/pkg/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Telegram: config.TelegramConfig{
			APIID:             1,
			APIHash:           "hash",
			DataDir:           t.TempDir(),
			HistoryPageSize:   100,
			DialogLimit:       100,
			RequestsPerSecond: 10,
		},
		Storage: config.StorageConfig{DownloadDir: t.TempDir(), Grouping: "flat"},
		Logging: config.LoggingConfig{Level: "disabled"},
		HTTP:    config.HTTPConfig{Addr: "127.0.0.1:0"},
	}
}

func newTestCLI(t *testing.T, out *bytes.Buffer) *CLI {
	t.Helper()
	cfg := testConfig(t)

	c := New(strings.NewReader(""), out)
	c.load = func() (*config.Config, error) { return cfg, nil }
	return c
}

func execute(c *CLI, args ...string) error {
	root := c.RootCmd()
	root.SetArgs(args)
	root.SetOut(c.console.out)
	root.SilenceErrors = true
	root.SilenceUsage = true
	return root.Execute()
}

func TestApplyOverrides_EnvAndFlags(t *testing.T) {
	t.Setenv("TGMD_API_HASH", "from-env")

	var out bytes.Buffer
	c := newTestCLI(t, &out)
	root := c.RootCmd()
	require.NoError(t, root.ParseFlags([]string{"--api-id", "777", "--log-level", "debug"}))
	require.NoError(t, bindFlags(c.v, root.Flags()))

	cfg, err := c.loadConfig()
	require.NoError(t, err)

	assert.Equal(t, 777, cfg.Telegram.APIID)
	assert.Equal(t, "from-env", cfg.Telegram.APIHash)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.HTTP.Enabled)
}

func TestApplyOverrides_Unset(t *testing.T) {
	var out bytes.Buffer
	c := newTestCLI(t, &out)
	require.NoError(t, bindFlags(c.v, c.RootCmd().PersistentFlags()))

	cfg, err := c.loadConfig()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Telegram.APIID)
	assert.Equal(t, "hash", cfg.Telegram.APIHash)
}

func TestLogoutCmd_NotLoggedIn(t *testing.T) {
	var out bytes.Buffer
	c := newTestCLI(t, &out)

	require.NoError(t, execute(c, "logout"))
	assert.Contains(t, out.String(), "Not logged in")
}

func TestDownloadCmd_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad target", args: []string{"download", "https://example.com/x"}},
		{name: "zero limit", args: []string{"download", "@news_channel", "--limit", "0"}},
		{name: "unknown kind", args: []string{"download", "@news_channel", "--types", "hologram"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := execute(newTestCLI(t, &out), tt.args...)

			code, _ := pkgerrors.NewMapper(zerolog.Nop()).MapErrorToExitCode(err)
			assert.Equal(t, pkgerrors.ExitValidation, code)
		})
	}
}
