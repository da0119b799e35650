package app

import (
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Conte777/mediaflow/config"
	"github.com/Conte777/mediaflow/internal/usecase"
)

func Test__CreateApp(t *testing.T) {
	t.Setenv("TELEGRAM_API_ID", "12345")
	t.Setenv("TELEGRAM_API_HASH", "hash")
	t.Setenv("TELEGRAM_DATA_DIR", t.TempDir())

	if err := fx.ValidateApp(CreateApp()); err != nil {
		t.Errorf("fx validation failed: %v", err)
	}
}

func Test__CreateAppWithConfig(t *testing.T) {
	cfg := &config.Config{
		Telegram: config.TelegramConfig{APIID: 12345, APIHash: "hash", DataDir: t.TempDir()},
		Storage:  config.StorageConfig{DownloadDir: t.TempDir(), Grouping: "flat"},
		Logging:  config.LoggingConfig{Level: "disabled"},
	}

	var svc *usecase.Service
	app := fxtest.New(t, CreateAppWithConfig(cfg), fx.NopLogger, fx.Populate(&svc))
	app.RequireStart()
	defer app.RequireStop()

	if svc == nil {
		t.Fatal("Expected service to be populated")
	}
	if svc.Busy() {
		t.Errorf("Expected idle service")
	}
}
