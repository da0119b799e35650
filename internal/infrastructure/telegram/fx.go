package telegram

import (
	"github.com/spf13/afero"
	"go.uber.org/fx"

	"github.com/Conte777/mediaflow/config"
	"github.com/Conte777/mediaflow/internal/domain"
)

// Module provides the Telegram client factory and session store for fx DI
var Module = fx.Module("telegram",
	fx.Provide(
		fx.Annotate(NewClientFactory, fx.As(new(domain.ClientFactory))),
		NewCredentialStoreFx,
	),
)

// NewCredentialStoreFx creates the session file store under the data dir
func NewCredentialStoreFx(cfg *config.TelegramConfig, fs afero.Fs) (domain.CredentialStore, error) {
	return NewFileCredentialStore(fs, cfg.DataDir)
}
