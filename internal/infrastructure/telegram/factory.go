package telegram

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Conte777/mediaflow/config"
	"github.com/Conte777/mediaflow/internal/domain"
)

// ClientFactory builds one MTProtoClient per credential
type ClientFactory struct {
	cfg    *config.TelegramConfig
	fs     afero.Fs
	logger zerolog.Logger
}

// NewClientFactory creates a factory sharing fs and connection tuning
func NewClientFactory(cfg *config.TelegramConfig, fs afero.Fs, logger zerolog.Logger) *ClientFactory {
	return &ClientFactory{cfg: cfg, fs: fs, logger: logger}
}

// NewClient creates an unconnected client. An empty session token starts a
// fresh session for login.
func (f *ClientFactory) NewClient(cred domain.Credential) (domain.RemoteClient, error) {
	return NewMTProtoClient(MTProtoClientConfig{
		APIID:             cred.APIID,
		APIHash:           cred.APIHash,
		SessionToken:      cred.SessionToken,
		Fs:                f.fs,
		Logger:            f.logger,
		HistoryPageSize:   f.cfg.HistoryPageSize,
		DialogPageSize:    f.cfg.DialogLimit,
		MaxFloodWait:      f.cfg.MaxFloodWait,
		RequestsPerSecond: f.cfg.RequestsPerSecond,
	})
}

// Ensure ClientFactory implements domain.ClientFactory interface
var _ domain.ClientFactory = (*ClientFactory)(nil)
