package chat

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/mediaflow/config"
	"github.com/Conte777/mediaflow/internal/domain/chat/usecase/business"
)

// Module provides chat listing components for fx DI
var Module = fx.Module("chat",
	fx.Provide(NewChatUseCaseFx),
)

// NewChatUseCaseFx creates a chat use case for fx DI
func NewChatUseCaseFx(telegramCfg *config.TelegramConfig, logger zerolog.Logger) *business.ChatUseCase {
	return business.NewChatUseCase(telegramCfg.DialogLimit, logger)
}
