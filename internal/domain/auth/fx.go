package auth

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/mediaflow/internal/domain"
	"github.com/Conte777/mediaflow/internal/domain/auth/usecase/business"
)

// Module provides authentication components for fx DI
var Module = fx.Module("auth",
	fx.Provide(NewAuthUseCaseFx),
)

// NewAuthUseCaseFx creates an auth use case for fx DI
func NewAuthUseCaseFx(factory domain.ClientFactory, logger zerolog.Logger) *business.AuthUseCase {
	return business.NewAuthUseCase(factory, logger)
}
