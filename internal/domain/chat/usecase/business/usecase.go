package business

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Conte777/mediaflow/internal/domain"
	"github.com/Conte777/mediaflow/internal/domain/chat/deps"
	pkgerrors "github.com/Conte777/mediaflow/pkg/errors"
)

// ChatUseCase lists the account's conversations and reads their profiles
type ChatUseCase struct {
	limit  int
	logger zerolog.Logger
}

// NewChatUseCase creates a new chat use case listing up to limit dialogs
func NewChatUseCase(limit int, logger zerolog.Logger) *ChatUseCase {
	return &ChatUseCase{
		limit:  limit,
		logger: logger.With().Str("usecase", "chat").Logger(),
	}
}

func connect(ctx context.Context, client domain.RemoteClient, r deps.Reporter) error {
	r.Status("Connecting...")
	if err := client.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return pkgerrors.NewConnectionError("connect to Telegram", err)
	}
	return nil
}

// ListChats fetches one page of dialogs
func (uc *ChatUseCase) ListChats(ctx context.Context, client domain.RemoteClient, r deps.Reporter) ([]domain.Chat, error) {
	if err := connect(ctx, client, r); err != nil {
		return nil, err
	}

	r.Status("Fetching chats...")
	chats, err := client.Dialogs(ctx, uc.limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, pkgerrors.NewConnectionError("fetch chats", err)
	}

	uc.logger.Info().Int("count", len(chats)).Msg("Chats fetched")
	r.Status(fmt.Sprintf("Fetched %d chats", len(chats)))
	return chats, nil
}

// Profile resolves target and reads its profile record
func (uc *ChatUseCase) Profile(ctx context.Context, client domain.RemoteClient, target domain.ConversationTarget, r deps.Reporter) (domain.Profile, error) {
	if err := connect(ctx, client, r); err != nil {
		return domain.Profile{}, err
	}

	r.Status("Resolving " + target.Identifier() + "...")
	peer, err := client.ResolveEntity(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Profile{}, ctx.Err()
		}
		return domain.Profile{}, pkgerrors.NewResolutionErrorf(err, "resolve %s", target.Identifier())
	}

	profile, err := client.Profile(ctx, peer)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Profile{}, ctx.Err()
		}
		return domain.Profile{}, pkgerrors.NewConnectionError("fetch profile", err)
	}

	uc.logger.Info().Int64("peer_id", profile.ID).Str("type", string(profile.Type)).Msg("Profile fetched")
	return profile, nil
}
