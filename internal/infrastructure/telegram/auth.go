package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/auth/qrlogin"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/Conte777/mediaflow/internal/domain"
	"github.com/Conte777/mediaflow/internal/utils"
)

// RequestLoginCode sends a login code to phone and remembers the code hash
// for SignIn
func (c *MTProtoClient) RequestLoginCode(ctx context.Context, phone string) error {
	client, _, err := c.session()
	if err != nil {
		return err
	}

	c.logger.Info().Str("phone", utils.MaskPhoneNumber(phone)).Msg("requesting login code")

	var sent tg.AuthSentCodeClass
	err = c.retryFlood(ctx, "send code", func(ctx context.Context) error {
		var err error
		sent, err = client.Auth().SendCode(ctx, phone, auth.SendCodeOptions{})
		return err
	})
	if err != nil {
		return mapAuthError(err)
	}

	hash, ok := phoneCodeHash(sent)
	if !ok {
		return fmt.Errorf("send code: unexpected response %T", sent)
	}

	c.authMu.Lock()
	c.phone = phone
	c.phoneCodeHash = hash
	c.authMu.Unlock()

	c.logger.Info().Msg("authentication code has been sent")
	return nil
}

// SignIn submits the received code
func (c *MTProtoClient) SignIn(ctx context.Context, phone, code string) error {
	client, _, err := c.session()
	if err != nil {
		return err
	}

	c.authMu.Lock()
	hash := c.phoneCodeHash
	if phone == "" {
		phone = c.phone
	}
	c.authMu.Unlock()
	if hash == "" {
		return domain.ErrCodeNotRequested
	}

	if _, err := client.Auth().SignIn(ctx, phone, code, hash); err != nil {
		return mapAuthError(err)
	}

	c.logger.Info().Msg("authentication successful")
	return nil
}

// SignInPassword completes login with the 2FA password
func (c *MTProtoClient) SignInPassword(ctx context.Context, password string) error {
	client, _, err := c.session()
	if err != nil {
		return err
	}

	if _, err := client.Auth().Password(ctx, password); err != nil {
		c.logger.Error().Err(err).Msg("2FA authentication failed")
		return mapAuthError(err)
	}

	c.logger.Info().Msg("2FA authentication successful")
	return nil
}

// QRLogin shows login tokens until one is accepted on another device.
// Expired tokens are re-exported by the qrlogin helper and shown again.
func (c *MTProtoClient) QRLogin(ctx context.Context, show func(ctx context.Context, url string) error) error {
	client, _, err := c.session()
	if err != nil {
		return err
	}

	c.mu.RLock()
	loggedIn := c.loggedIn
	c.mu.RUnlock()

	_, err = client.QR().Auth(ctx, loggedIn, func(ctx context.Context, token qrlogin.Token) error {
		c.logger.Info().Time("expires", token.Expires()).Msg("QR code generated")
		return show(ctx, token.URL())
	})
	if err != nil {
		return mapAuthError(err)
	}

	c.logger.Info().Msg("QR authentication successful")
	return nil
}

// Self returns the logged in user
func (c *MTProtoClient) Self(ctx context.Context) (domain.User, error) {
	client, _, err := c.session()
	if err != nil {
		return domain.User{}, err
	}

	self, err := client.Self(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("get self failed: %w", err)
	}

	return domain.User{
		ID:        self.ID,
		Username:  self.Username,
		FirstName: self.FirstName,
		LastName:  self.LastName,
		Phone:     self.Phone,
	}, nil
}

// ExportSession returns the session token for the current login
func (c *MTProtoClient) ExportSession(ctx context.Context) (string, error) {
	if _, _, err := c.session(); err != nil {
		return "", err
	}
	return c.sessionStorage.Token(), nil
}

// retryFlood retries fn on FLOOD_WAIT the same way invoke does, for calls
// that go through the auth helpers instead of the raw API
func (c *MTProtoClient) retryFlood(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return c.invoke(ctx, op, func(ctx context.Context, _ *tg.Client) error {
		return fn(ctx)
	})
}

// phoneCodeHash extracts the hash SignIn needs from a SendCode response
func phoneCodeHash(sent any) (string, bool) {
	switch s := sent.(type) {
	case *tg.AuthSentCode:
		return s.PhoneCodeHash, true
	default:
		return "", false
	}
}

// mapAuthError maps auth RPC errors onto domain sentinels
func mapAuthError(err error) error {
	var signUp *auth.SignUpRequired
	switch {
	case errors.Is(err, auth.ErrPasswordAuthNeeded), tgerr.Is(err, "SESSION_PASSWORD_NEEDED"):
		return domain.ErrPasswordNeeded
	case errors.Is(err, auth.ErrPasswordInvalid), tgerr.Is(err, "PASSWORD_HASH_INVALID"):
		return domain.ErrPasswordInvalid
	case tgerr.Is(err, "PHONE_CODE_INVALID", "PHONE_CODE_EMPTY"):
		return fmt.Errorf("%w: %v", domain.ErrCodeInvalid, err)
	case tgerr.Is(err, "PHONE_CODE_EXPIRED"):
		return fmt.Errorf("%w: %v", domain.ErrCodeExpired, err)
	case errors.As(err, &signUp):
		return domain.ErrSignUpRequired
	default:
		return err
	}
}
