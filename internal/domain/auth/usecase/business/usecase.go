package business

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Conte777/mediaflow/internal/domain"
	"github.com/Conte777/mediaflow/internal/domain/auth/deps"
	"github.com/Conte777/mediaflow/internal/domain/auth/entities"
	autherrors "github.com/Conte777/mediaflow/internal/domain/auth/errors"
	"github.com/Conte777/mediaflow/internal/task"
	"github.com/Conte777/mediaflow/internal/utils"
	pkgerrors "github.com/Conte777/mediaflow/pkg/errors"
)

// AuthUseCase drives interactive logins against the remote service
type AuthUseCase struct {
	factory domain.ClientFactory
	logger  zerolog.Logger
}

// NewAuthUseCase creates a new auth use case
func NewAuthUseCase(factory domain.ClientFactory, logger zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{
		factory: factory,
		logger:  logger.With().Str("usecase", "auth").Logger(),
	}
}

// attempt is one run of the state machine
type attempt struct {
	mu     sync.Mutex
	state  entities.State
	app    entities.App
	p      deps.Prompter
	logger zerolog.Logger
}

func (a *attempt) transition(to entities.State, status string) {
	a.mu.Lock()
	from := a.state
	a.state = to
	a.mu.Unlock()

	a.logger.Debug().Str("from", string(from)).Str("to", string(to)).Msg("Login state changed")
	if status != "" {
		a.p.Status(status)
	}
}

// fail moves the attempt to its terminal failure state. Cancellation is
// reported as such and not wrapped into a login error.
func (a *attempt) fail(err error) error {
	if errors.Is(err, context.Canceled) {
		a.transition(entities.StateCancelled, "")
		return err
	}
	a.transition(entities.StateFailed, "")
	return err
}

func validateApp(app entities.App) error {
	if app.APIID <= 0 {
		return pkgerrors.NewValidationError(autherrors.ErrInvalidAPIID.Error())
	}
	if strings.TrimSpace(app.APIHash) == "" {
		return pkgerrors.NewValidationError(autherrors.ErrEmptyAPIHash.Error())
	}
	return nil
}

func (uc *AuthUseCase) begin(p deps.Prompter, app entities.App) *attempt {
	return &attempt{
		state:  entities.StateIdle,
		app:    app,
		p:      p,
		logger: uc.logger.With().Int("api_id", app.APIID).Logger(),
	}
}

// connect creates a fresh client, hands it to the prompter for cleanup and
// connects it
func (uc *AuthUseCase) connect(ctx context.Context, a *attempt) (domain.RemoteClient, error) {
	a.transition(entities.StateConnecting, "Connecting...")

	client, err := uc.factory.NewClient(domain.Credential{APIID: a.app.APIID, APIHash: a.app.APIHash})
	if err != nil {
		return nil, pkgerrors.NewConnectionError("create client", err)
	}
	a.p.Own(client)

	if err := client.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, pkgerrors.NewConnectionError("connect to Telegram", err)
	}

	return client, nil
}

// LoginQR runs the QR flow:
// Idle -> Connecting -> QRIssued(url) -> [AwaitingPassword] -> Authenticated
func (uc *AuthUseCase) LoginQR(ctx context.Context, p deps.Prompter, app entities.App) (*entities.Result, error) {
	if err := validateApp(app); err != nil {
		return nil, err
	}

	a := uc.begin(p, app)
	a.logger.Info().Msg("Starting QR login")

	client, err := uc.connect(ctx, a)
	if err != nil {
		return nil, a.fail(err)
	}

	err = client.QRLogin(ctx, func(ctx context.Context, url string) error {
		a.transition(entities.StateQRIssued, "Scan the QR code in Telegram: Settings > Devices > Link Desktop Device")
		p.QR(url)
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrPasswordNeeded):
		if err := uc.submitPassword(ctx, a, client); err != nil {
			return nil, a.fail(err)
		}
	case ctx.Err() != nil:
		return nil, a.fail(ctx.Err())
	default:
		return nil, a.fail(pkgerrors.NewLoginError("qr login failed", err, false))
	}

	result, err := uc.finish(ctx, a, client)
	if err != nil {
		return nil, a.fail(err)
	}
	return result, nil
}

// LoginPhone runs the phone flow:
// Idle -> Connecting -> CodeRequested -> AwaitingCode -> [AwaitingPassword] -> Authenticated
func (uc *AuthUseCase) LoginPhone(ctx context.Context, p deps.Prompter, app entities.App, phone string) (*entities.Result, error) {
	if err := validateApp(app); err != nil {
		return nil, err
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, pkgerrors.NewValidationError(autherrors.ErrEmptyPhone.Error())
	}

	a := uc.begin(p, app)
	masked := utils.MaskPhoneNumber(phone)
	a.logger = a.logger.With().Str("phone", masked).Logger()
	a.logger.Info().Msg("Starting phone login")

	client, err := uc.connect(ctx, a)
	if err != nil {
		return nil, a.fail(err)
	}

	if err := client.RequestLoginCode(ctx, phone); err != nil {
		if ctx.Err() != nil {
			return nil, a.fail(ctx.Err())
		}
		return nil, a.fail(pkgerrors.NewLoginError("request login code", err, false))
	}
	a.transition(entities.StateCodeRequested, "Login code sent to "+masked)

	a.transition(entities.StateAwaitingCode, "")
	code, err := p.Await(ctx, task.SlotCode, "Enter the login code")
	if err != nil {
		return nil, a.fail(err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, a.fail(pkgerrors.NewLoginError("sign in", autherrors.ErrEmptyCode, true))
	}

	err = client.SignIn(ctx, phone, code)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrPasswordNeeded):
		if err := uc.submitPassword(ctx, a, client); err != nil {
			return nil, a.fail(err)
		}
	case ctx.Err() != nil:
		return nil, a.fail(ctx.Err())
	case errors.Is(err, domain.ErrCodeInvalid), errors.Is(err, domain.ErrCodeExpired):
		return nil, a.fail(pkgerrors.NewLoginError("sign in", err, true))
	default:
		return nil, a.fail(pkgerrors.NewLoginError("sign in", err, false))
	}

	result, err := uc.finish(ctx, a, client)
	if err != nil {
		return nil, a.fail(err)
	}
	return result, nil
}

func (uc *AuthUseCase) submitPassword(ctx context.Context, a *attempt, client domain.RemoteClient) error {
	a.transition(entities.StateAwaitingPassword, "")
	a.logger.Info().Msg("2FA password required")

	password, err := a.p.Await(ctx, task.SlotPassword, "Enter your 2FA password")
	if err != nil {
		return err
	}
	if password == "" {
		return pkgerrors.NewLoginError("check password", autherrors.ErrEmptyPassword, true)
	}

	if err := client.SignInPassword(ctx, password); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return pkgerrors.NewLoginError("check password", err, errors.Is(err, domain.ErrPasswordInvalid))
	}

	return nil
}

// finish reads the display name and session and builds the credential
func (uc *AuthUseCase) finish(ctx context.Context, a *attempt, client domain.RemoteClient) (*entities.Result, error) {
	user, err := client.Self(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, pkgerrors.NewLoginError("read account", err, false)
	}

	token, err := client.ExportSession(ctx)
	if err != nil {
		return nil, pkgerrors.NewLoginError("export session", err, false)
	}
	if token == "" {
		return nil, pkgerrors.NewLoginError("export session", autherrors.ErrNoSession, false)
	}

	result := &entities.Result{
		DisplayName: user.DisplayName(),
		Credential: domain.Credential{
			APIID:        a.app.APIID,
			APIHash:      a.app.APIHash,
			SessionToken: token,
		},
	}

	a.transition(entities.StateAuthenticated, fmt.Sprintf("Logged in as %s", result.DisplayName))
	a.logger.Info().Int64("user_id", user.ID).Msg("Login successful")

	return result, nil
}
