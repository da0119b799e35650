package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth/qrlogin"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"

	"github.com/Conte777/mediaflow/internal/domain"
)

const (
	defaultHistoryPageSize = 100
	defaultDialogPageSize  = 100
	defaultMaxFloodWait    = 5 * time.Minute
	maxFloodRetries        = 3
)

// MTProtoClient implements domain.RemoteClient using gotd/td library
type MTProtoClient struct {
	// Telegram client instance
	client *telegram.Client

	// API credentials
	apiID   int
	apiHash string

	// Session storage, seeded from the credential token
	sessionStorage *MemorySessionStorage
	hasSession     bool

	// Fires when a QR login token is accepted on another device
	loggedIn <-chan struct{}

	// Connection state
	connected     bool
	disconnecting bool
	mu            sync.RWMutex
	cancelFunc    context.CancelFunc
	runDone       chan struct{} // Signals when client.Run() completes

	// Phone login state
	authMu        sync.Mutex
	phone         string
	phoneCodeHash string

	// Peers seen while resolving or listing dialogs, keyed by marked ID
	peersMu sync.RWMutex
	peers   map[int64]*remotePeer

	fs     afero.Fs
	logger zerolog.Logger

	// API client for making requests
	api *tg.Client

	// Rate limiter for API calls
	rateLimiter *rate.Limiter

	historyPageSize int
	dialogPageSize  int
	maxFloodWait    time.Duration
}

// MTProtoClientConfig holds configuration for MTProtoClient
type MTProtoClientConfig struct {
	APIID        int
	APIHash      string
	SessionToken string
	Fs           afero.Fs
	Logger       zerolog.Logger

	HistoryPageSize int
	DialogPageSize  int
	// MaxFloodWait caps how long a single FLOOD_WAIT is honoured before the
	// call fails with domain.ErrFloodWait
	MaxFloodWait time.Duration
	// RequestsPerSecond paces API calls, 10 when zero
	RequestsPerSecond int
}

// NewMTProtoClient creates a new MTProto client instance
func NewMTProtoClient(cfg MTProtoClientConfig) (*MTProtoClient, error) {
	if cfg.APIID == 0 {
		return nil, fmt.Errorf("APIID is required")
	}
	if cfg.APIHash == "" {
		return nil, fmt.Errorf("APIHash is required")
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.HistoryPageSize <= 0 {
		cfg.HistoryPageSize = defaultHistoryPageSize
	}
	if cfg.DialogPageSize <= 0 {
		cfg.DialogPageSize = defaultDialogPageSize
	}
	if cfg.MaxFloodWait <= 0 {
		cfg.MaxFloodWait = defaultMaxFloodWait
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}

	storage, err := NewMemorySessionStorageFromToken(cfg.SessionToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session storage: %w", err)
	}

	client := &MTProtoClient{
		apiID:           cfg.APIID,
		apiHash:         cfg.APIHash,
		sessionStorage:  storage,
		hasSession:      cfg.SessionToken != "",
		peers:           make(map[int64]*remotePeer),
		fs:              cfg.Fs,
		logger:          cfg.Logger.With().Str("component", "mtproto_client").Int("api_id", cfg.APIID).Logger(),
		rateLimiter:     rate.NewLimiter(rate.Every(time.Second/time.Duration(cfg.RequestsPerSecond)), cfg.RequestsPerSecond),
		historyPageSize: cfg.HistoryPageSize,
		dialogPageSize:  cfg.DialogPageSize,
		maxFloodWait:    cfg.MaxFloodWait,
	}

	return client, nil
}

// Connect connects to Telegram using MTProto. It does not log in: a client
// built from a stored session must already be authorized, otherwise
// domain.ErrSessionRevoked is returned.
func (c *MTProtoClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		c.logger.Debug().Msg("already connected")
		return nil
	}
	if c.disconnecting {
		c.mu.Unlock()
		return fmt.Errorf("disconnect in progress, cannot connect")
	}
	// Keep the lock to prevent concurrent connection attempts
	defer c.mu.Unlock()

	c.logger.Info().Msg("connecting to Telegram")

	dispatcher := tg.NewUpdateDispatcher()
	c.loggedIn = qrlogin.OnLoginToken(dispatcher)
	c.client = telegram.NewClient(c.apiID, c.apiHash, telegram.Options{
		SessionStorage: c.sessionStorage,
		UpdateHandler:  dispatcher,
	})

	// Create cancellable context for client lifecycle
	clientCtx, cancel := context.WithCancel(context.Background())
	c.cancelFunc = cancel

	readyChan := make(chan struct{})
	errChan := make(chan error, 1)
	c.runDone = make(chan struct{})
	runDone := c.runDone
	tgClient := c.client

	go func() {
		defer close(runDone)
		err := tgClient.Run(clientCtx, func(ctx context.Context) error {
			if c.hasSession {
				status, err := tgClient.Auth().Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to check auth status: %w", err)
				}
				if !status.Authorized {
					return domain.ErrSessionRevoked
				}
				c.logger.Info().Msg("session restored from storage")
			}

			close(readyChan)

			// Keep connection alive
			<-ctx.Done()
			return ctx.Err()
		})
		select {
		case errChan <- err:
		default:
		}
	}()

	select {
	case <-readyChan:
		c.api = tgClient.API()
		c.connected = true
		c.logger.Info().Msg("successfully connected to Telegram")
		return nil
	case err := <-errChan:
		cancel()
		if errors.Is(err, domain.ErrSessionRevoked) {
			return err
		}
		if err == nil {
			return domain.ErrConnectionFailed
		}
		return fmt.Errorf("%w: %v", domain.ErrConnectionFailed, err)
	case <-ctx.Done():
		cancel()
		<-runDone
		return ctx.Err()
	}
}

// Disconnect disconnects from Telegram with graceful shutdown.
// Multiple calls to Disconnect() are safe and will return nil if already disconnected.
func (c *MTProtoClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()

	if c.disconnecting {
		c.mu.Unlock()
		c.logger.Debug().Msg("disconnect already in progress")
		return nil
	}

	if !c.connected {
		c.mu.Unlock()
		c.logger.Debug().Msg("already disconnected")
		return nil
	}

	c.logger.Info().Msg("disconnecting from Telegram")

	c.disconnecting = true
	cancelFunc := c.cancelFunc
	runDone := c.runDone
	c.mu.Unlock()

	if cancelFunc != nil {
		cancelFunc()

		// Wait for client.Run() goroutine to actually finish
		if runDone != nil {
			select {
			case <-runDone:
				c.logger.Debug().Msg("client stopped gracefully")
			case <-ctx.Done():
				c.logger.Warn().Msg("disconnect timeout reached while waiting for client shutdown")
			}
		}
	}

	c.mu.Lock()
	c.client = nil
	c.api = nil
	c.connected = false
	c.cancelFunc = nil
	c.runDone = nil
	c.disconnecting = false
	c.mu.Unlock()

	c.logger.Info().Msg("successfully disconnected from Telegram")
	return nil
}

// IsConnected checks if client is connected to Telegram
func (c *MTProtoClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// session returns the live client and its API, or domain.ErrNotConnected
func (c *MTProtoClient) session() (*telegram.Client, *tg.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.api == nil {
		return nil, nil, domain.ErrNotConnected
	}
	return c.client, c.api, nil
}

// invoke runs one API call with rate limiting, honouring FLOOD_WAIT up to
// maxFloodWait and maxFloodRetries times
func (c *MTProtoClient) invoke(ctx context.Context, op string, fn func(ctx context.Context, api *tg.Client) error) error {
	_, api, err := c.session()
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait cancelled: %w", err)
		}

		err := fn(ctx, api)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var floodWait *tgerr.Error
		if errors.As(err, &floodWait) && floodWait.Code == 420 {
			waitDuration := time.Duration(floodWait.Argument) * time.Second
			if attempt >= maxFloodRetries || waitDuration > c.maxFloodWait {
				return fmt.Errorf("%s: %w (%s)", op, domain.ErrFloodWait, waitDuration)
			}

			c.logger.Warn().
				Str("op", op).
				Int("attempt", attempt+1).
				Dur("wait_duration", waitDuration).
				Msg("flood wait detected, waiting before retry")

			select {
			case <-time.After(waitDuration):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return classifyRPCError(op, err)
	}
}

// classifyRPCError maps well-known RPC errors onto domain sentinels
func classifyRPCError(op string, err error) error {
	switch {
	case tgerr.Is(err, "AUTH_KEY_UNREGISTERED", "SESSION_REVOKED", "SESSION_EXPIRED", "USER_DEACTIVATED"):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrSessionRevoked, err)
	case tgerr.Is(err, "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID", "PEER_ID_INVALID", "CHANNEL_INVALID", "CHANNEL_PRIVATE", "CHAT_ID_INVALID"):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrPeerNotFound, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// Ensure MTProtoClient implements domain.RemoteClient interface
var _ domain.RemoteClient = (*MTProtoClient)(nil)
