package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/Conte777/mediaflow/config"
	"github.com/Conte777/mediaflow/internal/domain"
	authentities "github.com/Conte777/mediaflow/internal/domain/auth/entities"
	authbusiness "github.com/Conte777/mediaflow/internal/domain/auth/usecase/business"
	chatbusiness "github.com/Conte777/mediaflow/internal/domain/chat/usecase/business"
	"github.com/Conte777/mediaflow/internal/domain/download/entities"
	downloadbusiness "github.com/Conte777/mediaflow/internal/domain/download/usecase/business"
	"github.com/Conte777/mediaflow/internal/domain/placement"
	"github.com/Conte777/mediaflow/internal/task"
	pkgerrors "github.com/Conte777/mediaflow/pkg/errors"
)

// Service runs user operations as background tasks, one at a time
type Service struct {
	factory  domain.ClientFactory
	store    domain.CredentialStore
	auth     *authbusiness.AuthUseCase
	chats    *chatbusiness.ChatUseCase
	download *downloadbusiness.DownloadUseCase
	telegram *config.TelegramConfig
	storage  *config.StorageConfig
	logger   zerolog.Logger

	busy atomic.Bool

	jobMu  sync.RWMutex
	job    *entities.Job
	active *task.Runner
}

// NewService creates a new application service
func NewService(
	factory domain.ClientFactory,
	store domain.CredentialStore,
	auth *authbusiness.AuthUseCase,
	chats *chatbusiness.ChatUseCase,
	download *downloadbusiness.DownloadUseCase,
	telegram *config.TelegramConfig,
	storage *config.StorageConfig,
	logger zerolog.Logger,
) *Service {
	return &Service{
		factory:  factory,
		store:    store,
		auth:     auth,
		chats:    chats,
		download: download,
		telegram: telegram,
		storage:  storage,
		logger:   logger.With().Str("component", "service").Logger(),
	}
}

// Busy reports whether an operation is running
func (s *Service) Busy() bool {
	return s.busy.Load()
}

// LoggedIn reports whether a session is stored for the configured api_id
func (s *Service) LoggedIn() bool {
	return s.store.Exists(s.telegram.APIID)
}

func (s *Service) app() authentities.App {
	return authentities.App{APIID: s.telegram.APIID, APIHash: s.telegram.APIHash}
}

// start takes the busy gate and runs op on a new runner. The gate is
// released once the runner has sent its terminal event.
func (s *Service) start(r *task.Runner, op task.Operation) error {
	if !s.busy.CompareAndSwap(false, true) {
		return domain.ErrBusy
	}

	if err := r.Start(op); err != nil {
		s.busy.Store(false)
		return err
	}

	go func() {
		<-r.Done()
		s.busy.Store(false)
	}()

	return nil
}

// LoginQR starts a QR login. The task result is *authentities.Result.
func (s *Service) LoginQR() (*task.Runner, error) {
	r := task.New(s.logger)
	err := s.start(r, func(ctx context.Context, h *task.Handle) (any, error) {
		result, err := s.auth.LoginQR(ctx, h, s.app())
		if err != nil {
			return nil, err
		}
		return s.persist(result)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// LoginPhone starts a phone login. The runner waits for task.SlotCode and,
// when the account has 2FA, task.SlotPassword.
func (s *Service) LoginPhone(phone string) (*task.Runner, error) {
	r := task.New(s.logger)
	err := s.start(r, func(ctx context.Context, h *task.Handle) (any, error) {
		result, err := s.auth.LoginPhone(ctx, h, s.app(), phone)
		if err != nil {
			return nil, err
		}
		return s.persist(result)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// persist stores the credential of a completed login
func (s *Service) persist(result *authentities.Result) (*authentities.Result, error) {
	if err := s.store.Save(result.Credential); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info().Int("api_id", result.Credential.APIID).Msg("Session saved")
	return result, nil
}

// Logout removes the stored session
func (s *Service) Logout() error {
	if !s.busy.CompareAndSwap(false, true) {
		return domain.ErrBusy
	}
	defer s.busy.Store(false)

	if err := s.store.Delete(s.telegram.APIID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info().Int("api_id", s.telegram.APIID).Msg("Session deleted")
	return nil
}

// client builds a client from the stored session and hands it to h
func (s *Service) client(h *task.Handle) (domain.RemoteClient, error) {
	cred, err := s.store.Load(s.telegram.APIID, s.telegram.APIHash)
	if err != nil {
		return nil, pkgerrors.NewLoginError("no session, log in first", err, false)
	}

	client, err := s.factory.NewClient(cred)
	if err != nil {
		return nil, pkgerrors.NewConnectionError("create client", err)
	}
	h.Own(client)

	return client, nil
}

// Chats starts a dialog listing. The task result is []domain.Chat.
func (s *Service) Chats() (*task.Runner, error) {
	r := task.New(s.logger)
	err := s.start(r, func(ctx context.Context, h *task.Handle) (any, error) {
		client, err := s.client(h)
		if err != nil {
			return nil, err
		}
		chats, err := s.chats.ListChats(ctx, client, h)
		if err != nil {
			return nil, err
		}
		return chats, nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Profile starts a profile fetch. The task result is domain.Profile.
func (s *Service) Profile(target domain.ConversationTarget) (*task.Runner, error) {
	r := task.New(s.logger)
	err := s.start(r, func(ctx context.Context, h *task.Handle) (any, error) {
		client, err := s.client(h)
		if err != nil {
			return nil, err
		}
		profile, err := s.chats.Profile(ctx, client, target, h)
		if err != nil {
			return nil, err
		}
		return profile, nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DefaultJobConfig returns a job configuration carrying the storage defaults
func (s *Service) DefaultJobConfig() entities.JobConfig {
	return entities.JobConfig{
		Grouping:     placement.Grouping(s.storage.Grouping),
		SkipExisting: s.storage.SkipExisting,
		Root:         s.storage.DownloadDir,
	}
}

// Download validates cfg and starts a download job. The task result is
// entities.Snapshot on success and on cancellation.
func (s *Service) Download(cfg entities.JobConfig) (*task.Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := task.New(s.logger)
	job := entities.NewJob(r.ID(), cfg)

	err := s.start(r, func(ctx context.Context, h *task.Handle) (any, error) {
		client, err := s.client(h)
		if err != nil {
			job.Fail(err)
			return nil, err
		}

		snap, err := s.download.Run(ctx, client, job, h)
		if err != nil {
			return nil, err
		}
		if snap.State == entities.StateStopped {
			return snap, context.Canceled
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}

	s.jobMu.Lock()
	s.job = job
	s.active = r
	s.jobMu.Unlock()

	go func() {
		<-r.Done()
		s.jobMu.Lock()
		if s.active == r {
			s.active = nil
		}
		s.jobMu.Unlock()
	}()

	return r, nil
}

// CurrentJob returns the latest download job
func (s *Service) CurrentJob() (entities.Snapshot, bool) {
	s.jobMu.RLock()
	defer s.jobMu.RUnlock()

	if s.job == nil {
		return entities.Snapshot{}, false
	}
	return s.job.Snapshot(), true
}

// CancelJob cancels the running download
func (s *Service) CancelJob() bool {
	s.jobMu.RLock()
	r := s.active
	s.jobMu.RUnlock()

	if r == nil {
		return false
	}
	r.Cancel()
	return true
}
