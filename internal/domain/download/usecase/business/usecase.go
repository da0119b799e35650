package business

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/mediaflow/internal/domain"
	"github.com/Conte777/mediaflow/internal/domain/download/deps"
	"github.com/Conte777/mediaflow/internal/domain/download/entities"
	"github.com/Conte777/mediaflow/internal/domain/media"
	"github.com/Conte777/mediaflow/internal/domain/placement"
	pkgerrors "github.com/Conte777/mediaflow/pkg/errors"
)

// DownloadUseCase walks a conversation's history and saves matching media
type DownloadUseCase struct {
	resolver *placement.Resolver
	recorder deps.Recorder
	mirror   domain.Mirror
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDownloadUseCase creates a new download use case. mirror may be nil.
func NewDownloadUseCase(
	resolver *placement.Resolver,
	recorder deps.Recorder,
	mirror domain.Mirror,
	logger zerolog.Logger,
) *DownloadUseCase {
	return &DownloadUseCase{
		resolver: resolver,
		recorder: recorder,
		mirror:   mirror,
		logger:   logger.With().Str("usecase", "download").Logger(),
		now:      time.Now,
	}
}

// Run executes job against a connected-on-demand client.
// Idle -> Resolving -> Iterating -> Completed | Stopped | Failed.
// Per-item errors are logged and counted; only connection-level and
// resolution failures are returned. A cancelled job returns its snapshot with
// state Stopped and a nil error.
func (uc *DownloadUseCase) Run(ctx context.Context, client domain.RemoteClient, job *entities.Job, e deps.Emitter) (entities.Snapshot, error) {
	logger := uc.logger.With().Str("job_id", job.ID).Str("target", job.Config.Target.Identifier()).Logger()
	defer func() {
		snap := job.Snapshot()
		uc.recorder.JobFinished(snap.State, snap.Duration)
		logger.Info().
			Str("state", string(snap.State)).
			Int64("processed", snap.Processed).
			Int64("saved", snap.Saved).
			Int64("skipped", snap.Skipped).
			Int64("unmatched", snap.Unmatched).
			Int64("failed", snap.Failed).
			Msg("Download job finished")
	}()

	job.SetState(entities.StateResolving)
	e.Status("Connecting...")

	if err := client.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			return uc.stop(job), nil
		}
		err = pkgerrors.NewConnectionError("connect to Telegram", err)
		job.Fail(err)
		return job.Snapshot(), err
	}

	peer, err := client.ResolveEntity(ctx, job.Config.Target)
	if err != nil {
		if ctx.Err() != nil {
			return uc.stop(job), nil
		}
		err = pkgerrors.NewResolutionErrorf(err, "resolve %s", job.Config.Target.Identifier())
		job.Fail(err)
		return job.Snapshot(), err
	}
	logger.Info().Int64("peer_id", peer.PeerID()).Str("title", peer.PeerTitle()).Msg("Target resolved")

	layout := job.Config.Layout()
	if layout.Chat.Title == "" {
		layout.Chat.Title = peer.PeerTitle()
	}

	job.SetState(entities.StateIterating)
	e.Status("Downloading...")

	if job.Config.Constraints.EmptyRange() {
		logger.Info().Msg("Date range is empty, nothing to download")
		job.SetState(entities.StateCompleted)
		return job.Snapshot(), nil
	}

	it, err := client.IterateMessages(ctx, peer)
	if err != nil {
		if ctx.Err() != nil {
			return uc.stop(job), nil
		}
		err = pkgerrors.NewConnectionError("read history", err)
		job.Fail(err)
		return job.Snapshot(), err
	}

	cons := job.Config.Constraints
	for it.Next(ctx) {
		msg := it.Value()

		if msg.HasDate() {
			// history is newest first: nothing older than Start can follow
			if cons.Start != nil && msg.Date.Before(*cons.Start) {
				break
			}
			if cons.End != nil && msg.Date.After(*cons.End) {
				job.IncUnmatched()
				continue
			}
		}

		d, ok := media.Describe(msg)
		if !ok || !job.Config.Filters.Allows(d.Kind) {
			job.IncUnmatched()
			continue
		}

		if limitReached(job, cons) {
			logger.Info().Int("limit", *cons.Limit).Msg("Message limit reached")
			break
		}
		job.IncProcessed()

		if ctx.Err() != nil {
			return uc.stop(job), nil
		}

		if stopped := uc.processItem(ctx, client, job, layout, msg, d, e, logger); stopped {
			return uc.stop(job), nil
		}

		// stop before fetching another history page
		if limitReached(job, cons) {
			logger.Info().Int("limit", *cons.Limit).Msg("Message limit reached")
			break
		}
	}

	if err := it.Err(); err != nil {
		if ctx.Err() != nil {
			return uc.stop(job), nil
		}
		err = pkgerrors.NewConnectionError("read history", err)
		job.Fail(err)
		return job.Snapshot(), err
	}
	if ctx.Err() != nil {
		return uc.stop(job), nil
	}

	job.SetState(entities.StateCompleted)
	return job.Snapshot(), nil
}

// processItem places and transfers one matched message. It returns true when
// the transfer was interrupted by cancellation.
func (uc *DownloadUseCase) processItem(
	ctx context.Context,
	client domain.RemoteClient,
	job *entities.Job,
	layout placement.Layout,
	msg domain.Message,
	d media.Descriptor,
	e deps.Emitter,
	logger zerolog.Logger,
) bool {
	p, err := uc.resolver.Resolve(d, msg, layout)
	if err != nil {
		job.IncFailed()
		uc.recorder.ItemFailed(d.Kind)
		e.Log(fmt.Sprintf("[ERROR] %v", pkgerrors.NewTransferError(msg.ID, err)))
		logger.Error().Err(err).Int("message_id", msg.ID).Msg("Failed to resolve destination")
		return false
	}

	if p.Skip {
		job.IncSkipped()
		uc.recorder.ItemSkipped(d.Kind)
		e.Log("[SKIP] Exists: " + p.Path)
		return false
	}
	if p.Renamed {
		e.Log("[WARN] Name exists with different size. Saving as: " + p.Path)
	}

	name := filepath.Base(p.Path)
	job.SetCurrent(name)
	e.Status(fmt.Sprintf("Starting: %s (total %s)", name, FormatOptionalSize(d.Size)))

	tr := newTracker(name, uc.now)
	progress := func(done, total int64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		s := tr.update(done, total)
		e.Progress(done, total, tr.format(s))
		return nil
	}

	path, err := client.DownloadMedia(ctx, msg, p.Path, progress)
	switch {
	case ctx.Err() != nil:
		e.Log("[STOP] Cancelled current download")
		return true
	case err != nil:
		job.IncFailed()
		uc.recorder.ItemFailed(d.Kind)
		terr := pkgerrors.NewTransferError(msg.ID, err)
		e.Log(fmt.Sprintf("[ERROR] %v", terr))
		logger.Warn().Err(err).Int("message_id", msg.ID).Str("path", p.Path).Msg("Transfer failed")
		return false
	case path == "":
		job.IncSkipped()
		uc.recorder.ItemSkipped(d.Kind)
		e.Log("[SKIP] No file for this message")
		return false
	}

	var size int64
	if d.Size != nil {
		size = *d.Size
	}
	job.AddSaved(size)
	uc.recorder.ItemSaved(d.Kind, size)
	e.Log("[OK] Saved: " + path)
	e.Status("Saved: " + filepath.Base(path))

	uc.mirrorFile(ctx, job, path, logger)
	return false
}

func (uc *DownloadUseCase) mirrorFile(ctx context.Context, job *entities.Job, path string, logger zerolog.Logger) {
	if uc.mirror == nil {
		return
	}

	key, err := filepath.Rel(job.Config.Root, path)
	if err != nil {
		key = filepath.Base(path)
	}

	if err := uc.mirror.MirrorFile(ctx, path, filepath.ToSlash(key)); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to mirror file")
	}
}

func limitReached(job *entities.Job, cons entities.Constraints) bool {
	return cons.Limit != nil && job.Processed() >= int64(*cons.Limit)
}

func (uc *DownloadUseCase) stop(job *entities.Job) entities.Snapshot {
	job.SetState(entities.StateStopped)
	return job.Snapshot()
}
