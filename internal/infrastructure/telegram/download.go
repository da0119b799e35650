package telegram

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"

	"github.com/Conte777/mediaflow/internal/domain"
)

const partSuffix = ".part"

// progressWriter counts written bytes and reports them to a ProgressFunc.
// A progress error aborts the stream.
type progressWriter struct {
	w        io.Writer
	done     int64
	total    int64
	progress domain.ProgressFunc
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.done += int64(n)
	if err != nil {
		return n, err
	}
	if pw.progress != nil {
		if err := pw.progress(pw.done, pw.total); err != nil {
			return n, err
		}
	}
	return n, nil
}

// fileLocation builds the download location of an attachment. Attachments
// without a handle from this client yield false.
func fileLocation(att domain.Attachment) (tg.InputFileLocationClass, int64, bool) {
	switch a := att.(type) {
	case domain.PhotoAttachment:
		ref, ok := a.Ref.(*photoRef)
		if !ok || ref == nil {
			return nil, 0, false
		}
		return &tg.InputPhotoFileLocation{
			ID:            ref.photo.ID,
			AccessHash:    ref.photo.AccessHash,
			FileReference: ref.photo.FileReference,
			ThumbSize:     ref.thumb,
		}, a.Size, true
	case domain.DocumentAttachment:
		ref, ok := a.Ref.(*documentRef)
		if !ok || ref == nil {
			return nil, 0, false
		}
		return &tg.InputDocumentFileLocation{
			ID:            ref.doc.ID,
			AccessHash:    ref.doc.AccessHash,
			FileReference: ref.doc.FileReference,
		}, a.Size, true
	default:
		return nil, 0, false
	}
}

// DownloadMedia writes the message attachment to path. Data is streamed to
// path+".part" and renamed into place once complete, so an interrupted
// transfer never leaves a file that looks finished.
func (c *MTProtoClient) DownloadMedia(ctx context.Context, msg domain.Message, path string, progress domain.ProgressFunc) (string, error) {
	loc, total, ok := fileLocation(msg.Attachment)
	if !ok {
		return "", nil
	}

	part := path + partSuffix
	err := c.invoke(ctx, "download media", func(ctx context.Context, api *tg.Client) error {
		f, err := c.fs.OpenFile(part, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}

		w := &progressWriter{w: f, total: total, progress: progress}
		_, err = downloader.NewDownloader().Download(api, loc).Stream(ctx, w)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		return err
	})
	if err != nil {
		_ = c.fs.Remove(part)
		c.logger.Debug().Err(err).Int("message_id", msg.ID).Msg("download failed")
		return "", err
	}

	if err := c.fs.Rename(part, path); err != nil {
		_ = c.fs.Remove(part)
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}

	return path, nil
}
