package telegram

import (
	"time"

	"github.com/gotd/td/tg"

	"github.com/Conte777/mediaflow/internal/domain"
)

// photoRef is the download handle behind a domain.PhotoAttachment
type photoRef struct {
	photo *tg.Photo
	thumb string
}

// documentRef is the download handle behind a domain.DocumentAttachment
type documentRef struct {
	doc *tg.Document
}

// decodeMessage converts a history entry into a domain.Message. Service and
// empty messages yield false.
func decodeMessage(mc tg.MessageClass) (domain.Message, bool) {
	m, ok := mc.(*tg.Message)
	if !ok {
		return domain.Message{}, false
	}

	msg := domain.Message{ID: m.ID}
	if m.Date > 0 {
		msg.Date = time.Unix(int64(m.Date), 0).UTC()
	}
	if m.Media != nil {
		msg.Attachment = decodeMedia(m.Media)
	}
	return msg, true
}

func decodeMedia(media tg.MessageMediaClass) domain.Attachment {
	switch md := media.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := md.Photo.(*tg.Photo)
		if !ok {
			return nil
		}
		thumb, size := largestPhotoSize(photo)
		if thumb == "" {
			return nil
		}
		return domain.PhotoAttachment{
			Size: size,
			Ref:  &photoRef{photo: photo, thumb: thumb},
		}
	case *tg.MessageMediaDocument:
		doc, ok := md.Document.(*tg.Document)
		if !ok {
			return nil
		}
		return decodeDocument(doc)
	default:
		return nil
	}
}

func decodeDocument(doc *tg.Document) domain.DocumentAttachment {
	att := domain.DocumentAttachment{
		MimeType: doc.MimeType,
		Size:     doc.Size,
		Ref:      &documentRef{doc: doc},
	}

	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeVideo:
			att.Attributes.Video = true
			if a.RoundMessage {
				att.Attributes.RoundVideo = true
			}
		case *tg.DocumentAttributeAudio:
			att.Attributes.Audio = true
			if a.Voice {
				att.Attributes.Voice = true
			}
		case *tg.DocumentAttributeSticker:
			att.Attributes.Sticker = true
		case *tg.DocumentAttributeAnimated:
			att.Attributes.Animated = true
		case *tg.DocumentAttributeFilename:
			att.FileName = a.FileName
		}
	}

	return att
}

// largestPhotoSize picks the biggest full-size variant of a photo and
// returns its thumb type and byte size
func largestPhotoSize(photo *tg.Photo) (string, int64) {
	var (
		bestType string
		bestSize int64
		maxArea  int
	)

	for _, size := range photo.Sizes {
		var (
			typ   string
			area  int
			bytes int64
		)
		switch ps := size.(type) {
		case *tg.PhotoSize:
			typ, area, bytes = ps.Type, ps.W*ps.H, int64(ps.Size)
		case *tg.PhotoSizeProgressive:
			typ, area = ps.Type, ps.W*ps.H
			if n := len(ps.Sizes); n > 0 {
				bytes = int64(ps.Sizes[n-1])
			}
		default:
			continue
		}
		if area > maxArea {
			maxArea = area
			bestType = typ
			bestSize = bytes
		}
	}

	return bestType, bestSize
}
