package media

import (
	"strings"

	"github.com/Conte777/mediaflow/internal/domain"
)

// Classify maps a message attachment to exactly one kind.
// The second result is false when the message carries no attachment.
func Classify(msg domain.Message) (Kind, bool) {
	switch a := msg.Attachment.(type) {
	case domain.PhotoAttachment:
		return KindPhoto, true
	case domain.DocumentAttachment:
		return classifyDocument(a), true
	default:
		return "", false
	}
}

func classifyDocument(doc domain.DocumentAttachment) Kind {
	attrs := doc.Attributes
	mime := strings.ToLower(doc.MimeType)

	switch {
	case attrs.Sticker:
		return KindSticker
	case attrs.Voice:
		return KindVoice
	case attrs.RoundVideo:
		return KindVideoNote
	case attrs.Animated || mime == "image/gif":
		return KindGIF
	case strings.HasPrefix(mime, "video/") || attrs.Video:
		return KindVideo
	case strings.HasPrefix(mime, "audio/"):
		return KindAudio
	default:
		return KindDocument
	}
}

// Describe classifies msg and builds its descriptor
func Describe(msg domain.Message) (Descriptor, bool) {
	kind, ok := Classify(msg)
	if !ok {
		return Descriptor{}, false
	}

	d := Descriptor{MessageID: msg.ID, Kind: kind}
	if size, known := msg.Attachment.ByteSize(); known {
		d.Size = &size
	}

	switch a := msg.Attachment.(type) {
	case domain.PhotoAttachment:
		d.MimeType = "image/jpeg"
	case domain.DocumentAttachment:
		d.MimeType = a.MimeType
		d.SuggestedName = a.FileName
	}

	return d, true
}
