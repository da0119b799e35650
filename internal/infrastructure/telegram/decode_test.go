package telegram

import (
	"testing"
	"time"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/mediaflow/internal/domain"
)

func TestDecodeMessage_Photo(t *testing.T) {
	photo := &tg.Photo{
		ID:         10,
		AccessHash: 20,
		Sizes: []tg.PhotoSizeClass{
			&tg.PhotoStrippedSize{Type: "i"},
			&tg.PhotoSize{Type: "m", W: 320, H: 240, Size: 1000},
			&tg.PhotoSizeProgressive{Type: "y", W: 1280, H: 960, Sizes: []int{5000, 9000, 12000}},
			&tg.PhotoSize{Type: "x", W: 800, H: 600, Size: 8000},
		},
	}

	msg, ok := decodeMessage(&tg.Message{
		ID:    5,
		Date:  1700000000,
		Media: &tg.MessageMediaPhoto{Photo: photo},
	})
	require.True(t, ok)

	assert.Equal(t, 5, msg.ID)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), msg.Date)

	att, ok := msg.Attachment.(domain.PhotoAttachment)
	require.True(t, ok, "expected photo attachment, got %T", msg.Attachment)
	assert.Equal(t, int64(12000), att.Size)

	ref, ok := att.Ref.(*photoRef)
	require.True(t, ok)
	assert.Equal(t, "y", ref.thumb)

	loc, size, ok := fileLocation(att)
	require.True(t, ok)
	assert.Equal(t, int64(12000), size)
	assert.Equal(t, &tg.InputPhotoFileLocation{ID: 10, AccessHash: 20, ThumbSize: "y"}, loc)
}

func TestDecodeMessage_Document(t *testing.T) {
	tests := []struct {
		name  string
		attrs []tg.DocumentAttributeClass
		want  domain.DocumentAttributes
		file  string
	}{
		{
			name:  "plain file",
			attrs: []tg.DocumentAttributeClass{&tg.DocumentAttributeFilename{FileName: "report.pdf"}},
			file:  "report.pdf",
		},
		{
			name:  "voice",
			attrs: []tg.DocumentAttributeClass{&tg.DocumentAttributeAudio{Voice: true}},
			want:  domain.DocumentAttributes{Audio: true, Voice: true},
		},
		{
			name:  "round video",
			attrs: []tg.DocumentAttributeClass{&tg.DocumentAttributeVideo{RoundMessage: true}},
			want:  domain.DocumentAttributes{Video: true, RoundVideo: true},
		},
		{
			name: "animation",
			attrs: []tg.DocumentAttributeClass{
				&tg.DocumentAttributeAnimated{},
				&tg.DocumentAttributeVideo{},
				&tg.DocumentAttributeFilename{FileName: "cat.mp4"},
			},
			want: domain.DocumentAttributes{Animated: true, Video: true},
			file: "cat.mp4",
		},
		{
			name:  "sticker",
			attrs: []tg.DocumentAttributeClass{&tg.DocumentAttributeSticker{}},
			want:  domain.DocumentAttributes{Sticker: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := decodeMessage(&tg.Message{
				ID: 1,
				Media: &tg.MessageMediaDocument{Document: &tg.Document{
					ID:         3,
					MimeType:   "application/octet-stream",
					Size:       42,
					Attributes: tt.attrs,
				}},
			})
			require.True(t, ok)
			assert.False(t, msg.HasDate())

			att, ok := msg.Attachment.(domain.DocumentAttachment)
			require.True(t, ok, "expected document attachment, got %T", msg.Attachment)
			assert.Equal(t, tt.want, att.Attributes)
			assert.Equal(t, tt.file, att.FileName)
			assert.Equal(t, int64(42), att.Size)
		})
	}
}

func TestDecodeMessage_NoDownloadableMedia(t *testing.T) {
	tests := []struct {
		name string
		msg  tg.MessageClass
		ok   bool
	}{
		{name: "text", msg: &tg.Message{ID: 1, Message: "hello"}, ok: true},
		{name: "empty photo", msg: &tg.Message{ID: 2, Media: &tg.MessageMediaPhoto{Photo: &tg.PhotoEmpty{}}}, ok: true},
		{name: "empty document", msg: &tg.Message{ID: 3, Media: &tg.MessageMediaDocument{Document: &tg.DocumentEmpty{}}}, ok: true},
		{name: "geo", msg: &tg.Message{ID: 4, Media: &tg.MessageMediaGeo{}}, ok: true},
		{name: "service", msg: &tg.MessageService{ID: 5}, ok: false},
		{name: "empty", msg: &tg.MessageEmpty{ID: 6}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := decodeMessage(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Nil(t, msg.Attachment)
		})
	}
}

func TestLargestPhotoSize_OnlyThumbnails(t *testing.T) {
	thumb, size := largestPhotoSize(&tg.Photo{Sizes: []tg.PhotoSizeClass{&tg.PhotoStrippedSize{Type: "i"}}})
	assert.Empty(t, thumb)
	assert.Zero(t, size)
}

func TestProgressWriter(t *testing.T) {
	var calls [][2]int64
	sink := &bytesSink{}
	w := &progressWriter{w: sink, total: 6, progress: func(done, total int64) error {
		calls = append(calls, [2]int64{done, total})
		return nil
	}}

	_, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	_, err = w.Write([]byte("def"))
	require.NoError(t, err)

	assert.Equal(t, [][2]int64{{3, 6}, {6, 6}}, calls)
	assert.Equal(t, "abcdef", string(sink.data))
}

func TestProgressWriter_AbortsOnCallbackError(t *testing.T) {
	stop := assert.AnError
	w := &progressWriter{w: &bytesSink{}, progress: func(done, total int64) error { return stop }}

	_, err := w.Write([]byte("abc"))
	assert.ErrorIs(t, err, stop)
}

type bytesSink struct {
	data []byte
}

func (s *bytesSink) Write(p []byte) (int, error) {
	s.data = append(s.data, p...)
	return len(p), nil
}
