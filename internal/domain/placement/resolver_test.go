package placement

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/mediaflow/internal/domain"
	"github.com/Conte777/mediaflow/internal/domain/media"
)

const root = "/downloads"

func size(n int64) *int64 { return &n }

func newTestResolver() (*Resolver, afero.Fs) {
	fs := afero.NewMemMapFs()
	return NewResolver(fs, zerolog.Nop()), fs
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "report.pdf", want: "report.pdf"},
		{in: `a<b>c:d"e/f\g|h?i*j.txt`, want: "abcdefghij.txt"},
		{in: "line\nbreak\t.txt", want: "linebreak.txt"},
		{in: "", want: UnnamedFile},
		{in: ".", want: UnnamedFile},
		{in: "..", want: UnnamedFile},
		{in: "../..", want: "...."},
		{in: "///", want: UnnamedFile},
		{in: "  spaced  ", want: "spaced"},
		{in: "фото.jpg", want: "фото.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_TruncatesLongNames(t *testing.T) {
	long := strings.Repeat("я", 300) + ".mp4"

	got := Sanitize(long)
	assert.LessOrEqual(t, len(got), maxNameBytes)
	assert.True(t, strings.HasSuffix(got, ".mp4"))
	assert.True(t, utf8Valid(got))
}

func utf8Valid(s string) bool {
	return strings.ToValidUTF8(s, "�") == s
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		d    media.Descriptor
		want string
	}{
		{
			name: "explicit name",
			d:    media.Descriptor{MessageID: 5, Kind: media.KindDocument, SuggestedName: "a.pdf", MimeType: "application/pdf"},
			want: "a.pdf",
		},
		{
			name: "photo",
			d:    media.Descriptor{MessageID: 5, Kind: media.KindPhoto, MimeType: "image/jpeg"},
			want: "photo_5.jpg",
		},
		{
			name: "voice",
			d:    media.Descriptor{MessageID: 9, Kind: media.KindVoice, MimeType: "audio/ogg"},
			want: "voice_9.ogg",
		},
		{
			name: "unknown mime has no extension",
			d:    media.Descriptor{MessageID: 3, Kind: media.KindDocument, MimeType: "application/x-unheard-of"},
			want: "document_3",
		},
		{
			name: "no mime",
			d:    media.Descriptor{MessageID: 4, Kind: media.KindDocument},
			want: "document_4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.d))
		})
	}
}

func TestResolve_Grouping(t *testing.T) {
	chat := domain.ConversationTarget{Title: "My: Chat", ID: -1001}
	date := time.Date(2024, 3, 31, 23, 30, 0, 0, time.FixedZone("UTC+3", 3*3600))
	photo := media.Descriptor{MessageID: 1, Kind: media.KindPhoto, MimeType: "image/jpeg"}

	tests := []struct {
		name     string
		grouping Grouping
		msg      domain.Message
		want     string
	}{
		{name: "flat", grouping: GroupingFlat, msg: domain.Message{ID: 1, Date: date}, want: "/downloads/photo_1.jpg"},
		{name: "by chat", grouping: GroupingByChat, msg: domain.Message{ID: 1, Date: date}, want: "/downloads/My Chat/photo_1.jpg"},
		{name: "by chat and type", grouping: GroupingByChatAndType, msg: domain.Message{ID: 1, Date: date}, want: "/downloads/My Chat/Photos/photo_1.jpg"},
		{name: "by chat and date uses utc", grouping: GroupingByChatAndDate, msg: domain.Message{ID: 1, Date: date}, want: "/downloads/My Chat/2024-03/photo_1.jpg"},
		{name: "missing date", grouping: GroupingByChatAndDate, msg: domain.Message{ID: 1}, want: "/downloads/My Chat/Unknown_Date/photo_1.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fs := newTestResolver()

			p, err := r.Resolve(photo, tt.msg, Layout{Root: root, Chat: chat, Grouping: tt.grouping})
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), p.Path)
			assert.False(t, p.Skip)

			dirExists, err := afero.DirExists(fs, filepath.Dir(p.Path))
			require.NoError(t, err)
			assert.True(t, dirExists, "folder must exist before writing")
		})
	}
}

func TestResolve_StaysWithinRoot(t *testing.T) {
	hostile := []string{"../../etc/passwd", "..", "/abs/path", `..\..\win`, "a/../../b"}

	for _, name := range hostile {
		t.Run(name, func(t *testing.T) {
			r, _ := newTestResolver()
			d := media.Descriptor{MessageID: 1, Kind: media.KindDocument, SuggestedName: name}
			chat := domain.ConversationTarget{Title: "../../escape", ID: 1}

			p, err := r.Resolve(d, domain.Message{ID: 1}, Layout{Root: root, Chat: chat, Grouping: GroupingByChatAndType})
			require.NoError(t, err)

			rel, err := filepath.Rel(root, p.Path)
			require.NoError(t, err)
			assert.False(t, strings.HasPrefix(rel, ".."), "path %s escapes root", p.Path)
		})
	}
}

func TestResolve_SkipExistingSameSize(t *testing.T) {
	r, fs := newTestResolver()
	require.NoError(t, afero.WriteFile(fs, "/downloads/a.pdf", make([]byte, 10), 0o644))

	d := media.Descriptor{MessageID: 1, Kind: media.KindDocument, SuggestedName: "a.pdf", Size: size(10)}
	p, err := r.Resolve(d, domain.Message{ID: 1}, Layout{Root: root, Grouping: GroupingFlat, SkipExisting: true})

	require.NoError(t, err)
	assert.True(t, p.Skip)
	assert.Equal(t, filepath.FromSlash("/downloads/a.pdf"), p.Path)
}

func TestResolve_CollisionNeverOverwrites(t *testing.T) {
	r, fs := newTestResolver()
	require.NoError(t, afero.WriteFile(fs, "/downloads/a.pdf", make([]byte, 10), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/downloads/a (1).pdf", make([]byte, 10), 0o644))

	tests := []struct {
		name string
		d    media.Descriptor
		skip bool
	}{
		{name: "different size", d: media.Descriptor{MessageID: 1, Kind: media.KindDocument, SuggestedName: "a.pdf", Size: size(20)}, skip: true},
		{name: "unknown size", d: media.Descriptor{MessageID: 1, Kind: media.KindDocument, SuggestedName: "a.pdf"}, skip: true},
		{name: "skip disabled", d: media.Descriptor{MessageID: 1, Kind: media.KindDocument, SuggestedName: "a.pdf", Size: size(10)}, skip: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Resolve(tt.d, domain.Message{ID: 1}, Layout{Root: root, Grouping: GroupingFlat, SkipExisting: tt.skip})

			require.NoError(t, err)
			assert.False(t, p.Skip)
			assert.True(t, p.Renamed)
			assert.Equal(t, filepath.FromSlash("/downloads/a (2).pdf"), p.Path)
		})
	}
}

func TestParseGrouping(t *testing.T) {
	g, err := ParseGrouping("By-Chat-And-Date")
	require.NoError(t, err)
	assert.Equal(t, GroupingByChatAndDate, g)

	g, err = ParseGrouping("")
	require.NoError(t, err)
	assert.Equal(t, GroupingFlat, g)

	_, err = ParseGrouping("by-planet")
	assert.Error(t, err)
}
