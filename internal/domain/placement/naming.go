package placement

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Conte777/mediaflow/internal/domain/media"
)

// UnnamedFile replaces names that sanitize to nothing usable
const UnnamedFile = "unnamed_file"

const maxNameBytes = 200

// extensions overrides the platform MIME database where its first choice is
// not what users expect (image/jpeg gives ".jfif" on some systems)
var extensions = map[string]string{
	"image/jpeg":               ".jpg",
	"image/jpg":                ".jpg",
	"image/png":                ".png",
	"image/gif":                ".gif",
	"image/webp":               ".webp",
	"image/heic":               ".heic",
	"video/mp4":                ".mp4",
	"video/quicktime":          ".mov",
	"video/webm":               ".webm",
	"video/x-matroska":         ".mkv",
	"audio/mpeg":               ".mp3",
	"audio/mp4":                ".m4a",
	"audio/ogg":                ".ogg",
	"audio/x-wav":              ".wav",
	"audio/flac":               ".flac",
	"application/pdf":          ".pdf",
	"application/zip":          ".zip",
	"application/x-tgsticker":  ".tgs",
	"application/x-rar":        ".rar",
	"application/octet-stream": "",
}

// Extension returns the file extension for a MIME type, or "" when unknown
func Extension(mimeType string) string {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	if m == "" {
		return ""
	}
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}

	if ext, ok := extensions[m]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(m); err == nil && len(exts) > 0 {
		return exts[0]
	}

	// media subtypes are usually their own extension (video/x-flv excepted)
	for _, prefix := range []string{"image/", "video/", "audio/"} {
		if sub, ok := strings.CutPrefix(m, prefix); ok && isSimpleToken(sub) {
			return "." + sub
		}
	}
	return ""
}

func isSimpleToken(s string) bool {
	if s == "" || strings.HasPrefix(s, "x-") {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// FileName returns the explicit name from d, or "{kind}_{message_id}{ext}"
func FileName(d media.Descriptor) string {
	if name := strings.TrimSpace(d.SuggestedName); name != "" {
		return name
	}
	return fmt.Sprintf("%s_%d%s", d.Kind, d.MessageID, Extension(d.MimeType))
}

// Sanitize removes characters that are reserved on common filesystems and
// control characters. Results that would escape or name the current directory
// become UnnamedFile.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r):
			continue
		case unicode.IsControl(r), r == utf8.RuneError:
			continue
		}
		b.WriteRune(r)
	}

	cleaned := strings.TrimSpace(b.String())
	switch cleaned {
	case "", ".", "..":
		return UnnamedFile
	}

	return truncate(cleaned, maxNameBytes)
}

// truncate shortens name to at most limit bytes keeping the extension and
// never splitting a rune
func truncate(name string, limit int) string {
	if len(name) <= limit {
		return name
	}

	ext := filepath.Ext(name)
	if len(ext) >= limit/2 {
		ext = ""
	}
	stem := name[:len(name)-len(ext)]

	budget := limit - len(ext)
	for budget > 0 && !utf8.RuneStart(stem[budget]) {
		budget--
	}

	return strings.TrimSpace(stem[:budget]) + ext
}
