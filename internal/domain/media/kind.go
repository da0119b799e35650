package media

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the media taxonomy used for filtering and grouping
type Kind string

const (
	KindPhoto     Kind = "photo"
	KindVideo     Kind = "video"
	KindAudio     Kind = "audio"
	KindDocument  Kind = "document"
	KindVoice     Kind = "voice"
	KindSticker   Kind = "sticker"
	KindGIF       Kind = "gif"
	KindVideoNote Kind = "video_note"
)

// AllKinds lists every kind in display order
var AllKinds = []Kind{
	KindPhoto,
	KindVideo,
	KindAudio,
	KindDocument,
	KindVoice,
	KindSticker,
	KindGIF,
	KindVideoNote,
}

var categories = map[Kind]string{
	KindPhoto:     "Photos",
	KindVideo:     "Videos",
	KindAudio:     "Audio",
	KindDocument:  "Documents",
	KindVoice:     "Voice",
	KindSticker:   "Stickers",
	KindGIF:       "GIFs",
	KindVideoNote: "Video_Notes",
}

// Category returns the folder name used when grouping by type
func (k Kind) Category() string {
	if c, ok := categories[k]; ok {
		return c
	}
	return "Other"
}

// ParseKind parses a kind name, accepting "video-note" and "videonote" aliases
func ParseKind(s string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if normalized == "videonote" {
		normalized = string(KindVideoNote)
	}

	k := Kind(normalized)
	if _, ok := categories[k]; !ok {
		return "", fmt.Errorf("unknown media kind %q", s)
	}
	return k, nil
}

// FilterSet selects which kinds a job downloads
type FilterSet map[Kind]bool

// NewFilterSet enables the given kinds
func NewFilterSet(kinds ...Kind) FilterSet {
	fs := make(FilterSet, len(kinds))
	for _, k := range kinds {
		fs[k] = true
	}
	return fs
}

// Allows reports whether k is enabled
func (fs FilterSet) Allows(k Kind) bool {
	return fs[k]
}

// Empty reports whether no kind is enabled
func (fs FilterSet) Empty() bool {
	for _, on := range fs {
		if on {
			return false
		}
	}
	return true
}

// Kinds returns the enabled kinds sorted by name
func (fs FilterSet) Kinds() []Kind {
	kinds := make([]Kind, 0, len(fs))
	for k, on := range fs {
		if on {
			kinds = append(kinds, k)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Descriptor is a classified downloadable item
type Descriptor struct {
	MessageID     int
	Kind          Kind
	Size          *int64
	SuggestedName string
	MimeType      string
}
