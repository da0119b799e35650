package placement

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Conte777/mediaflow/internal/domain"
	"github.com/Conte777/mediaflow/internal/domain/media"
)

// Grouping selects the folder layout under the download root
type Grouping string

const (
	GroupingFlat          Grouping = "flat"
	GroupingByChat        Grouping = "by-chat"
	GroupingByChatAndType Grouping = "by-chat-and-type"
	GroupingByChatAndDate Grouping = "by-chat-and-date"
)

// UnknownDateFolder holds messages without a timestamp under date grouping
const UnknownDateFolder = "Unknown_Date"

// maxCollisionSuffix bounds the " (n)" search
const maxCollisionSuffix = 100000

// ErrOutsideRoot is returned when a resolved path would leave the root
var ErrOutsideRoot = errors.New("resolved path escapes download root")

// ParseGrouping parses a grouping mode name
func ParseGrouping(s string) (Grouping, error) {
	g := Grouping(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case GroupingFlat, GroupingByChat, GroupingByChatAndType, GroupingByChatAndDate:
		return g, nil
	case "":
		return GroupingFlat, nil
	}
	return "", fmt.Errorf("unknown grouping mode %q", s)
}

// Layout is the per-job part of placement
type Layout struct {
	Root         string
	Chat         domain.ConversationTarget
	Grouping     Grouping
	SkipExisting bool
}

// Placement is the resolved destination of one media item
type Placement struct {
	// Path is where the item should be written
	Path string
	// Skip is set when an identical file already exists at Path
	Skip bool
	// Renamed is set when the natural name was taken and Path carries a
	// " (n)" suffix
	Renamed bool
}

// Resolver turns descriptors into collision-free paths under a root
type Resolver struct {
	fs     afero.Fs
	logger zerolog.Logger
}

// NewResolver creates a resolver over fs
func NewResolver(fs afero.Fs, logger zerolog.Logger) *Resolver {
	return &Resolver{
		fs:     fs,
		logger: logger.With().Str("component", "placement").Logger(),
	}
}

// Resolve computes where d should be stored. The destination folder is
// created before returning.
func (r *Resolver) Resolve(d media.Descriptor, msg domain.Message, layout Layout) (Placement, error) {
	root := filepath.Clean(layout.Root)
	dir := filepath.Join(append([]string{root}, Folders(d.Kind, msg, layout)...)...)

	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return Placement{}, fmt.Errorf("create folder %s: %w", dir, err)
	}

	name := Sanitize(FileName(d))
	path := filepath.Join(dir, name)
	if err := ensureWithin(root, path); err != nil {
		return Placement{}, err
	}

	info, err := r.fs.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return Placement{Path: path}, nil
	case err != nil:
		return Placement{}, fmt.Errorf("stat %s: %w", path, err)
	}

	if layout.SkipExisting && d.Size != nil && !info.IsDir() && info.Size() == *d.Size {
		return Placement{Path: path, Skip: true}, nil
	}

	unique, err := r.uniquePath(path)
	if err != nil {
		return Placement{}, err
	}

	r.logger.Debug().
		Str("path", path).
		Str("unique", unique).
		Msg("Destination taken, using numbered name")

	return Placement{Path: unique, Renamed: true}, nil
}

// Folders returns the sanitized folder components below the root
func Folders(kind media.Kind, msg domain.Message, layout Layout) []string {
	if layout.Grouping == GroupingFlat || layout.Grouping == "" {
		return nil
	}

	folders := []string{chatFolder(layout.Chat)}

	switch layout.Grouping {
	case GroupingByChatAndType:
		folders = append(folders, kind.Category())
	case GroupingByChatAndDate:
		if msg.HasDate() {
			folders = append(folders, msg.Date.UTC().Format("2006-01"))
		} else {
			folders = append(folders, UnknownDateFolder)
		}
	}

	return folders
}

func chatFolder(chat domain.ConversationTarget) string {
	if strings.TrimSpace(chat.Title) == "" {
		return fmt.Sprintf("chat_%d", chat.ID)
	}
	return Sanitize(chat.Title)
}

func (r *Resolver) uniquePath(path string) (string, error) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	for n := 1; n <= maxCollisionSuffix; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)

		exists, err := afero.Exists(r.fs, candidate)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no free name for %s", path)
}

func ensureWithin(root, path string) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutsideRoot, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return nil
}
