package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{3,31}$`)

// ParseTarget parses a marked numeric id, "@username", a t.me link or a
// tg://resolve link into a conversation target
func ParseTarget(s string) (ConversationTarget, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ConversationTarget{}, ErrInvalidTarget
	}

	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		if id == 0 {
			return ConversationTarget{}, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
		}
		return ConversationTarget{ID: id}, nil
	}

	if name, ok := strings.CutPrefix(s, "@"); ok {
		return usernameTarget(name, s)
	}

	if strings.HasPrefix(s, "tg://") {
		u, err := url.Parse(s)
		if err != nil || u.Host != "resolve" {
			return ConversationTarget{}, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
		}
		return usernameTarget(u.Query().Get("domain"), s)
	}

	link := s
	if !strings.Contains(link, "://") {
		link = "https://" + link
	}
	u, err := url.Parse(link)
	if err != nil {
		return ConversationTarget{}, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
	}

	switch strings.TrimPrefix(strings.ToLower(u.Host), "www.") {
	case "t.me", "telegram.me", "telegram.dog":
	default:
		// a bare word is treated as a username
		if !strings.Contains(s, "/") && !strings.Contains(s, ".") {
			return usernameTarget(s, s)
		}
		return ConversationTarget{}, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) > 1 && parts[0] == "s" {
		parts = parts[1:]
	}
	if len(parts) == 0 || parts[0] == "" || parts[0] == "joinchat" || strings.HasPrefix(parts[0], "+") {
		return ConversationTarget{}, fmt.Errorf("%w: invite links are not supported: %q", ErrInvalidTarget, s)
	}

	return usernameTarget(parts[0], s)
}

func usernameTarget(name, original string) (ConversationTarget, error) {
	if !usernamePattern.MatchString(name) {
		return ConversationTarget{}, fmt.Errorf("%w: %q", ErrInvalidTarget, original)
	}
	return ConversationTarget{Username: name}, nil
}

const channelIDOffset int64 = 1000000000000

// MarkedID converts a raw platform id of the given kind into the marked form
func MarkedID(kind PeerKind, id int64) int64 {
	switch kind {
	case PeerChat:
		return -id
	case PeerChannel:
		return -(channelIDOffset + id)
	default:
		return id
	}
}

// UnmarkID splits a marked id into its kind and raw platform id
func UnmarkID(marked int64) (PeerKind, int64) {
	switch {
	case marked > 0:
		return PeerUser, marked
	case marked < -channelIDOffset:
		return PeerChannel, -marked - channelIDOffset
	default:
		return PeerChat, -marked
	}
}
