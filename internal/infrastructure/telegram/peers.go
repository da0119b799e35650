package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/gotd/td/tg"

	"github.com/Conte777/mediaflow/internal/domain"
)

// remotePeer is the domain.Peer handed out by MTProtoClient. It carries the
// input peer needed for follow-up calls.
type remotePeer struct {
	id        int64 // marked
	title     string
	kind      domain.PeerKind
	username  string
	members   *int
	broadcast bool // channel that is not a supergroup
	input     tg.InputPeerClass
}

func (p *remotePeer) PeerID() int64 { return p.id }

func (p *remotePeer) PeerTitle() string { return p.title }

func (p *remotePeer) PeerKind() domain.PeerKind { return p.kind }

func peerFromUser(u *tg.User) *remotePeer {
	title := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if title == "" {
		title = u.Username
	}
	return &remotePeer{
		id:       domain.MarkedID(domain.PeerUser, u.ID),
		title:    title,
		kind:     domain.PeerUser,
		username: u.Username,
		input:    &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash},
	}
}

func peerFromChat(ch *tg.Chat) *remotePeer {
	members := ch.ParticipantsCount
	return &remotePeer{
		id:      domain.MarkedID(domain.PeerChat, ch.ID),
		title:   ch.Title,
		kind:    domain.PeerChat,
		members: &members,
		input:   &tg.InputPeerChat{ChatID: ch.ID},
	}
}

func peerFromChannel(ch *tg.Channel) *remotePeer {
	p := &remotePeer{
		id:        domain.MarkedID(domain.PeerChannel, ch.ID),
		title:     ch.Title,
		kind:      domain.PeerChannel,
		username:  ch.Username,
		broadcast: ch.Broadcast,
		input:     &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash},
	}
	if n, ok := ch.GetParticipantsCount(); ok {
		p.members = &n
	}
	return p
}

// peerFromClass converts a user or chat entity, returning nil for empty or
// forbidden entities
func peerFromClass(v any) *remotePeer {
	switch e := v.(type) {
	case *tg.User:
		return peerFromUser(e)
	case *tg.Chat:
		return peerFromChat(e)
	case *tg.Channel:
		return peerFromChannel(e)
	default:
		return nil
	}
}

// entities indexes users and chats of a response by marked ID
func entities(users []tg.UserClass, chats []tg.ChatClass) map[int64]*remotePeer {
	out := make(map[int64]*remotePeer, len(users)+len(chats))
	for _, u := range users {
		if p := peerFromClass(u); p != nil {
			out[p.id] = p
		}
	}
	for _, ch := range chats {
		if p := peerFromClass(ch); p != nil {
			out[p.id] = p
		}
	}
	return out
}

// markedPeerID returns the marked ID of a peer reference
func markedPeerID(peer tg.PeerClass) int64 {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return domain.MarkedID(domain.PeerUser, p.UserID)
	case *tg.PeerChat:
		return domain.MarkedID(domain.PeerChat, p.ChatID)
	case *tg.PeerChannel:
		return domain.MarkedID(domain.PeerChannel, p.ChannelID)
	default:
		return 0
	}
}

func (c *MTProtoClient) remember(peers map[int64]*remotePeer) {
	c.peersMu.Lock()
	defer c.peersMu.Unlock()
	for id, p := range peers {
		c.peers[id] = p
	}
}

func (c *MTProtoClient) cached(id int64) (*remotePeer, bool) {
	c.peersMu.RLock()
	defer c.peersMu.RUnlock()
	p, ok := c.peers[id]
	return p, ok
}

// asRemotePeer rejects peers produced by another client
func asRemotePeer(peer domain.Peer) (*remotePeer, error) {
	p, ok := peer.(*remotePeer)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: foreign peer handle %T", domain.ErrPeerNotFound, peer)
	}
	return p, nil
}

// ResolveEntity turns a conversation target into a peer handle. Usernames
// are resolved directly; numeric IDs need an access hash, so they are looked
// up in the account's dialogs.
func (c *MTProtoClient) ResolveEntity(ctx context.Context, target domain.ConversationTarget) (domain.Peer, error) {
	if target.Username != "" {
		return c.resolveUsername(ctx, target.Username)
	}
	if target.ID == 0 {
		return nil, domain.ErrInvalidTarget
	}

	if p, ok := c.cached(target.ID); ok {
		return p, nil
	}

	c.logger.Debug().Int64("peer_id", target.ID).Msg("resolving peer from dialogs")

	var found *remotePeer
	err := c.walkDialogs(ctx, 0, func(p *remotePeer) bool {
		if p.id == target.ID {
			found = p
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrPeerNotFound, target.ID)
	}
	return found, nil
}

func (c *MTProtoClient) resolveUsername(ctx context.Context, username string) (*remotePeer, error) {
	username = strings.TrimPrefix(username, "@")

	var resolved *tg.ContactsResolvedPeer
	err := c.invoke(ctx, "resolve username", func(ctx context.Context, api *tg.Client) error {
		var err error
		resolved, err = api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
			Username: username,
		})
		return err
	})
	if err != nil {
		c.logger.Error().Err(err).Str("username", username).Msg("failed to resolve username")
		return nil, err
	}

	found := entities(resolved.Users, resolved.Chats)
	c.remember(found)

	p, ok := found[markedPeerID(resolved.Peer)]
	if !ok {
		return nil, fmt.Errorf("%w: @%s", domain.ErrPeerNotFound, username)
	}
	return p, nil
}
