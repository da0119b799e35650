package telegram

import (
	"context"
	"fmt"

	"github.com/gotd/td/tg"

	"github.com/Conte777/mediaflow/internal/domain"
)

// dialogPage is one decoded page of the dialog list
type dialogPage struct {
	peers []*remotePeer
	// offsets for the next page
	offsetDate int
	offsetID   int
	offsetPeer tg.InputPeerClass
	last       bool
}

// walkDialogs pages through the account's dialogs newest first and calls fn
// for each peer until fn returns false or limit peers were visited (0 means
// all of them)
func (c *MTProtoClient) walkDialogs(ctx context.Context, limit int, fn func(p *remotePeer) bool) error {
	req := &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      c.dialogPageSize,
	}

	visited := 0
	for {
		page, err := c.dialogsPage(ctx, req)
		if err != nil {
			return err
		}

		for _, p := range page.peers {
			if !fn(p) {
				return nil
			}
			visited++
			if limit > 0 && visited >= limit {
				return nil
			}
		}

		if page.last {
			return nil
		}
		req.OffsetDate = page.offsetDate
		req.OffsetID = page.offsetID
		req.OffsetPeer = page.offsetPeer
	}
}

func (c *MTProtoClient) dialogsPage(ctx context.Context, req *tg.MessagesGetDialogsRequest) (*dialogPage, error) {
	var result tg.MessagesDialogsClass
	err := c.invoke(ctx, "get dialogs", func(ctx context.Context, api *tg.Client) error {
		var err error
		result, err = api.MessagesGetDialogs(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	var (
		dialogs  []tg.DialogClass
		messages []tg.MessageClass
		found    map[int64]*remotePeer
		last     bool
	)
	switch d := result.(type) {
	case *tg.MessagesDialogs:
		dialogs, messages = d.Dialogs, d.Messages
		found = entities(d.Users, d.Chats)
		last = true
	case *tg.MessagesDialogsSlice:
		dialogs, messages = d.Dialogs, d.Messages
		found = entities(d.Users, d.Chats)
		last = len(d.Dialogs) < req.Limit
	default:
		return &dialogPage{last: true}, nil
	}
	c.remember(found)

	page := &dialogPage{last: last || len(dialogs) == 0}
	for _, dc := range dialogs {
		dialog, ok := dc.(*tg.Dialog)
		if !ok {
			continue
		}
		id := markedPeerID(dialog.Peer)
		p, ok := found[id]
		if !ok {
			continue
		}
		page.peers = append(page.peers, p)

		page.offsetID = dialog.TopMessage
		page.offsetPeer = p.input
		page.offsetDate = messageDate(messages, id, dialog.TopMessage)
	}
	if page.offsetPeer == nil {
		page.last = true
	}

	return page, nil
}

// messageDate finds the date of message msgID in peer among messages
func messageDate(messages []tg.MessageClass, peer int64, msgID int) int {
	for _, mc := range messages {
		switch m := mc.(type) {
		case *tg.Message:
			if m.ID == msgID && markedPeerID(m.PeerID) == peer {
				return m.Date
			}
		case *tg.MessageService:
			if m.ID == msgID && markedPeerID(m.PeerID) == peer {
				return m.Date
			}
		}
	}
	return 0
}

// chatTitle decorates a dialog title with its member count when known
func chatTitle(p *remotePeer) string {
	if p.members == nil {
		return p.title
	}
	if p.broadcast {
		return fmt.Sprintf("%s (%d subs)", p.title, *p.members)
	}
	return fmt.Sprintf("%s (%d members)", p.title, *p.members)
}

// Dialogs returns up to limit conversations of the account
func (c *MTProtoClient) Dialogs(ctx context.Context, limit int) ([]domain.Chat, error) {
	if limit <= 0 {
		limit = c.dialogPageSize
	}

	chats := make([]domain.Chat, 0, limit)
	err := c.walkDialogs(ctx, limit, func(p *remotePeer) bool {
		chats = append(chats, domain.Chat{
			Title: chatTitle(p),
			ID:    p.id,
			Kind:  p.kind,
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("count", len(chats)).Msg("fetched dialogs")
	return chats, nil
}

// Profile returns detailed information about a peer
func (c *MTProtoClient) Profile(ctx context.Context, peer domain.Peer) (domain.Profile, error) {
	p, err := asRemotePeer(peer)
	if err != nil {
		return domain.Profile{}, err
	}

	profile := domain.Profile{
		ID:           p.id,
		Title:        p.title,
		Username:     p.username,
		Type:         p.kind,
		MembersCount: p.members,
	}

	switch in := p.input.(type) {
	case *tg.InputPeerChannel:
		var full *tg.MessagesChatFull
		err = c.invoke(ctx, "get full channel", func(ctx context.Context, api *tg.Client) error {
			var err error
			full, err = api.ChannelsGetFullChannel(ctx, &tg.InputChannel{ChannelID: in.ChannelID, AccessHash: in.AccessHash})
			return err
		})
		if err == nil {
			applyChatFull(&profile, full.FullChat)
		}
	case *tg.InputPeerChat:
		var full *tg.MessagesChatFull
		err = c.invoke(ctx, "get full chat", func(ctx context.Context, api *tg.Client) error {
			var err error
			full, err = api.MessagesGetFullChat(ctx, in.ChatID)
			return err
		})
		if err == nil {
			applyChatFull(&profile, full.FullChat)
		}
	case *tg.InputPeerUser:
		var full *tg.UsersUserFull
		err = c.invoke(ctx, "get full user", func(ctx context.Context, api *tg.Client) error {
			var err error
			full, err = api.UsersGetFullUser(ctx, &tg.InputUser{UserID: in.UserID, AccessHash: in.AccessHash})
			return err
		})
		if err == nil {
			profile.Description = full.FullUser.About
		}
	}
	if err != nil {
		return domain.Profile{}, err
	}

	return profile, nil
}

func applyChatFull(profile *domain.Profile, full tg.ChatFullClass) {
	switch f := full.(type) {
	case *tg.ChannelFull:
		profile.Description = f.About
		if n, ok := f.GetParticipantsCount(); ok {
			profile.MembersCount = &n
		}
	case *tg.ChatFull:
		profile.Description = f.About
	}
}
