package telegram

import (
	"context"

	"github.com/gotd/td/tg"

	"github.com/Conte777/mediaflow/internal/domain"
)

// historyIterator pages through MessagesGetHistory newest first
type historyIterator struct {
	c        *MTProtoClient
	peer     tg.InputPeerClass
	pageSize int

	buf      []domain.Message
	cur      domain.Message
	offsetID int
	done     bool
	err      error
}

// IterateMessages streams the peer's history newest-to-oldest
func (c *MTProtoClient) IterateMessages(ctx context.Context, peer domain.Peer) (domain.MessageIterator, error) {
	if _, _, err := c.session(); err != nil {
		return nil, err
	}
	p, err := asRemotePeer(peer)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int64("peer_id", p.id).Msg("iterating history")
	return &historyIterator{c: c, peer: p.input, pageSize: c.historyPageSize}, nil
}

// Next fetches the next message, returning false at the end or on error
func (it *historyIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		it.err = err
		return false
	}

	for len(it.buf) == 0 {
		if it.done {
			return false
		}
		if err := it.fetch(ctx); err != nil {
			it.err = err
			return false
		}
	}

	it.cur, it.buf = it.buf[0], it.buf[1:]
	return true
}

// Value returns the current message
func (it *historyIterator) Value() domain.Message {
	return it.cur
}

// Err returns the error that stopped iteration, if any
func (it *historyIterator) Err() error {
	return it.err
}

func (it *historyIterator) fetch(ctx context.Context) error {
	var result tg.MessagesMessagesClass
	err := it.c.invoke(ctx, "get history", func(ctx context.Context, api *tg.Client) error {
		var err error
		result, err = api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     it.peer,
			OffsetID: it.offsetID,
			Limit:    it.pageSize,
		})
		return err
	})
	if err != nil {
		return err
	}

	var raw []tg.MessageClass
	switch m := result.(type) {
	case *tg.MessagesMessages:
		raw = m.Messages
		it.done = true
	case *tg.MessagesMessagesSlice:
		raw = m.Messages
	case *tg.MessagesChannelMessages:
		raw = m.Messages
	default:
		it.done = true
		return nil
	}

	if len(raw) == 0 {
		it.done = true
		return nil
	}

	prev := it.offsetID
	for _, mc := range raw {
		if id := mc.GetID(); id < it.offsetID || it.offsetID == 0 {
			it.offsetID = id
		}
		if msg, ok := decodeMessage(mc); ok {
			it.buf = append(it.buf, msg)
		}
	}
	if len(raw) < it.pageSize || it.offsetID == prev {
		it.done = true
	}

	return nil
}
