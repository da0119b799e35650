// Package mocks holds hand-written fakes of the domain interfaces for tests.
package mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Conte777/mediaflow/internal/domain"
)

// Peer is a plain domain.Peer
type Peer struct {
	ID    int64
	Title string
	Kind  domain.PeerKind
}

func (p Peer) PeerID() int64 { return p.ID }

func (p Peer) PeerTitle() string { return p.Title }

func (p Peer) PeerKind() domain.PeerKind { return p.Kind }

// RemoteClient is a configurable domain.RemoteClient. Unset funcs succeed
// with zero values.
type RemoteClient struct {
	ConnectFn          func(ctx context.Context) error
	ResolveEntityFn    func(ctx context.Context, target domain.ConversationTarget) (domain.Peer, error)
	DownloadMediaFn    func(ctx context.Context, msg domain.Message, path string, progress domain.ProgressFunc) (string, error)
	RequestLoginCodeFn func(ctx context.Context, phone string) error
	SignInFn           func(ctx context.Context, phone, code string) error
	SignInPasswordFn   func(ctx context.Context, password string) error
	QRLoginFn          func(ctx context.Context, show func(ctx context.Context, url string) error) error
	SelfFn             func(ctx context.Context) (domain.User, error)
	DialogsFn          func(ctx context.Context, limit int) ([]domain.Chat, error)
	ProfileFn          func(ctx context.Context, peer domain.Peer) (domain.Profile, error)

	// Messages are returned by IterateMessages in order
	Messages []domain.Message
	// IterErr is reported after Messages are exhausted
	IterErr error
	// Session is returned by ExportSession
	Session string

	mu          sync.Mutex
	connected   bool
	Disconnects atomic.Int32
	// NextCalls counts Next calls across all iterators
	NextCalls atomic.Int32
	Downloads   []string
}

// Connected reports whether Connect succeeded and Disconnect was not called
func (c *RemoteClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// DownloadedPaths returns the paths passed to DownloadMedia
func (c *RemoteClient) DownloadedPaths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.Downloads...)
}

func (c *RemoteClient) Connect(ctx context.Context) error {
	if c.ConnectFn != nil {
		if err := c.ConnectFn(ctx); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	return nil
}

func (c *RemoteClient) Disconnect(ctx context.Context) error {
	c.Disconnects.Add(1)
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	return nil
}

func (c *RemoteClient) ResolveEntity(ctx context.Context, target domain.ConversationTarget) (domain.Peer, error) {
	if c.ResolveEntityFn != nil {
		return c.ResolveEntityFn(ctx, target)
	}
	return Peer{ID: target.ID, Title: target.Title, Kind: domain.PeerChannel}, nil
}

func (c *RemoteClient) IterateMessages(ctx context.Context, peer domain.Peer) (domain.MessageIterator, error) {
	return &iterator{messages: c.Messages, err: c.IterErr, pos: -1, calls: &c.NextCalls}, nil
}

func (c *RemoteClient) DownloadMedia(ctx context.Context, msg domain.Message, path string, progress domain.ProgressFunc) (string, error) {
	c.mu.Lock()
	c.Downloads = append(c.Downloads, path)
	c.mu.Unlock()

	if c.DownloadMediaFn != nil {
		return c.DownloadMediaFn(ctx, msg, path, progress)
	}
	return path, nil
}

func (c *RemoteClient) RequestLoginCode(ctx context.Context, phone string) error {
	if c.RequestLoginCodeFn != nil {
		return c.RequestLoginCodeFn(ctx, phone)
	}
	return nil
}

func (c *RemoteClient) SignIn(ctx context.Context, phone, code string) error {
	if c.SignInFn != nil {
		return c.SignInFn(ctx, phone, code)
	}
	return nil
}

func (c *RemoteClient) SignInPassword(ctx context.Context, password string) error {
	if c.SignInPasswordFn != nil {
		return c.SignInPasswordFn(ctx, password)
	}
	return nil
}

func (c *RemoteClient) QRLogin(ctx context.Context, show func(ctx context.Context, url string) error) error {
	if c.QRLoginFn != nil {
		return c.QRLoginFn(ctx, show)
	}
	return show(ctx, "tg://login?token=test")
}

func (c *RemoteClient) Self(ctx context.Context) (domain.User, error) {
	if c.SelfFn != nil {
		return c.SelfFn(ctx)
	}
	return domain.User{ID: 1, FirstName: "Test"}, nil
}

func (c *RemoteClient) ExportSession(ctx context.Context) (string, error) {
	return c.Session, nil
}

func (c *RemoteClient) Dialogs(ctx context.Context, limit int) ([]domain.Chat, error) {
	if c.DialogsFn != nil {
		return c.DialogsFn(ctx, limit)
	}
	return nil, nil
}

func (c *RemoteClient) Profile(ctx context.Context, peer domain.Peer) (domain.Profile, error) {
	if c.ProfileFn != nil {
		return c.ProfileFn(ctx, peer)
	}
	return domain.Profile{ID: peer.PeerID(), Title: peer.PeerTitle(), Type: peer.PeerKind()}, nil
}

type iterator struct {
	messages []domain.Message
	err      error
	pos      int
	done     bool
	failed   error
	calls    *atomic.Int32
}

func (it *iterator) Next(ctx context.Context) bool {
	it.calls.Add(1)
	if it.done {
		return false
	}
	if err := ctx.Err(); err != nil {
		it.failed = err
		it.done = true
		return false
	}
	it.pos++
	if it.pos >= len(it.messages) {
		it.failed = it.err
		it.done = true
		return false
	}
	return true
}

func (it *iterator) Value() domain.Message {
	return it.messages[it.pos]
}

func (it *iterator) Err() error {
	return it.failed
}

// ClientFactory hands out a fixed client and records requested credentials
type ClientFactory struct {
	Client *RemoteClient
	Err    error

	mu          sync.Mutex
	Credentials []domain.Credential
}

func (f *ClientFactory) NewClient(cred domain.Credential) (domain.RemoteClient, error) {
	f.mu.Lock()
	f.Credentials = append(f.Credentials, cred)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	return f.Client, nil
}

var (
	_ domain.RemoteClient  = (*RemoteClient)(nil)
	_ domain.ClientFactory = (*ClientFactory)(nil)
)
