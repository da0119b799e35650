package domain

import "context"

// ProgressFunc receives transfer progress. total is 0 when unknown.
// A non-nil return aborts the transfer with that error.
type ProgressFunc func(done, total int64) error

// MessageIterator streams history newest-to-oldest
type MessageIterator interface {
	// Next fetches the next message, returning false at the end or on error
	Next(ctx context.Context) bool
	// Value returns the current message
	Value() Message
	// Err returns the error that stopped iteration, if any
	Err() error
}

// RemoteClient is the facade over the messaging platform's RPC connection.
// Each instance owns exactly one connection.
type RemoteClient interface {
	// Connect establishes the connection; it does not log in
	Connect(ctx context.Context) error
	// Disconnect tears the connection down. Safe to call more than once.
	Disconnect(ctx context.Context) error

	// ResolveEntity turns a conversation target into a peer handle
	ResolveEntity(ctx context.Context, target ConversationTarget) (Peer, error)
	// IterateMessages streams the peer's history newest-to-oldest
	IterateMessages(ctx context.Context, peer Peer) (MessageIterator, error)
	// DownloadMedia writes the message attachment to path. It returns the
	// written path, or "" when the message has nothing to download.
	DownloadMedia(ctx context.Context, msg Message, path string, progress ProgressFunc) (string, error)

	// RequestLoginCode sends a login code to phone
	RequestLoginCode(ctx context.Context, phone string) error
	// SignIn submits the received code. Returns ErrPasswordNeeded when the
	// account has a second factor.
	SignIn(ctx context.Context, phone, code string) error
	// SignInPassword completes login with the 2FA password
	SignInPassword(ctx context.Context, password string) error
	// QRLogin exports login tokens and calls show with each token URL until
	// the token is confirmed on another device. Returns ErrPasswordNeeded
	// when the account has a second factor.
	QRLogin(ctx context.Context, show func(ctx context.Context, url string) error) error

	// Self returns the logged in user
	Self(ctx context.Context) (User, error)
	// ExportSession returns the session token for the current login
	ExportSession(ctx context.Context) (string, error)

	// Dialogs returns up to limit conversations of the account
	Dialogs(ctx context.Context, limit int) ([]Chat, error)
	// Profile returns detailed information about a peer
	Profile(ctx context.Context, peer Peer) (Profile, error)
}

// ClientFactory creates an unconnected RemoteClient for a credential.
// An empty SessionToken starts a fresh session for login.
type ClientFactory interface {
	NewClient(cred Credential) (RemoteClient, error)
}

// CredentialStore persists session tokens keyed by api_id
type CredentialStore interface {
	Save(cred Credential) error
	// Load returns ErrNotLoggedIn when no session exists for apiID
	Load(apiID int, apiHash string) (Credential, error)
	Delete(apiID int) error
	Exists(apiID int) bool
}

// Mirror copies a saved file to secondary storage
type Mirror interface {
	MirrorFile(ctx context.Context, localPath, objectKey string) error
}
