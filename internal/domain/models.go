package domain

import (
	"fmt"
	"time"
)

// Credential is the durable result of a successful login
type Credential struct {
	APIID        int
	APIHash      string
	SessionToken string
}

// String hides the session token so a credential can be logged safely
func (c Credential) String() string {
	return fmt.Sprintf("Credential{APIID: %d, SessionToken: [redacted]}", c.APIID)
}

// HasSession reports whether the credential carries a session token
func (c Credential) HasSession() bool {
	return c.SessionToken != ""
}

// ConversationTarget identifies the chat a job downloads from.
// ID uses the marked form: users are positive, basic groups negative,
// channels and supergroups -100 prefixed.
type ConversationTarget struct {
	Title    string
	ID       int64
	Username string
}

// Identifier returns the most specific way to address the target
func (t ConversationTarget) Identifier() string {
	if t.Username != "" {
		return "@" + t.Username
	}
	return fmt.Sprintf("%d", t.ID)
}

// User is the authenticated account as seen by the facade
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// DisplayName returns "@username" when set, otherwise the first name
func (u User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return u.FirstName
}

// Chat is a single entry of the dialog list
type Chat struct {
	Title string
	ID    int64
	Kind  PeerKind
}

// PeerKind is the type of a remote conversation
type PeerKind string

const (
	PeerUser    PeerKind = "User"
	PeerChat    PeerKind = "Chat"
	PeerChannel PeerKind = "Channel"
)

// Profile is the detailed record of a conversation
type Profile struct {
	ID           int64
	Title        string
	Username     string
	Type         PeerKind
	Description  string
	MembersCount *int
}

// Peer is a resolved remote conversation handle. The concrete value is owned
// by the RemoteClient that produced it.
type Peer interface {
	PeerID() int64
	PeerTitle() string
	PeerKind() PeerKind
}

// Message is a history entry decoded once by the facade
type Message struct {
	ID         int
	Date       time.Time // zero when the platform did not report a timestamp
	Attachment Attachment
}

// HasDate reports whether the message carries a timestamp
func (m Message) HasDate() bool {
	return !m.Date.IsZero()
}

// Attachment is the sealed set of media payloads a message can carry
type Attachment interface {
	isAttachment()
	// ByteSize returns the payload size when the platform reported it
	ByteSize() (int64, bool)
}

// PhotoAttachment is a plain image without a document wrapper
type PhotoAttachment struct {
	Size int64 // 0 when unknown
	// Ref is an opaque facade handle used by DownloadMedia
	Ref any
}

func (PhotoAttachment) isAttachment() {}

// ByteSize implements Attachment
func (p PhotoAttachment) ByteSize() (int64, bool) {
	return p.Size, p.Size > 0
}

// DocumentAttachment is any payload carried inside a document
type DocumentAttachment struct {
	MimeType   string
	Size       int64 // 0 when unknown
	FileName   string
	Attributes DocumentAttributes
	Ref        any
}

func (DocumentAttachment) isAttachment() {}

// ByteSize implements Attachment
func (d DocumentAttachment) ByteSize() (int64, bool) {
	return d.Size, d.Size > 0
}

// DocumentAttributes are the typed document attribute flags
type DocumentAttributes struct {
	Sticker    bool
	Voice      bool
	Audio      bool
	Video      bool
	RoundVideo bool
	Animated   bool
}
