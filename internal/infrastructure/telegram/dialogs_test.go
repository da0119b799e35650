package telegram

import (
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"

	"github.com/Conte777/mediaflow/internal/domain"
)

func TestPeerConversions(t *testing.T) {
	user := peerFromUser(&tg.User{ID: 7, AccessHash: 70, FirstName: "Pavel", LastName: "D", Username: "durov"})
	assert.Equal(t, int64(7), user.PeerID())
	assert.Equal(t, "Pavel D", user.PeerTitle())
	assert.Equal(t, domain.PeerUser, user.PeerKind())
	assert.Equal(t, &tg.InputPeerUser{UserID: 7, AccessHash: 70}, user.input)

	chat := peerFromChat(&tg.Chat{ID: 42, Title: "Family", ParticipantsCount: 5})
	assert.Equal(t, int64(-42), chat.PeerID())
	assert.Equal(t, "Family (5 members)", chatTitle(chat))

	channel := &tg.Channel{ID: 1234567890, AccessHash: 9, Title: "News", Username: "news", Broadcast: true}
	channel.SetParticipantsCount(1000)
	ch := peerFromChannel(channel)
	assert.Equal(t, int64(-1001234567890), ch.PeerID())
	assert.Equal(t, "News (1000 subs)", chatTitle(ch))

	group := peerFromChannel(&tg.Channel{ID: 55, Title: "Devs", Megagroup: true})
	assert.Equal(t, "Devs", chatTitle(group), "unknown member count leaves the title as is")
}

func TestEntitiesAndMarkedPeerID(t *testing.T) {
	found := entities(
		[]tg.UserClass{&tg.User{ID: 1, FirstName: "A"}, &tg.UserEmpty{ID: 2}},
		[]tg.ChatClass{&tg.Chat{ID: 3, Title: "G"}, &tg.Channel{ID: 4, Title: "C"}, &tg.ChatForbidden{ID: 5}},
	)

	assert.Len(t, found, 3)
	assert.Contains(t, found, markedPeerID(&tg.PeerUser{UserID: 1}))
	assert.Contains(t, found, markedPeerID(&tg.PeerChat{ChatID: 3}))
	assert.Contains(t, found, markedPeerID(&tg.PeerChannel{ChannelID: 4}))
}

func TestMessageDate(t *testing.T) {
	peer := &tg.PeerChannel{ChannelID: 4}
	messages := []tg.MessageClass{
		&tg.Message{ID: 10, PeerID: &tg.PeerUser{UserID: 1}, Date: 100},
		&tg.Message{ID: 10, PeerID: peer, Date: 200},
		&tg.MessageService{ID: 11, PeerID: peer, Date: 300},
	}

	assert.Equal(t, 200, messageDate(messages, markedPeerID(peer), 10))
	assert.Equal(t, 300, messageDate(messages, markedPeerID(peer), 11))
	assert.Equal(t, 0, messageDate(messages, markedPeerID(peer), 12))
}

func TestAsRemotePeer_RejectsForeignPeer(t *testing.T) {
	_, err := asRemotePeer(foreignPeer{})
	assert.ErrorIs(t, err, domain.ErrPeerNotFound)
}

type foreignPeer struct{}

func (foreignPeer) PeerID() int64 { return 1 }

func (foreignPeer) PeerTitle() string { return "x" }

func (foreignPeer) PeerKind() domain.PeerKind { return domain.PeerUser }
