package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	wsmodels "interview-gateway/models/ws"
)

func TestSession(t *testing.T) {
	t.Run(`sequence numbers check`, func(t *testing.T) {
		sess := New("token-1")
		// 0 занят стартовым системным сообщением, счет с 1
		require.Equal(t, 1, sess.NextSeq())
		require.Equal(t, 2, sess.NextSeq())
		require.Equal(t, 3, sess.NextSeq())
	})

	t.Run(`recorder by track check`, func(t *testing.T) {
		sess := New("token-2")
		require.Nil(t, sess.RecorderByTrack(wsmodels.TrackCombined))

		sess.StartRecorders()
		require.NotNil(t, sess.RecorderByTrack(wsmodels.TrackCombined))
		require.NotNil(t, sess.RecorderByTrack(wsmodels.TrackAudio))
		require.Nil(t, sess.RecorderByTrack(wsmodels.TrackClip))
		require.Nil(t, sess.RecorderByTrack(0x7F))

		require.Equal(t, sess.Combined, sess.RecorderByTrackName(wsmodels.TrackNameCombined))
		require.Equal(t, sess.AudioOnly, sess.RecorderByTrackName(wsmodels.TrackNameAudio))
	})

	t.Run(`events drain check`, func(t *testing.T) {
		sess := New("token-3")
		sess.PushEvent(wsmodels.ClientMessage{Type: wsmodels.ClientSttFragment, Text: "eski"})
		sess.PushEvent(wsmodels.ClientMessage{Type: wsmodels.ClientTtsDone})
		sess.DrainEvents()

		select {
		case msg := <-sess.Events():
			t.Fatalf("после очистки событий быть не должно: %v", msg)
		default:
		}
	})

	t.Run(`cancel stops context check`, func(t *testing.T) {
		sess := New("token-4")
		sess.Cancel()
		select {
		case <-sess.Ctx().Done():
		default:
			t.Fatal("контекст сессии должен быть отменен")
		}
	})

	t.Run(`manager lifecycle check`, func(t *testing.T) {
		m := NewInstance()
		sess := New("token-5")
		m.Put(sess)
		require.Equal(t, sess, m.Get("token-5"))

		m.Delete("token-5")
		require.Nil(t, m.Get("token-5"))
		select {
		case <-sess.Ctx().Done():
		default:
			t.Fatal("удаление сессии должно отменять контекст")
		}
	})

	t.Run(`manager cleanup expired check`, func(t *testing.T) {
		m := NewInstance()
		stale := New("token-stale")
		fresh := New("token-fresh")
		m.Put(stale)
		m.Put(fresh)

		time.Sleep(20 * time.Millisecond)
		fresh.Touch()

		removed := m.CleanupExpired(10 * time.Millisecond)
		require.Equal(t, 1, removed)
		require.Nil(t, m.Get("token-stale"))
		require.NotNil(t, m.Get("token-fresh"))
	})
}
