package connectionhub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	wsmodels "interview-gateway/models/ws"
)

func TestConnectionHub(t *testing.T) {
	t.Run(`concurrent send and delete check`, func(t *testing.T) {
		h := &impl{clients: map[string]clientSession{}}
		id := h.AddClient("tkn", nil)

		// отправители наперегонки с отключением клиента
		var wg sync.WaitGroup
		for g := 0; g < 32; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for n := 0; n < 100; n++ {
					h.SendMessage(wsmodels.ServerMessage{Token: "tkn", Type: wsmodels.ServerPhase})
				}
			}()
		}
		time.Sleep(time.Millisecond)
		h.DeleteClient("tkn", id)
		wg.Wait()

		require.Equal(t, false, h.IsConnected("tkn"))
	})

	t.Run(`send to unknown token check`, func(t *testing.T) {
		h := &impl{clients: map[string]clientSession{}}
		h.SendMessage(wsmodels.ServerMessage{Token: "missing", Type: wsmodels.ServerPhase})
	})

	t.Run(`reconnect keeps live session check`, func(t *testing.T) {
		h := &impl{clients: map[string]clientSession{}}
		oldID := h.AddClient("tkn", nil)
		newID := h.AddClient("tkn", nil)
		require.NotEqual(t, oldID, newID)

		// отложенная очистка умершего соединения не снимает новую сессию
		h.DeleteClient("tkn", oldID)
		h.mu.Lock()
		sess, ok := h.clients["tkn"]
		h.mu.Unlock()
		require.Equal(t, true, ok)
		require.Equal(t, newID, sess.id)

		h.DeleteClient("tkn", newID)
		h.mu.Lock()
		_, ok = h.clients["tkn"]
		h.mu.Unlock()
		require.Equal(t, false, ok)
	})
}
