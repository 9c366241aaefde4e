package connectionhub

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"

	wsmodels "interview-gateway/models/ws"
)

type Provider interface {
	AddClient(token string, conn *websocket.Conn) (id string)
	DeleteClient(token, id string)
	SendMessage(msg wsmodels.ServerMessage)
	SendClose(token string)
	IsConnected(token string) bool
}

var Instance Provider

func Init() {
	Instance = &impl{
		clients: map[string]clientSession{},
	}
}

type impl struct {
	mu      sync.Mutex
	clients map[string]clientSession //map[token]
}

// DeleteClient убирает соединение из хаба. id защищает от гонки при
// переподключении: отложенная очистка умершего соединения не должна
// снимать новую сессию того же токена.
func (i *impl) DeleteClient(token, id string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	sess, ok := i.clients[token]
	if !ok || sess.id != id {
		return
	}
	delete(i.clients, token)
	// канал отправки не закрываем: отправители могут держать ссылку,
	// горутину отправки останавливает stop
	sess.stop()
}

func (i *impl) AddClient(token string, conn *websocket.Conn) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	oldSess, ok := i.clients[token]
	if ok {
		oldSess.stop()
	}
	sess := newSession(conn)
	i.clients[token] = sess
	return sess.id
}

func (i *impl) SendMessage(msg wsmodels.ServerMessage) {
	i.mu.Lock()
	sess, ok := i.clients[msg.Token]
	i.mu.Unlock()
	if !ok {
		return
	}
	select {
	case sess.sendCh <- msg:
	default:
		log.
			WithField("token", msg.Token).
			WithField("type", msg.Type).
			Warn("буфер отправки переполнен, сообщение отброшено")
	}
}

func (i *impl) SendClose(token string) {
	i.mu.Lock()
	sess, ok := i.clients[token]
	i.mu.Unlock()
	if ok {
		sess.stop()
	}
}

func (i *impl) IsConnected(token string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	sess, ok := i.clients[token]
	if !ok || sess.conn == nil || sess.conn.Conn == nil {
		return false
	}
	return true
}
