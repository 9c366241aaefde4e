package publicapi

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	interviewhandler "interview-gateway/lib/interview"
	"interview-gateway/lib/session"
	connectionhub "interview-gateway/lib/ws/hub/connection-hub"
	wsmodels "interview-gateway/models/ws"
)

func InitPublicInterviewWsRouters(app *fiber.App) {
	app.Use("/interview/:token/ws", func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		return ctx.Next()
	})
	app.Get("/interview/:token/ws", websocket.New(interviewWsHandler))
}

// @Summary Канал сессии интервью
// @Tags Сессия интервью кандидата
// @Description Бинарные кадры - чанки записи с однобайтовым префиксом дорожки, текстовые - события клиента
// @Param   token          		path    string  true         "Токен приглашения"
// @Success 200 {object} wsmodels.ServerMessage
// @Failure 400
// @Failure 403
// @Failure 500
// @router /api/v1/public/interview/{token}/ws [get]
func interviewWsHandler(c *websocket.Conn) {
	token := c.Params("token")
	logger := log.WithField("token", token)

	sess := session.Instance.Get(token)
	if sess == nil {
		logger.Warn("websocket для несуществующей сессии")
		_ = c.Close()
		return
	}

	hubID := connectionhub.Instance.AddClient(token, c)
	defer connectionhub.Instance.DeleteClient(token, hubID)

	for {
		mt, data, err := c.ReadMessage()
		if err != nil {
			break
		}
		switch mt {
		case websocket.BinaryMessage:
			// первый байт кадра - дорожка, дальше чанк записи
			if len(data) < 2 {
				continue
			}
			interviewhandler.Instance.HandleMediaChunk(sess, data[0], data[1:])
		case websocket.TextMessage:
			var msg wsmodels.ClientMessage
			if err = json.Unmarshal(data, &msg); err != nil {
				logger.WithError(err).Warn("нераспознанное сообщение клиента")
				continue
			}
			interviewhandler.Instance.HandleClientEvent(sess, msg)
		}
	}

	// обрыв соединения во время разговора останавливает движок,
	// чанки и события после переподключения не восстанавливаются
	if sess.Phase() == session.PhaseInterview {
		logger.Info("соединение потеряно во время интервью")
		sess.Cancel()
	}
}
