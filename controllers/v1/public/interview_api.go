package publicapi

import (
	"github.com/gofiber/fiber/v2"

	"interview-gateway/controllers"
	interviewhandler "interview-gateway/lib/interview"
	apimodels "interview-gateway/models/api"
	interviewapimodels "interview-gateway/models/api/interview"
)

type publicInterviewApiController struct {
	controllers.BaseAPIController
}

func InitPublicInterviewApiRouters(app *fiber.App) {
	controller := publicInterviewApiController{}
	app.Route("interview", func(router fiber.Router) {
		router.Route(":token", func(tokenRoute fiber.Router) {
			tokenRoute.Get("", controller.bootstrap)
			tokenRoute.Post("consent", controller.consent)
			tokenRoute.Post("permissions", controller.permissions)
			tokenRoute.Post("device-check", controller.deviceCheck)
			tokenRoute.Post("start", controller.start)
			tokenRoute.Post("finish", controller.finish)
		})
	})
}

// @Summary Открытие сессии интервью
// @Tags Сессия интервью кандидата
// @Description Проверка токена приглашения и создание сессии
// @Param   token          		path    string  true         "Токен приглашения"
// @Success 200 {object} apimodels.Response{data=interviewapimodels.SessionView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/interview/{token} [get]
func (c *publicInterviewApiController) bootstrap(ctx *fiber.Ctx) error {
	token, err := c.GetToken(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	view, err := interviewhandler.Instance.Bootstrap(ctx.UserContext(), token)
	if err != nil {
		logger := c.GetLogger(ctx).WithField("token", token)
		return c.SendError(ctx, logger, err, "Ошибка открытия сессии интервью")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Подтверждение согласия
// @Tags Сессия интервью кандидата
// @Description Подтверждение согласия на запись интервью
// @Param   token          		path    string  true         "Токен приглашения"
// @Param	body body	 interviewapimodels.ConsentRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=interviewapimodels.SessionView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/interview/{token}/consent [post]
func (c *publicInterviewApiController) consent(ctx *fiber.Ctx) error {
	token, err := c.GetToken(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload interviewapimodels.ConsentRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if !payload.Accepted {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("без согласия на запись интервью недоступно"))
	}

	hMsg, err := interviewhandler.Instance.Consent(token)
	return c.sendResult(ctx, token, hMsg, err, "Ошибка подтверждения согласия")
}

// @Summary Результат запроса доступа к камере и микрофону
// @Tags Сессия интервью кандидата
// @Description Результат запроса доступа, повторная попытка допускается
// @Param   token          		path    string  true         "Токен приглашения"
// @Param	body body	 interviewapimodels.PermissionsRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=interviewapimodels.SessionView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/interview/{token}/permissions [post]
func (c *publicInterviewApiController) permissions(ctx *fiber.Ctx) error {
	token, err := c.GetToken(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload interviewapimodels.PermissionsRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	hMsg, err := interviewhandler.Instance.ReportPermissions(token, payload.Granted)
	return c.sendResult(ctx, token, hMsg, err, "Ошибка обработки результата запроса доступа")
}

// @Summary Подтверждение проверки устройств
// @Tags Сессия интервью кандидата
// @Description Кандидат подтвердил, что видит и слышит себя
// @Param   token          		path    string  true         "Токен приглашения"
// @Success 200 {object} apimodels.Response{data=interviewapimodels.SessionView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/interview/{token}/device-check [post]
func (c *publicInterviewApiController) deviceCheck(ctx *fiber.Ctx) error {
	token, err := c.GetToken(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	hMsg, err := interviewhandler.Instance.ConfirmDeviceCheck(token)
	return c.sendResult(ctx, token, hMsg, err, "Ошибка подтверждения проверки устройств")
}

// @Summary Старт интервью
// @Tags Сессия интервью кандидата
// @Description Запуск разговора после вводного экрана
// @Param   token          		path    string  true         "Токен приглашения"
// @Success 200 {object} apimodels.Response{data=interviewapimodels.SessionView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/interview/{token}/start [post]
func (c *publicInterviewApiController) start(ctx *fiber.Ctx) error {
	token, err := c.GetToken(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	hMsg, err := interviewhandler.Instance.Start(token)
	return c.sendResult(ctx, token, hMsg, err, "Ошибка старта интервью")
}

// @Summary Досрочное завершение интервью
// @Tags Сессия интервью кандидата
// @Description Завершение по кнопке кандидата
// @Param   token          		path    string  true         "Токен приглашения"
// @Success 200 {object} apimodels.Response{data=interviewapimodels.SessionView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/interview/{token}/finish [post]
func (c *publicInterviewApiController) finish(ctx *fiber.Ctx) error {
	token, err := c.GetToken(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	hMsg, err := interviewhandler.Instance.Finish(token)
	return c.sendResult(ctx, token, hMsg, err, "Ошибка завершения интервью")
}

func (c *publicInterviewApiController) sendResult(ctx *fiber.Ctx, token, hMsg string, err error, errMsg string) error {
	if err != nil {
		logger := c.GetLogger(ctx).WithField("token", token)
		return c.SendError(ctx, logger, err, errMsg)
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	view, hMsg := interviewhandler.Instance.View(token)
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}
