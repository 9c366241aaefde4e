package interviewhandler

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	connectionhub "interview-gateway/lib/ws/hub/connection-hub"
	"interview-gateway/lib/journal"
	"interview-gateway/lib/platform"
	"interview-gateway/lib/session"
	signalshandler "interview-gateway/lib/signals"
	"interview-gateway/lib/upload"
	interviewapimodels "interview-gateway/models/api/interview"
	wsmodels "interview-gateway/models/ws"
)

// Provider — оркестратор кандидатской сессии интервью:
// жизненный цикл фаз, события от клиента, запуск движка разговора.
type Provider interface {
	Bootstrap(ctx context.Context, token string) (view interviewapimodels.SessionView, err error)
	View(token string) (view interviewapimodels.SessionView, hMsg string)
	Consent(token string) (hMsg string, err error)
	ReportPermissions(token string, granted bool) (hMsg string, err error)
	ConfirmDeviceCheck(token string) (hMsg string, err error)
	Start(token string) (hMsg string, err error)
	Finish(token string) (hMsg string, err error)
	HandleClientEvent(sess *session.Session, msg wsmodels.ClientMessage)
	HandleMediaChunk(sess *session.Session, track byte, chunk []byte)
}

var Instance Provider

func NewHandler() {
	Instance = &impl{
		platform: platform.Instance,
		uploader: upload.Instance,
		hub:      connectionhub.Instance,
		journal:  journal.Instance,
		signals:  signalshandler.Instance,
		manager:  session.Instance,
		tuning:   TuningFromConfig(),
	}
}

type impl struct {
	platform platform.Provider
	uploader upload.Provider
	hub      connectionhub.Provider
	journal  journal.Provider
	signals  signalshandler.Provider
	manager  session.Manager
	tuning   Tuning
}

func (i *impl) getLogger(token string) *log.Entry {
	return log.WithField("token", token)
}

func (i *impl) Bootstrap(ctx context.Context, token string) (interviewapimodels.SessionView, error) {
	logger := i.getLogger(token)
	if sess := i.manager.Get(token); sess != nil {
		// повторное открытие страницы той же сессии
		return i.viewOf(sess), nil
	}

	hMsg, err := i.platform.VerifyToken(ctx, token)
	if err != nil {
		return interviewapimodels.SessionView{}, err
	}
	if hMsg != "" {
		// токен отклонен — терминальная фаза invalid с текстом сервера,
		// доступ к камере и микрофону не запрашивается
		logger.WithField("h_msg", hMsg).Info("токен приглашения отклонен")
		i.journal.SessionInvalid(token, hMsg)
		return interviewapimodels.SessionView{
			Phase: string(session.PhaseInvalid),
			Error: hMsg,
		}, nil
	}

	info, err := i.platform.GetByToken(ctx, token)
	if err != nil {
		logger.WithError(err).Error("ошибка получения данных интервью по токену")
		return interviewapimodels.SessionView{}, err
	}

	sess := session.New(token)
	sess.InterviewID = info.ID
	sess.JobID = info.JobID
	sess.PreparedQuestion = info.PreparedFirstQuestion

	// стартовое системное сообщение занимает sequence_number 0
	i.saveMessageAsync(sess, roleSystem, initialSystemMessage, 0)

	if err = sess.Transition(session.PhaseConsent); err != nil {
		return interviewapimodels.SessionView{}, err
	}
	i.manager.Put(sess)
	i.journal.SessionCreated(token, info.ID, info.JobID)
	return i.viewOf(sess), nil
}

func (i *impl) View(token string) (interviewapimodels.SessionView, string) {
	sess := i.manager.Get(token)
	if sess == nil {
		return interviewapimodels.SessionView{}, "сессия не найдена"
	}
	return i.viewOf(sess), ""
}

func (i *impl) Consent(token string) (hMsg string, err error) {
	sess := i.manager.Get(token)
	if sess == nil {
		return "сессия не найдена", nil
	}
	if sess.Phase() != session.PhaseConsent {
		return "подтверждение согласия недоступно в текущей фазе", nil
	}
	sess.SetConsentAccepted()
	// согласие сохраняем best-effort, кандидата не блокируем
	go func() {
		saveErr := i.platform.SaveConsent(context.Background(), sess.Token, sess.InterviewID, consentTextVersion)
		if saveErr != nil {
			i.getLogger(token).WithError(saveErr).Warn("ошибка сохранения согласия кандидата")
		}
	}()
	if err = sess.Transition(session.PhasePermissions); err != nil {
		return "", err
	}
	i.notifyPhase(sess)
	return "", nil
}

func (i *impl) ReportPermissions(token string, granted bool) (hMsg string, err error) {
	sess := i.manager.Get(token)
	if sess == nil {
		return "сессия не найдена", nil
	}
	phase := sess.Phase()
	if phase != session.PhasePermissions && phase != session.PhasePermissionsDenied {
		return "результат запроса доступа не ожидается в текущей фазе", nil
	}
	if phase == session.PhasePermissionsDenied {
		// повторная попытка: возвращаемся в permissions
		if err = sess.Transition(session.PhasePermissions); err != nil {
			return "", err
		}
	}
	to := session.PhaseTest
	if !granted {
		to = session.PhasePermissionsDenied
	}
	if err = sess.Transition(to); err != nil {
		return "", err
	}
	i.notifyPhase(sess)
	return "", nil
}

func (i *impl) ConfirmDeviceCheck(token string) (hMsg string, err error) {
	sess := i.manager.Get(token)
	if sess == nil {
		return "сессия не найдена", nil
	}
	if sess.Phase() != session.PhaseTest {
		return "проверка устройств недоступна в текущей фазе", nil
	}
	sess.SetDeviceChecked()
	if err = sess.Transition(session.PhaseIntro); err != nil {
		return "", err
	}
	i.notifyPhase(sess)
	return "", nil
}

func (i *impl) Start(token string) (hMsg string, err error) {
	sess := i.manager.Get(token)
	if sess == nil {
		return "сессия не найдена", nil
	}
	if sess.Phase() != session.PhaseIntro {
		return "старт интервью недоступен в текущей фазе", nil
	}
	if err = sess.Transition(session.PhaseInterview); err != nil {
		return "", err
	}
	sess.StartRecorders()
	i.notifyPhase(sess)
	go i.runEngine(sess)
	return "", nil
}

// Finish — ручное завершение интервью, переход в finished
// выполняется после фиксированной задержки
func (i *impl) Finish(token string) (hMsg string, err error) {
	sess := i.manager.Get(token)
	if sess == nil {
		return "сессия не найдена", nil
	}
	if sess.Phase() != session.PhaseInterview {
		return "завершение недоступно в текущей фазе", nil
	}
	time.AfterFunc(i.tuning.EndNowDelay, func() {
		i.finish(sess)
	})
	return "", nil
}

func (i *impl) HandleClientEvent(sess *session.Session, msg wsmodels.ClientMessage) {
	sess.Touch()
	switch msg.Type {
	case wsmodels.ClientSttFragment, wsmodels.ClientTtsDone:
		sess.PushEvent(msg)
	case wsmodels.ClientRecorderStopped:
		if rec := sess.RecorderByTrackName(msg.Track); rec != nil {
			rec.MarkStopped()
		}
	case wsmodels.ClientSignal:
		// телеметрия учитывается только в фазе слушания
		if !sess.IsListening() {
			return
		}
		if msg.Kind != signalshandler.KindTabHidden && msg.Kind != signalshandler.KindFocusLost {
			return
		}
		i.signals.Report(sess.Token, sess.InterviewID, msg.Kind, msg.Meta)
	}
}

func (i *impl) HandleMediaChunk(sess *session.Session, track byte, chunk []byte) {
	sess.Touch()
	rec := sess.RecorderByTrack(track)
	if rec == nil {
		return
	}
	rec.Append(chunk)
}

// finish переводит сессию в finished и ровно один раз запускает
// пайплайн выгрузки; повторные вызовы игнорируются
func (i *impl) finish(sess *session.Session) {
	sess.FinishOnce.Do(func() {
		sess.SetListening(false)
		sess.DisableMessaging()
		if err := sess.Transition(session.PhaseFinished); err != nil {
			i.getLogger(sess.Token).WithError(err).Warn("ошибка перехода в фазу finished")
		}
		// финальный flush и стоп долгоживущих рекордеров на клиенте
		i.hub.SendMessage(wsmodels.ServerMessage{
			Token: sess.Token,
			Type:  wsmodels.ServerFinalize,
		})
		i.notifyPhase(sess)
		i.journal.SessionFinished(sess.Token)
		go i.uploader.Finalize(context.Background(), sess)
		sess.Cancel()
	})
}

func (i *impl) notifyPhase(sess *session.Session) {
	phase := sess.Phase()
	i.hub.SendMessage(wsmodels.ServerMessage{
		Token: sess.Token,
		Type:  wsmodels.ServerPhase,
		Phase: string(phase),
	})
	i.journal.PhaseChanged(sess.Token, string(phase))
}

func (i *impl) viewOf(sess *session.Session) interviewapimodels.SessionView {
	return interviewapimodels.SessionView{
		Phase:           string(sess.Phase()),
		InterviewID:     sess.InterviewID,
		JobID:           sess.JobID,
		ChunkIntervalMs: i.tuning.ChunkIntervalMs,
	}
}
