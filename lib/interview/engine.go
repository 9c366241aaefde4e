package interviewhandler

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"interview-gateway/lib/media"
	"interview-gateway/lib/session"
	"interview-gateway/lib/utils/helpers"
	platformapimodels "interview-gateway/models/api/platform"
	wsmodels "interview-gateway/models/ws"
)

// runEngine — движок разговора. Живет в одной горутине на сессию,
// история диалога и счетчик sequence_number меняются только здесь.
func (i *impl) runEngine(sess *session.Session) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("token", sess.Token).
				WithField("panic_stack", string(debug.Stack())).
				Errorf("паника в движке интервью: %v", r)
			i.finish(sess)
		}
	}()
	logger := log.WithField("token", sess.Token).
		WithField("interview_id", sess.InterviewID)
	ctx := sess.Ctx()

	history := []platformapimodels.HistoryTurn{}

	question, appendEntry, done := i.entryQuestion(ctx, sess, logger)
	if done {
		logger.Info("интервью завершено до первого вопроса")
		i.finish(sess)
		return
	}
	if appendEntry {
		history = append(history, platformapimodels.HistoryTurn{Role: roleAssistant, Text: question})
		i.persistTurn(sess, roleAssistant, question, false)
	}

	for {
		if helpers.IsContextDone(ctx) {
			return
		}
		i.speak(sess, question, logger)

		answer, usedFallback, ok := i.listen(sess, logger)
		if !ok {
			return
		}
		history = append(history, platformapimodels.HistoryTurn{Role: roleUser, Text: answer})
		i.persistTurn(sess, roleUser, answer, usedFallback)

		var sigs []string
		if len([]rune(answer)) < i.tuning.MinAnswerChars {
			sigs = append(sigs, signalVeryShortAnswer)
		}
		res, err := i.platform.NextQuestion(ctx, platformapimodels.NextQuestionRequest{
			History:     history,
			InterviewID: sess.InterviewID,
			Signals:     sigs,
		})
		if err != nil {
			if helpers.IsContextDone(ctx) {
				return
			}
			logger.WithError(err).Warn("ошибка получения следующего вопроса")
			i.persistTurn(sess, roleSystem, fmt.Sprintf("next question failed: %v", err), false)
			// служебный вопрос-извинение, в историю диалога не попадает
			question = retryQuestionText
			continue
		}
		if res.Done || res.Question == "" || res.Question == finishedSentinel {
			i.finish(sess)
			return
		}
		if res.Question == lastAssistantTurn(history) {
			// подряд пришел тот же вопрос: переспрашиваем,
			// но историю вторым экземпляром не раздуваем
			question = res.Question
			continue
		}
		history = append(history, platformapimodels.HistoryTurn{Role: roleAssistant, Text: res.Question})
		i.persistTurn(sess, roleAssistant, res.Question, false)
		question = res.Question
	}
}

// entryQuestion выбирает первый вопрос: подготовленный с бэкенда,
// иначе запрос next-question с пустой историей
func (i *impl) entryQuestion(ctx context.Context, sess *session.Session, logger *log.Entry) (question string, appendToHistory, done bool) {
	if q := strings.TrimSpace(sess.PreparedQuestion); q != "" {
		return q, true, false
	}
	res, err := i.platform.NextQuestion(ctx, platformapimodels.NextQuestionRequest{
		History:     []platformapimodels.HistoryTurn{},
		InterviewID: sess.InterviewID,
	})
	if err != nil {
		logger.WithError(err).Warn("ошибка получения первого вопроса")
		i.persistTurn(sess, roleSystem, fmt.Sprintf("entry question failed: %v", err), false)
		return retryQuestionText, false, false
	}
	if res.Done || res.Question == "" || res.Question == finishedSentinel {
		return "", false, true
	}
	return res.Question, true, false
}

// speak озвучивает вопрос и ждет от клиента событие окончания
// воспроизведения, но не дольше SpeakMaxWait
func (i *impl) speak(sess *session.Session, question string, logger *log.Entry) {
	ctx := sess.Ctx()
	// события прошлого хода к началу нового отношения не имеют
	sess.DrainEvents()
	i.hub.SendMessage(wsmodels.ServerMessage{
		Token:    sess.Token,
		Type:     wsmodels.ServerQuestion,
		Question: question,
	})
	audio, err := i.platform.Speak(ctx, question)
	if err != nil {
		if !helpers.IsContextDone(ctx) {
			logger.WithError(err).Warn("ошибка синтеза речи, вопрос показан без озвучки")
		}
		return
	}
	i.hub.SendMessage(wsmodels.ServerMessage{
		Token:    sess.Token,
		Type:     wsmodels.ServerTtsAudio,
		Audio:    audio,
		MimeType: "audio/mpeg",
	})
	deadline := time.NewTimer(i.tuning.SpeakMaxWait)
	defer deadline.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sess.Events():
			if msg.Type == wsmodels.ClientTtsDone {
				return
			}
		case <-deadline.C:
			logger.Warn("клиент не подтвердил окончание воспроизведения")
			return
		}
	}
}

// listen собирает ответ кандидата. ok=false означает остановку сессии.
func (i *impl) listen(sess *session.Session, logger *log.Entry) (answer string, usedFallback, ok bool) {
	ctx := sess.Ctx()

	clip := media.NewRecorder(media.KindAudio)
	sess.SetClip(clip)
	defer sess.SetClip(nil)
	sess.SetListening(true)
	defer sess.SetListening(false)

	i.hub.SendMessage(wsmodels.ServerMessage{Token: sess.Token, Type: wsmodels.ServerListenStart})

	var fragments []string
	holdUntil := time.Now().Add(i.tuning.MinHold)
	silence := time.NewTimer(i.tuning.SilenceWindow)
	defer silence.Stop()
	hard := time.NewTimer(i.tuning.HardTimeout)
	defer hard.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			i.hub.SendMessage(wsmodels.ServerMessage{Token: sess.Token, Type: wsmodels.ServerListenStop})
			return "", false, false
		case msg := <-sess.Events():
			if msg.Type != wsmodels.ClientSttFragment || strings.TrimSpace(msg.Text) == "" {
				continue
			}
			fragments = append(fragments, msg.Text)
			// каждый фрагмент сдвигает окно тишины
			if !silence.Stop() {
				select {
				case <-silence.C:
				default:
				}
			}
			silence.Reset(i.tuning.SilenceWindow)
		case <-silence.C:
			// раньше минимального времени слушания ответ не финализируем
			if rest := time.Until(holdUntil); rest > 0 {
				silence.Reset(rest)
				continue
			}
			break loop
		case <-hard.C:
			// жесткий предел гарантирует прогресс даже при молчащем распознавании
			break loop
		}
	}

	i.hub.SendMessage(wsmodels.ServerMessage{Token: sess.Token, Type: wsmodels.ServerListenStop})

	answer = helpers.JoinFragments(fragments)
	if len([]rune(answer)) >= i.tuning.MinAnswerChars {
		return answer, false, true
	}
	// живой транскрипт пуст или слишком короткий: фолбэк через
	// серверную транскрибацию клипа ответа
	if fbText := i.transcribeClip(ctx, sess, clip, logger); fbText != "" {
		return fbText, true, true
	}
	if answer != "" {
		return answer, false, true
	}
	return placeholderAnswer, false, true
}

func (i *impl) transcribeClip(ctx context.Context, sess *session.Session, clip *media.Recorder, logger *log.Entry) string {
	if err := clip.AwaitStop(ctx, i.tuning.StopFlushTimeout); err != nil {
		logger.WithError(err).Warn("клип ответа не прислал маркер остановки")
	}
	blob := clip.Blob()
	if blob.Empty() {
		return ""
	}
	fileName := fmt.Sprintf("answer_%s%s", uuid.New().String(), media.ExtForMime(blob.MimeType))
	text, err := i.platform.TranscribeFile(ctx, sess.InterviewID, fileName, blob.Data)
	if err != nil {
		if !helpers.IsContextDone(ctx) {
			logger.WithError(err).Warn("ошибка серверной транскрибации клипа")
		}
		return ""
	}
	return strings.TrimSpace(text)
}

// persistTurn назначает sequence_number синхронно, сам запрос
// сохранения уходит в фоне и не задерживает ход разговора
func (i *impl) persistTurn(sess *session.Session, role, content string, usedFallback bool) {
	if sess.MessagingDisabled() {
		return
	}
	seq := sess.NextSeq()
	i.saveMessageAsync(sess, role, content, seq)
	i.journal.TurnSaved(sess.Token, seq, role, content, usedFallback)
}

func (i *impl) saveMessageAsync(sess *session.Session, role, content string, seq int) {
	req := platformapimodels.MessageRequest{
		InterviewID:    sess.InterviewID,
		Role:           role,
		Content:        content,
		SequenceNumber: seq,
		Token:          sess.Token,
	}
	go func() {
		if err := i.platform.SaveMessage(context.Background(), req); err != nil {
			log.WithField("token", sess.Token).
				WithField("sequence_number", seq).
				WithError(err).Warn("ошибка сохранения сообщения диалога")
		}
	}()
}

func lastAssistantTurn(history []platformapimodels.HistoryTurn) string {
	for idx := len(history) - 1; idx >= 0; idx-- {
		if history[idx].Role == roleAssistant {
			return history[idx].Text
		}
	}
	return ""
}
