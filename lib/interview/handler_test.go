package interviewhandler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"interview-gateway/lib/session"
	signalshandler "interview-gateway/lib/signals"
	platformapimodels "interview-gateway/models/api/platform"
	wsmodels "interview-gateway/models/ws"
)

func TestSessionLifecycle(t *testing.T) {
	t.Run(`bootstrap valid token check`, func(t *testing.T) {
		p := &fakePlatform{}
		i := newTestImpl(p, &fakeHub{}, &fakeUploader{})

		view, err := i.Bootstrap(context.Background(), "tkn")
		require.Nil(t, err)
		require.Equal(t, string(session.PhaseConsent), view.Phase)
		require.Equal(t, 42, view.InterviewID)
		require.Equal(t, 7, view.JobID)
		require.Equal(t, 1000, view.ChunkIntervalMs)
		require.NotNil(t, i.manager.Get("tkn"))

		// стартовое системное сообщение с sequence_number 0
		require.Eventually(t, func() bool { return len(p.savedMessages()) == 1 }, time.Second, 10*time.Millisecond)
		saved := p.savedMessages()
		require.Equal(t, 0, saved[0].SequenceNumber)
		require.Equal(t, "system", saved[0].Role)

		// повторное открытие страницы возвращает ту же сессию
		again, err := i.Bootstrap(context.Background(), "tkn")
		require.Nil(t, err)
		require.Equal(t, view, again)
		require.Eventually(t, func() bool { return len(p.savedMessages()) == 1 }, 100*time.Millisecond, 10*time.Millisecond)
	})

	t.Run(`bootstrap invalid token check`, func(t *testing.T) {
		p := &fakePlatform{verifyHMsg: "Görüşme linki geçersiz"}
		i := newTestImpl(p, &fakeHub{}, &fakeUploader{})

		view, err := i.Bootstrap(context.Background(), "bad")
		require.Nil(t, err)
		require.Equal(t, string(session.PhaseInvalid), view.Phase)
		require.Equal(t, "Görüşme linki geçersiz", view.Error)
		// сессия для невалидного токена не создается,
		// доступ к камере и микрофону не запрашивается
		require.Nil(t, i.manager.Get("bad"))
	})

	t.Run(`full phase walk check`, func(t *testing.T) {
		p := &fakePlatform{}
		p.nextFn = func(call int, req platformapimodels.NextQuestionRequest) (platformapimodels.NextQuestionResult, error) {
			return platformapimodels.NextQuestionResult{Done: true}, nil
		}
		hub := &fakeHub{}
		up := &fakeUploader{}
		i := newTestImpl(p, hub, up)

		_, err := i.Bootstrap(context.Background(), "tkn")
		require.Nil(t, err)
		sess := i.manager.Get("tkn")

		hMsg, err := i.Consent("tkn")
		require.Nil(t, err)
		require.Equal(t, "", hMsg)
		require.Equal(t, session.PhasePermissions, sess.Phase())
		require.Equal(t, true, sess.ConsentAccepted())

		// отказ в доступе и повторная попытка
		hMsg, err = i.ReportPermissions("tkn", false)
		require.Nil(t, err)
		require.Equal(t, "", hMsg)
		require.Equal(t, session.PhasePermissionsDenied, sess.Phase())

		hMsg, err = i.ReportPermissions("tkn", true)
		require.Nil(t, err)
		require.Equal(t, "", hMsg)
		require.Equal(t, session.PhaseTest, sess.Phase())

		hMsg, err = i.ConfirmDeviceCheck("tkn")
		require.Nil(t, err)
		require.Equal(t, "", hMsg)
		require.Equal(t, session.PhaseIntro, sess.Phase())

		hMsg, err = i.Start("tkn")
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		// подготовленного вопроса нет, next-question сразу вернул done
		require.Eventually(t, func() bool { return sess.Phase() == session.PhaseFinished }, time.Second, 10*time.Millisecond)
		require.Eventually(t, func() bool { return up.count() == 1 }, time.Second, 10*time.Millisecond)
	})

	t.Run(`phase guards check`, func(t *testing.T) {
		p := &fakePlatform{}
		i := newTestImpl(p, &fakeHub{}, &fakeUploader{})

		hMsg, err := i.Consent("missing")
		require.Nil(t, err)
		require.Equal(t, "сессия не найдена", hMsg)

		_, err = i.Bootstrap(context.Background(), "tkn")
		require.Nil(t, err)

		// результат доступа до согласия не принимается
		hMsg, err = i.ReportPermissions("tkn", true)
		require.Nil(t, err)
		require.NotEqual(t, "", hMsg)

		// завершать нечего, интервью не начиналось
		hMsg, err = i.Finish("tkn")
		require.Nil(t, err)
		require.NotEqual(t, "", hMsg)

		hMsg, err = i.Consent("tkn")
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		// повторное согласие отклоняется
		hMsg, err = i.Consent("tkn")
		require.Nil(t, err)
		require.NotEqual(t, "", hMsg)
	})

	t.Run(`signal gating check`, func(t *testing.T) {
		p := &fakePlatform{}
		i := newTestImpl(p, &fakeHub{}, &fakeUploader{})
		sess := session.New("tkn")
		sess.InterviewID = 42

		// вне фазы слушания сигнал игнорируется
		i.HandleClientEvent(sess, wsmodels.ClientMessage{Type: wsmodels.ClientSignal, Kind: signalshandler.KindTabHidden})
		time.Sleep(50 * time.Millisecond)
		p.mu.Lock()
		require.Equal(t, 0, len(p.signals))
		p.mu.Unlock()

		sess.SetListening(true)
		i.HandleClientEvent(sess, wsmodels.ClientMessage{Type: wsmodels.ClientSignal, Kind: signalshandler.KindTabHidden})
		require.Eventually(t, func() bool {
			p.mu.Lock()
			defer p.mu.Unlock()
			return len(p.signals) == 1
		}, time.Second, 10*time.Millisecond)
		p.mu.Lock()
		require.Equal(t, signalshandler.KindTabHidden, p.signals[0].Kind)
		require.Equal(t, 42, p.signals[0].InterviewID)
		p.mu.Unlock()

		// неизвестный вид сигнала отбрасывается
		i.HandleClientEvent(sess, wsmodels.ClientMessage{Type: wsmodels.ClientSignal, Kind: "mouse_moved"})
		time.Sleep(50 * time.Millisecond)
		p.mu.Lock()
		require.Equal(t, 1, len(p.signals))
		p.mu.Unlock()
	})

	t.Run(`media chunk routing check`, func(t *testing.T) {
		p := &fakePlatform{}
		i := newTestImpl(p, &fakeHub{}, &fakeUploader{})
		sess := session.New("tkn")
		sess.StartRecorders()

		i.HandleMediaChunk(sess, wsmodels.TrackCombined, []byte{0x1A, 0x45, 0xDF, 0xA3})
		i.HandleMediaChunk(sess, wsmodels.TrackAudio, []byte{0x1A, 0x45, 0xDF, 0xA3})
		i.HandleMediaChunk(sess, 0x7F, []byte{0x01}) // неизвестная дорожка

		require.Equal(t, 1, sess.Combined.ChunkCount())
		require.Equal(t, 1, sess.AudioOnly.ChunkCount())

		// маркер остановки от клиента
		i.HandleClientEvent(sess, wsmodels.ClientMessage{Type: wsmodels.ClientRecorderStopped, Track: wsmodels.TrackNameCombined})
		require.Equal(t, true, sess.Combined.Stopped())
		require.Equal(t, false, sess.AudioOnly.Stopped())
	})

	t.Run(`manual finish check`, func(t *testing.T) {
		p := &fakePlatform{}
		p.nextFn = func(call int, req platformapimodels.NextQuestionRequest) (platformapimodels.NextQuestionResult, error) {
			// разговор не заканчивается сам
			return platformapimodels.NextQuestionResult{Question: "Bir sonraki soru"}, nil
		}
		hub := &fakeHub{}
		up := &fakeUploader{}
		i := newTestImpl(p, hub, up)

		_, err := i.Bootstrap(context.Background(), "tkn")
		require.Nil(t, err)
		sess := i.manager.Get("tkn")
		sess.PreparedQuestion = "Soru 1"
		autoReply(hub, sess, []string{"Cevap", "veriyorum"})

		_, err = i.Consent("tkn")
		require.Nil(t, err)
		_, err = i.ReportPermissions("tkn", true)
		require.Nil(t, err)
		_, err = i.ConfirmDeviceCheck("tkn")
		require.Nil(t, err)
		_, err = i.Start("tkn")
		require.Nil(t, err)

		hMsg, err := i.Finish("tkn")
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		require.Eventually(t, func() bool { return sess.Phase() == session.PhaseFinished }, 2*time.Second, 10*time.Millisecond)
		require.Eventually(t, func() bool { return up.count() == 1 }, time.Second, 10*time.Millisecond)

		// повторное завершение уже невозможно
		hMsg, err = i.Finish("tkn")
		require.Nil(t, err)
		require.NotEqual(t, "", hMsg)
		require.Eventually(t, func() bool { return up.count() == 1 }, 200*time.Millisecond, 20*time.Millisecond)
	})
}
