package signalshandler

import (
	"context"

	log "github.com/sirupsen/logrus"

	"interview-gateway/lib/platform"
	platformapimodels "interview-gateway/models/api/platform"
)

// Виды событий анти-чит телеметрии
const (
	KindTabHidden = "tab_hidden"
	KindFocusLost = "focus_lost"
)

type Provider interface {
	Report(token string, interviewID int, kind string, meta map[string]string)
}

var Instance Provider

func NewHandler() {
	Instance = &impl{
		platform: platform.Instance,
	}
}

func NewInstance(p platform.Provider) Provider {
	return &impl{platform: p}
}

type impl struct {
	platform platform.Provider
}

func (i impl) Report(token string, interviewID int, kind string, meta map[string]string) {
	req := platformapimodels.SignalRequest{
		Token:       token,
		InterviewID: interviewID,
		Kind:        kind,
		Meta:        meta,
	}
	// fire-and-forget, подтверждение не ждем
	go func() {
		err := i.platform.SendSignal(context.Background(), req)
		if err != nil {
			log.
				WithField("token", token).
				WithField("kind", kind).
				WithError(err).
				Warn("ошибка отправки сигнала телеметрии")
		}
	}()
}
