package journal

import (
	log "github.com/sirupsen/logrus"

	"interview-gateway/db"
	journalstore "interview-gateway/lib/journal/store"
	dbmodels "interview-gateway/models/db"
)

// Provider — локальный диагностический журнал сессий.
// Все записи best-effort, журнал никогда не блокирует поток кандидата.
type Provider interface {
	SessionCreated(token string, interviewID, jobID int)
	SessionInvalid(token string, errorText string)
	PhaseChanged(token string, phase string)
	SessionFinished(token string)
	TurnSaved(token string, seq int, role, content string, usedFallback bool)
}

var Instance Provider

func NewHandler() {
	if db.DB == nil {
		// шлюз работает и без локальной БД
		Instance = noopImpl{}
		return
	}
	Instance = &impl{
		store: journalstore.NewInstance(db.DB),
	}
}

func NewNoop() Provider {
	return noopImpl{}
}

type impl struct {
	store journalstore.Provider
}

func (i impl) getLogger(token string) *log.Entry {
	return log.WithField("token", token)
}

func (i impl) SessionCreated(token string, interviewID, jobID int) {
	go func() {
		_, err := i.store.SaveSession(dbmodels.InterviewSession{
			Token:       token,
			InterviewID: interviewID,
			JobID:       jobID,
			Phase:       "consent",
		})
		if err != nil {
			i.getLogger(token).WithError(err).Warn("ошибка записи сессии в журнал")
		}
	}()
}

func (i impl) SessionInvalid(token string, errorText string) {
	go func() {
		_, err := i.store.SaveSession(dbmodels.InterviewSession{
			Token:     token,
			Phase:     "invalid",
			ErrorText: errorText,
		})
		if err != nil {
			i.getLogger(token).WithError(err).Warn("ошибка записи сессии в журнал")
		}
	}()
}

func (i impl) PhaseChanged(token string, phase string) {
	go func() {
		if err := i.store.SetPhase(token, phase); err != nil {
			i.getLogger(token).WithError(err).Warn("ошибка записи фазы в журнал")
		}
	}()
}

func (i impl) SessionFinished(token string) {
	go func() {
		if err := i.store.SetFinished(token); err != nil {
			i.getLogger(token).WithError(err).Warn("ошибка записи завершения в журнал")
		}
	}()
}

func (i impl) TurnSaved(token string, seq int, role, content string, usedFallback bool) {
	go func() {
		_, err := i.store.SaveTurn(dbmodels.InterviewTurn{
			Token:          token,
			SequenceNumber: seq,
			Role:           role,
			Content:        content,
			UsedFallback:   usedFallback,
		})
		if err != nil {
			i.getLogger(token).WithError(err).Warn("ошибка записи хода в журнал")
		}
	}()
}

type noopImpl struct{}

func (noopImpl) SessionCreated(string, int, int)            {}
func (noopImpl) SessionInvalid(string, string)              {}
func (noopImpl) PhaseChanged(string, string)                {}
func (noopImpl) SessionFinished(string)                     {}
func (noopImpl) TurnSaved(string, int, string, string, bool) {}
