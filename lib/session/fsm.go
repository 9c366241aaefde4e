package session

import (
	"sync"

	"github.com/pkg/errors"
)

type Phase string

const (
	PhaseLoading           Phase = "loading"
	PhaseInvalid           Phase = "invalid"
	PhaseConsent           Phase = "consent"
	PhasePermissions       Phase = "permissions"
	PhasePermissionsDenied Phase = "permissionsDenied"
	PhaseTest              Phase = "test"
	PhaseIntro             Phase = "intro"
	PhaseInterview         Phase = "interview"
	PhaseFinished          Phase = "finished"
)

// Таблица допустимых переходов, недопустимый переход — ошибка.
// invalid и finished — терминальные фазы.
var transitions = map[Phase][]Phase{
	PhaseLoading:           {PhaseInvalid, PhaseConsent},
	PhaseConsent:           {PhasePermissions},
	PhasePermissions:       {PhaseTest, PhasePermissionsDenied},
	PhasePermissionsDenied: {PhasePermissions},
	PhaseTest:              {PhaseIntro},
	PhaseIntro:             {PhaseInterview},
	PhaseInterview:         {PhaseFinished},
	PhaseInvalid:           {},
	PhaseFinished:          {},
}

func (p Phase) CanTransition(to Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (p Phase) Terminal() bool {
	return len(transitions[p]) == 0
}

type FSM struct {
	mu    sync.Mutex
	phase Phase
}

func NewFSM() *FSM {
	return &FSM{phase: PhaseLoading}
}

func (f *FSM) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *FSM) Transition(to Phase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.phase.CanTransition(to) {
		return errors.Errorf("недопустимый переход фазы: %s -> %s", f.phase, to)
	}
	f.phase = to
	return nil
}
