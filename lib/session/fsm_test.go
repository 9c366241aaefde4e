package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFsm(t *testing.T) {
	t.Run(`happy path check`, func(t *testing.T) {
		fsm := NewFSM()
		require.Equal(t, PhaseLoading, fsm.Phase())

		chain := []Phase{PhaseConsent, PhasePermissions, PhaseTest, PhaseIntro, PhaseInterview, PhaseFinished}
		for _, to := range chain {
			err := fsm.Transition(to)
			require.Nil(t, err)
			require.Equal(t, to, fsm.Phase())
		}
		require.Equal(t, true, fsm.Phase().Terminal())
	})

	t.Run(`invalid token path check`, func(t *testing.T) {
		fsm := NewFSM()
		err := fsm.Transition(PhaseInvalid)
		require.Nil(t, err)
		require.Equal(t, true, fsm.Phase().Terminal())

		err = fsm.Transition(PhaseConsent)
		require.NotNil(t, err)
		require.Equal(t, PhaseInvalid, fsm.Phase())
	})

	t.Run(`permissions denied retry check`, func(t *testing.T) {
		fsm := NewFSM()
		require.Nil(t, fsm.Transition(PhaseConsent))
		require.Nil(t, fsm.Transition(PhasePermissions))
		require.Nil(t, fsm.Transition(PhasePermissionsDenied))

		// повторная попытка возвращает в permissions
		require.Nil(t, fsm.Transition(PhasePermissions))
		require.Nil(t, fsm.Transition(PhaseTest))
	})

	t.Run(`illegal transitions check`, func(t *testing.T) {
		fsm := NewFSM()

		// сразу в interview из loading нельзя
		err := fsm.Transition(PhaseInterview)
		require.NotNil(t, err)
		require.Equal(t, PhaseLoading, fsm.Phase())

		require.Nil(t, fsm.Transition(PhaseConsent))

		// пропуск permissions
		err = fsm.Transition(PhaseTest)
		require.NotNil(t, err)
		require.Equal(t, PhaseConsent, fsm.Phase())

		// назад в loading нельзя
		err = fsm.Transition(PhaseLoading)
		require.NotNil(t, err)
	})

	t.Run(`finished is terminal check`, func(t *testing.T) {
		fsm := NewFSM()
		for _, to := range []Phase{PhaseConsent, PhasePermissions, PhaseTest, PhaseIntro, PhaseInterview, PhaseFinished} {
			require.Nil(t, fsm.Transition(to))
		}
		err := fsm.Transition(PhaseInterview)
		require.NotNil(t, err)
		require.Equal(t, PhaseFinished, fsm.Phase())
	})
}
