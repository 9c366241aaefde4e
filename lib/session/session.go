package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"interview-gateway/lib/media"
	wsmodels "interview-gateway/models/ws"
)

// Session — состояние одной кандидатской сессии интервью.
// Живет от проверки токена до фазы finished, уничтожается воркером очистки.
type Session struct {
	Token            string
	InterviewID      int
	JobID            int
	PreparedQuestion string

	fsm *FSM

	mu              sync.Mutex
	consentAccepted bool
	deviceChecked   bool
	createdAt       time.Time
	lastSeenAt      time.Time
	seq             int // счетчик sequence_number, 0 занят системным сообщением
	clip            *media.Recorder

	Combined  *media.Recorder
	AudioOnly *media.Recorder

	listening    atomic.Bool
	messagingOff atomic.Bool

	events chan wsmodels.ClientMessage

	ctx        context.Context
	cancel     context.CancelFunc
	FinishOnce sync.Once
}

func New(token string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	return &Session{
		Token:      token,
		fsm:        NewFSM(),
		createdAt:  now,
		lastSeenAt: now,
		events:     make(chan wsmodels.ClientMessage, 64),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (s *Session) Phase() Phase {
	return s.fsm.Phase()
}

func (s *Session) Transition(to Phase) error {
	return s.fsm.Transition(to)
}

func (s *Session) Ctx() context.Context {
	return s.ctx
}

// Cancel останавливает движок разговора, активные таймеры и ожидания.
// Незавершенные сетевые best-effort вызовы не отменяются.
func (s *Session) Cancel() {
	s.cancel()
}

func (s *Session) Events() <-chan wsmodels.ClientMessage {
	return s.events
}

// PushEvent — неблокирующая доставка события движку,
// при переполнении буфера событие отбрасывается
func (s *Session) PushEvent(msg wsmodels.ClientMessage) {
	select {
	case s.events <- msg:
	default:
		log.
			WithField("token", s.Token).
			WithField("type", msg.Type).
			Warn("буфер событий сессии переполнен, событие отброшено")
	}
}

// DrainEvents выбрасывает устаревшие события предыдущего хода
func (s *Session) DrainEvents() {
	for {
		select {
		case <-s.events:
		default:
			return
		}
	}
}

// NextSeq выдает строго возрастающий sequence_number, начиная с 1
func (s *Session) NextSeq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

func (s *Session) SetConsentAccepted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consentAccepted = true
}

func (s *Session) ConsentAccepted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consentAccepted
}

func (s *Session) SetDeviceChecked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceChecked = true
}

func (s *Session) DeviceChecked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceChecked
}

// StartRecorders создает долгоживущие рекордеры на входе в фазу interview
func (s *Session) StartRecorders() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Combined == nil {
		s.Combined = media.NewRecorder(media.KindVideo)
	}
	if s.AudioOnly == nil {
		s.AudioOnly = media.NewRecorder(media.KindAudio)
	}
}

// SetClip — рекордер клипа текущего ответа, живет один ход
func (s *Session) SetClip(r *media.Recorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clip = r
}

func (s *Session) Clip() *media.Recorder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clip
}

// RecorderByTrack — рекордер по префиксу бинарного кадра
func (s *Session) RecorderByTrack(track byte) *media.Recorder {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch track {
	case wsmodels.TrackCombined:
		return s.Combined
	case wsmodels.TrackAudio:
		return s.AudioOnly
	case wsmodels.TrackClip:
		return s.clip
	}
	return nil
}

func (s *Session) RecorderByTrackName(name string) *media.Recorder {
	switch name {
	case wsmodels.TrackNameCombined:
		return s.RecorderByTrack(wsmodels.TrackCombined)
	case wsmodels.TrackNameAudio:
		return s.RecorderByTrack(wsmodels.TrackAudio)
	case wsmodels.TrackNameClip:
		return s.RecorderByTrack(wsmodels.TrackClip)
	}
	return nil
}

func (s *Session) SetListening(v bool) {
	s.listening.Store(v)
}

func (s *Session) IsListening() bool {
	return s.listening.Load()
}

// DisableMessaging запрещает дальнейшую отправку сообщений диалога,
// после finished сервер отклоняет записи по использованному токену
func (s *Session) DisableMessaging() {
	s.messagingOff.Store(true)
}

func (s *Session) MessagingDisabled() bool {
	return s.messagingOff.Load()
}

func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeenAt = time.Now()
}

func (s *Session) Expired(ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastSeenAt) > ttl
}
