package interviewhandler

import (
	"time"

	"interview-gateway/config"
)

// Tuning — тайминги движка разговора, читаются из конфигурации один раз
type Tuning struct {
	SilenceWindow    time.Duration // финализация ответа после паузы без новых фрагментов
	MinHold          time.Duration // минимальное время слушания, чтобы не обрезать начало ответа
	HardTimeout      time.Duration // жесткий предел слушания, гарантия прогресса
	SpeakMaxWait     time.Duration // предел ожидания окончания воспроизведения вопроса
	StopFlushTimeout time.Duration // ожидание маркера остановки рекордера клипа
	EndNowDelay      time.Duration // задержка ручного завершения интервью
	MinAnswerChars   int           // порог короткого ответа для фолбэка транскрибации
	ChunkIntervalMs  int           // интервал flush медиа чанков на клиенте
}

func TuningFromConfig() Tuning {
	c := config.Conf.Interview
	return Tuning{
		SilenceWindow:    time.Duration(c.SilenceWindowSec) * time.Second,
		MinHold:          time.Duration(c.MinHoldSec) * time.Second,
		HardTimeout:      time.Duration(c.HardTimeoutSec) * time.Second,
		SpeakMaxWait:     time.Duration(c.SpeakMaxWaitSec) * time.Second,
		StopFlushTimeout: time.Duration(c.StopFlushTimeoutSec) * time.Second,
		EndNowDelay:      time.Duration(c.EndNowDelaySec) * time.Second,
		MinAnswerChars:   c.MinAnswerChars,
		ChunkIntervalMs:  c.ChunkIntervalMs,
	}
}
