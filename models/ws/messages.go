package wsmodels

// Типы сообщений от клиента
const (
	ClientSttFragment     = "stt_fragment"     // фрагмент распознанной речи
	ClientTtsDone         = "tts_done"         // воспроизведение вопроса завершено
	ClientRecorderStopped = "recorder_stopped" // маркер остановки рекордера после финального flush
	ClientSignal          = "signal"           // событие анти-чит телеметрии (tab_hidden/focus_lost)
)

// Типы сообщений от сервера
const (
	ServerPhase       = "phase"        // смена фазы сессии
	ServerQuestion    = "question"     // текст текущего вопроса
	ServerTtsAudio    = "tts_audio"    // синтезированное аудио вопроса
	ServerListenStart = "listen_start" // старт распознавания и рекордера ответа
	ServerListenStop  = "listen_stop"  // стоп распознавания, финальный flush клипа
	ServerFinalize    = "finalize"     // финальный flush и стоп долгоживущих рекордеров
)

// Префиксы бинарных кадров с медиа чанками
const (
	TrackCombined byte = 0x01 // видео + смикшированное аудио
	TrackAudio    byte = 0x02 // только аудио
	TrackClip     byte = 0x03 // клип ответа текущего хода
)

// Имена треков в маркерах recorder_stopped
const (
	TrackNameCombined = "combined"
	TrackNameAudio    = "audio"
	TrackNameClip     = "clip"
)

type ClientMessage struct {
	Type  string            `json:"type"`
	Text  string            `json:"text,omitempty"`  // для stt_fragment
	Track string            `json:"track,omitempty"` // для recorder_stopped
	Kind  string            `json:"kind,omitempty"`  // для signal
	Meta  map[string]string `json:"meta,omitempty"`
}

type ServerMessage struct {
	Token    string `json:"-"`
	Type     string `json:"type"`
	Phase    string `json:"phase,omitempty"`
	Question string `json:"question,omitempty"`
	Audio    []byte `json:"audio,omitempty"` // base64 в json
	MimeType string `json:"mime_type,omitempty"`
}
