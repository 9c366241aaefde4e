package platformapimodels

// Модели запросов/ответов REST API платформы (внешний сервис)

type InterviewInfo struct {
	ID                    int    `json:"id"`
	JobID                 int    `json:"job_id"`
	PreparedFirstQuestion string `json:"prepared_first_question,omitempty"`
}

type HistoryTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type MessageRequest struct {
	InterviewID    int    `json:"interview_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	SequenceNumber int    `json:"sequence_number"`
	Token          string `json:"token"`
}

type NextQuestionRequest struct {
	History     []HistoryTurn `json:"history"`
	InterviewID int           `json:"interview_id"`
	Signals     []string      `json:"signals,omitempty"` // поведенческие сигналы, например very_short_answer
}

type NextQuestionResult struct {
	Question string `json:"question"`
	Done     bool   `json:"done"`
}

type SpeakRequest struct {
	Text     string `json:"text"`
	Lang     string `json:"lang"`
	Provider string `json:"provider,omitempty"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

type PresignRequest struct {
	Token       string `json:"token"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

type PresignResponse struct {
	PresignedURL string `json:"presigned_url"`
}

type MediaPatchRequest struct {
	VideoURL *string `json:"video_url"`
	AudioURL *string `json:"audio_url"`
}

type ConsentRequest struct {
	Token       string `json:"token"`
	InterviewID int    `json:"interview_id"`
	TextVersion string `json:"text_version"`
}

type SignalRequest struct {
	Token       string            `json:"token"`
	InterviewID int               `json:"interview_id"`
	Kind        string            `json:"kind"`
	Meta        map[string]string `json:"meta,omitempty"`
}
