package interviewapimodels

type SessionView struct {
	Phase           string `json:"phase"`
	InterviewID     int    `json:"interview_id,omitempty"`
	JobID           int    `json:"job_id,omitempty"`
	ChunkIntervalMs int    `json:"chunk_interval_ms,omitempty"` // интервал flush медиа чанков на клиенте
	Error           string `json:"error,omitempty"`             // текст ошибки для фазы invalid
}

type ConsentRequest struct {
	Accepted bool `json:"accepted"`
}

type PermissionsRequest struct {
	Granted bool `json:"granted"`
}
