package dbmodels

import (
	"time"
)

// Журнал сессий интервью для диагностики, best-effort запись
type InterviewSession struct {
	BaseModel
	Token       string `gorm:"type:varchar(64);uniqueIndex"`
	InterviewID int
	JobID       int
	Phase       string `gorm:"type:varchar(32)"`
	ErrorText   string
	FinishedAt  *time.Time
}

type InterviewTurn struct {
	BaseModel
	Token          string `gorm:"type:varchar(64);index"`
	SequenceNumber int
	Role           string `gorm:"type:varchar(16)"`
	Content        string
	UsedFallback   bool // ответ получен через серверную транскрибацию клипа
}
