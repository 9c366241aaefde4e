package journalstore

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "interview-gateway/models/db"
)

type Provider interface {
	SaveSession(rec dbmodels.InterviewSession) (id string, err error)
	SetPhase(token string, phase string) error
	SetFinished(token string) error
	SaveTurn(rec dbmodels.InterviewTurn) (id string, err error)
}

type impl struct {
	db *gorm.DB
}

func NewInstance(db *gorm.DB) Provider {
	return &impl{db: db}
}

func (i impl) SaveSession(rec dbmodels.InterviewSession) (id string, err error) {
	err = i.db.Save(&rec).Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) SetPhase(token string, phase string) error {
	err := i.db.
		Model(&dbmodels.InterviewSession{}).
		Where("token = ?", token).
		Update("phase", phase).
		Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (i impl) SetFinished(token string) error {
	now := time.Now()
	err := i.db.
		Model(&dbmodels.InterviewSession{}).
		Where("token = ?", token).
		Updates(map[string]interface{}{"phase": "finished", "finished_at": &now}).
		Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (i impl) SaveTurn(rec dbmodels.InterviewTurn) (id string, err error) {
	err = i.db.Save(&rec).Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}
