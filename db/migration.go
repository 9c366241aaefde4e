package db

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	dbmodels "interview-gateway/models/db"
)

func AutoMigrateDB() error {
	DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")
	log.Info("Запуск миграций")
	if err := DB.AutoMigrate(&dbmodels.InterviewSession{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры InterviewSession")
	}
	if err := DB.AutoMigrate(&dbmodels.InterviewTurn{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры InterviewTurn")
	}
	log.Info("Миграция прошла успешно")
	return nil
}
