package initializers

import (
	"context"

	"interview-gateway/config"
	"interview-gateway/fiberlog"
	filearchive "interview-gateway/lib/file-archive"
	interviewhandler "interview-gateway/lib/interview"
	"interview-gateway/lib/journal"
	"interview-gateway/lib/platform"
	"interview-gateway/lib/session"
	sessioncleanupworker "interview-gateway/lib/session/cleanup-worker"
	signalshandler "interview-gateway/lib/signals"
	"interview-gateway/lib/upload"
	connectionhub "interview-gateway/lib/ws/hub/connection-hub"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	if *config.Conf.Database.Enabled {
		InitDBConnection()
	}
	InitS3()
	connectionhub.Init()
	session.InitManager()
	platform.NewHandler()
	filearchive.NewHandler()
	journal.NewHandler()
	signalshandler.NewHandler()
	upload.NewHandler()
	interviewhandler.NewHandler()
	go initWorkers(ctx)
}

func initWorkers(ctx context.Context) {
	// Задача очистки протухших сессий интервью
	sessioncleanupworker.StartWorker(ctx)
}
