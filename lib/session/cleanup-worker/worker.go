package sessioncleanupworker

import (
	"context"
	"time"

	"interview-gateway/config"
	"interview-gateway/lib/session"
	baseworker "interview-gateway/lib/utils/base-worker"
)

// Задача очистки брошенных сессий
func StartWorker(ctx context.Context) {
	i := &impl{
		BaseImpl: *baseworker.NewInstance("SessionCleanupWorker", 1*time.Minute, 5*time.Minute),
		manager:  session.Instance,
		ttl:      time.Duration(config.Conf.Interview.SessionTTLMin) * time.Minute,
	}
	go i.Run(ctx, i.handle)
}

type impl struct {
	baseworker.BaseImpl
	manager session.Manager
	ttl     time.Duration
}

func (i impl) handle(ctx context.Context) {
	removed := i.manager.CleanupExpired(i.ttl)
	if removed > 0 {
		i.GetLogger().Infof("удалено просроченных сессий: %v", removed)
	}
}
