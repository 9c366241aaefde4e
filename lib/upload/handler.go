package upload

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus"

	"interview-gateway/config"
	filearchive "interview-gateway/lib/file-archive"
	"interview-gateway/lib/media"
	"interview-gateway/lib/platform"
	"interview-gateway/lib/session"
)

// Provider — пайплайн финализации записи: стоп рекордеров, сборка блобов,
// выгрузка по presigned url и PATCH ссылок в интервью.
// Запускается ровно один раз на входе в фазу finished и не перезапускается.
type Provider interface {
	Finalize(ctx context.Context, sess *session.Session)
}

var Instance Provider

func NewHandler() {
	Instance = NewInstance(platform.Instance, filearchive.Instance,
		time.Duration(config.Conf.Interview.StopFlushTimeoutSec)*time.Second)
}

func NewInstance(p platform.Provider, a filearchive.Provider, stopTimeout time.Duration) Provider {
	return &impl{
		platform:    p,
		archive:     a,
		client:      &http.Client{Timeout: 2 * time.Minute},
		stopTimeout: stopTimeout,
	}
}

type impl struct {
	platform    platform.Provider
	archive     filearchive.Provider
	client      *http.Client
	stopTimeout time.Duration
}

func (i impl) getLogger(sess *session.Session) *logrus.Entry {
	return log.
		WithField("token", sess.Token).
		WithField("interview_id", sess.InterviewID)
}

func (i impl) Finalize(ctx context.Context, sess *session.Session) {
	logger := i.getLogger(sess)
	// после finished сервер отклоняет записи по использованному токену
	sess.DisableMessaging()

	// ждем маркеры остановки обоих рекордеров до чтения чанков:
	// стоп без финального flush теряет последний чанк
	for name, rec := range map[string]*media.Recorder{"combined": sess.Combined, "audio": sess.AudioOnly} {
		if rec == nil {
			continue
		}
		if err := rec.AwaitStop(ctx, i.stopTimeout); err != nil {
			logger.
				WithField("recorder", name).
				WithError(err).
				Warn("рекордер не прислал маркер остановки, продолжаем с накопленными чанками")
		}
	}

	var videoBlob, audioBlob media.Blob
	if sess.Combined != nil {
		videoBlob = sess.Combined.Blob()
	}
	if sess.AudioOnly != nil {
		audioBlob = sess.AudioOnly.Blob()
	}

	// каждый тип медиа выгружается независимо,
	// частичная потеря допустима и фиксируется null ссылкой
	videoURL := i.uploadMedia(ctx, sess, "video", videoBlob, logger)
	audioURL := i.uploadMedia(ctx, sess, "audio", audioBlob, logger)

	err := i.platform.PatchMedia(ctx, sess.Token, videoURL, audioURL)
	if err != nil {
		// PATCH не ретраим
		logger.WithError(err).Error("ошибка сохранения медиа ссылок интервью")
		return
	}
	logger.
		WithField("video_uploaded", videoURL != nil).
		WithField("audio_uploaded", audioURL != nil).
		Info("выгрузка медиа завершена")
}

// uploadMedia — presign + PUT, при ошибке одна повторная попытка
// со свежим presigned url; после двойного сбоя блоб уходит в архив S3
func (i impl) uploadMedia(ctx context.Context, sess *session.Session, kind string, blob media.Blob, logger *logrus.Entry) *string {
	if blob.Empty() {
		logger.WithField("kind", kind).Warn("пустая запись, выгружать нечего")
		return nil
	}
	fileName := fmt.Sprintf("interview_%v_%s_%s%s", sess.InterviewID, kind, uuid.New().String(), media.ExtForMime(blob.MimeType))
	for attempt := 0; attempt < 2; attempt++ {
		presignedURL, err := i.platform.PresignUpload(ctx, sess.Token, fileName, blob.MimeType)
		if err != nil {
			logger.
				WithField("kind", kind).
				WithField("attempt", attempt+1).
				WithError(err).
				Warn("ошибка получения presigned url")
			continue
		}
		err = i.putObject(ctx, presignedURL, blob)
		if err != nil {
			logger.
				WithField("kind", kind).
				WithField("attempt", attempt+1).
				WithError(err).
				Warn("ошибка выгрузки по presigned url")
			continue
		}
		result := stripQuery(presignedURL)
		return &result
	}

	// обе попытки провалились — сохраняем в архив для ручного разбора
	objectName, err := i.archive.ArchiveMedia(context.Background(), sess.Token, kind, blob)
	if err != nil {
		logger.WithField("kind", kind).WithError(err).Error("ошибка архивирования медиа")
	} else {
		logger.
			WithField("kind", kind).
			WithField("object_name", objectName).
			Warn("медиа не выгружено, запись сохранена в архив")
	}
	return nil
}

func (i impl) putObject(ctx context.Context, presignedURL string, blob media.Blob) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, bytes.NewReader(blob.Data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", blob.MimeType)
	req.ContentLength = int64(len(blob.Data))
	resp, err := i.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("код ответа %v", resp.StatusCode)
	}
	return nil
}

// stripQuery убирает подпись из presigned url, в интервью храним чистую ссылку
func stripQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	return u.String()
}
