package filearchive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"

	"interview-gateway/config"
	"interview-gateway/lib/media"
	s3client "interview-gateway/s3"
)

// Provider — архив медиа в S3 оператора.
// Используется как запасной слив, когда обе попытки выгрузки по
// presigned url провалились: запись не теряется, доступна для ручного разбора.
type Provider interface {
	ArchiveMedia(ctx context.Context, token, kind string, blob media.Blob) (objectName string, err error)
}

var Instance Provider

func NewHandler() {
	Instance = &impl{
		client: s3client.Client,
	}
}

type impl struct {
	client *minio.Client
}

func (i impl) ArchiveMedia(ctx context.Context, token, kind string, blob media.Blob) (string, error) {
	if i.client == nil {
		return "", errors.New("клиент S3 не инициализирован")
	}
	if blob.Empty() {
		return "", errors.New("пустой блоб, архивировать нечего")
	}
	if err := s3client.MakeBucket(ctx); err != nil {
		return "", errors.Wrap(err, "ошибка создания бакета архива")
	}
	objectName := fmt.Sprintf("%s/%s_%s%s", token, kind, uuid.New().String(), media.ExtForMime(blob.MimeType))
	_, err := i.client.PutObject(ctx, config.Conf.S3.BucketName, objectName,
		bytes.NewReader(blob.Data), int64(len(blob.Data)),
		minio.PutObjectOptions{ContentType: blob.MimeType})
	if err != nil {
		return "", errors.Wrap(err, "ошибка записи медиа в архив")
	}
	return objectName, nil
}
