package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"interview-gateway/config"
	platformapimodels "interview-gateway/models/api/platform"
)

// Provider — клиент REST API платформы (верификация токенов, генерация
// вопросов, TTS/STT, presign выгрузки). Контракт принадлежит платформе.
type Provider interface {
	VerifyToken(ctx context.Context, token string) (hMsg string, err error)
	GetByToken(ctx context.Context, token string) (*platformapimodels.InterviewInfo, error)
	SaveMessage(ctx context.Context, req platformapimodels.MessageRequest) error
	NextQuestion(ctx context.Context, req platformapimodels.NextQuestionRequest) (platformapimodels.NextQuestionResult, error)
	Speak(ctx context.Context, text string) (audio []byte, err error)
	TranscribeFile(ctx context.Context, interviewID int, fileName string, data []byte) (text string, err error)
	PresignUpload(ctx context.Context, token, fileName, contentType string) (presignedURL string, err error)
	PatchMedia(ctx context.Context, token string, videoURL, audioURL *string) error
	SaveConsent(ctx context.Context, token string, interviewID int, textVersion string) error
	SendSignal(ctx context.Context, req platformapimodels.SignalRequest) error
}

var Instance Provider

func NewHandler() {
	Instance = NewInstance(config.Conf.Platform.URL, &http.Client{
		Timeout: time.Duration(config.Conf.Platform.RequestTimeoutSec) * time.Second,
	})
}

func NewInstance(baseURL string, client *http.Client) Provider {
	return &impl{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type impl struct {
	baseURL string
	client  *http.Client
}

func (i impl) VerifyToken(ctx context.Context, token string) (hMsg string, err error) {
	uri := fmt.Sprintf("%s/api/v1/tokens/verify?token=%s", i.baseURL, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, nil)
	if err != nil {
		return "", errors.Wrap(err, "ошибка формирования запроса верификации токена")
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "ошибка запроса верификации токена")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return "", nil
	}
	// текст отказа сервера показываем кандидату в фазе invalid
	return readErrText(resp), nil
}

func (i impl) GetByToken(ctx context.Context, token string) (*platformapimodels.InterviewInfo, error) {
	uri := fmt.Sprintf("%s/api/v1/interviews/by-token/%s", i.baseURL, url.PathEscape(token))
	rec := platformapimodels.InterviewInfo{}
	err := i.doJSON(ctx, http.MethodGet, uri, nil, &rec)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения данных интервью по токену")
	}
	return &rec, nil
}

func (i impl) SaveMessage(ctx context.Context, req platformapimodels.MessageRequest) error {
	uri := fmt.Sprintf("%s/api/v1/conversations/messages-public", i.baseURL)
	err := i.doJSON(ctx, http.MethodPost, uri, req, nil)
	if err != nil {
		return errors.Wrap(err, "ошибка сохранения сообщения диалога")
	}
	return nil
}

func (i impl) NextQuestion(ctx context.Context, req platformapimodels.NextQuestionRequest) (platformapimodels.NextQuestionResult, error) {
	uri := fmt.Sprintf("%s/api/v1/interview/next-question", i.baseURL)
	result := platformapimodels.NextQuestionResult{}
	err := i.doJSON(ctx, http.MethodPost, uri, req, &result)
	if err != nil {
		return result, errors.Wrap(err, "ошибка получения следующего вопроса")
	}
	return result, nil
}

func (i impl) Speak(ctx context.Context, text string) ([]byte, error) {
	uri := fmt.Sprintf("%s/api/v1/tts/speak", i.baseURL)
	body, err := json.Marshal(platformapimodels.SpeakRequest{
		Text:     text,
		Lang:     config.Conf.Platform.TTSLang,
		Provider: config.Conf.Platform.TTSProvider,
	})
	if err != nil {
		return nil, errors.Wrap(err, "ошибка сериализации запроса синтеза речи")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "ошибка формирования запроса синтеза речи")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := i.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка запроса синтеза речи")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("ошибка синтеза речи: %s", readErrText(resp))
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка чтения аудио ответа")
	}
	return audio, nil
}

func (i impl) TranscribeFile(ctx context.Context, interviewID int, fileName string, data []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", errors.Wrap(err, "ошибка формирования multipart запроса")
	}
	if _, err = part.Write(data); err != nil {
		return "", errors.Wrap(err, "ошибка записи файла в multipart запрос")
	}
	writer.Close()

	uri := fmt.Sprintf("%s/api/v1/stt/transcribe-file?interview_id=%v", i.baseURL, interviewID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, body)
	if err != nil {
		return "", errors.Wrap(err, "ошибка формирования запроса транскрибации")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := i.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "ошибка запроса транскрибации")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Errorf("ошибка транскрибации: %s", readErrText(resp))
	}
	result := platformapimodels.TranscribeResponse{}
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.Wrap(err, "ошибка чтения ответа транскрибации")
	}
	return result.Text, nil
}

func (i impl) PresignUpload(ctx context.Context, token, fileName, contentType string) (string, error) {
	uri := fmt.Sprintf("%s/api/v1/tokens/presign-upload", i.baseURL)
	result := platformapimodels.PresignResponse{}
	err := i.doJSON(ctx, http.MethodPost, uri, platformapimodels.PresignRequest{
		Token:       token,
		FileName:    fileName,
		ContentType: contentType,
	}, &result)
	if err != nil {
		return "", errors.Wrap(err, "ошибка получения presigned url")
	}
	return result.PresignedURL, nil
}

func (i impl) PatchMedia(ctx context.Context, token string, videoURL, audioURL *string) error {
	uri := fmt.Sprintf("%s/api/v1/interviews/%s/media", i.baseURL, url.PathEscape(token))
	err := i.doJSON(ctx, http.MethodPatch, uri, platformapimodels.MediaPatchRequest{
		VideoURL: videoURL,
		AudioURL: audioURL,
	}, nil)
	if err != nil {
		return errors.Wrap(err, "ошибка обновления медиа ссылок интервью")
	}
	return nil
}

func (i impl) SaveConsent(ctx context.Context, token string, interviewID int, textVersion string) error {
	uri := fmt.Sprintf("%s/api/v1/tokens/consent", i.baseURL)
	err := i.doJSON(ctx, http.MethodPost, uri, platformapimodels.ConsentRequest{
		Token:       token,
		InterviewID: interviewID,
		TextVersion: textVersion,
	}, nil)
	if err != nil {
		return errors.Wrap(err, "ошибка сохранения согласия кандидата")
	}
	return nil
}

func (i impl) SendSignal(ctx context.Context, req platformapimodels.SignalRequest) error {
	uri := fmt.Sprintf("%s/api/v1/signals/public", i.baseURL)
	err := i.doJSON(ctx, http.MethodPost, uri, req, nil)
	if err != nil {
		return errors.Wrap(err, "ошибка отправки сигнала телеметрии")
	}
	return nil
}

func (i impl) doJSON(ctx context.Context, method, uri string, in, out interface{}) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "ошибка сериализации запроса")
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, uri, reqBody)
	if err != nil {
		return errors.Wrap(err, "ошибка формирования запроса")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "ошибка выполнения запроса")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("код ответа %v: %s", resp.StatusCode, readErrText(resp))
	}
	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(err, "ошибка чтения ответа")
		}
	}
	return nil
}

// readErrText достает текст ошибки из тела ответа платформы
func readErrText(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(data) == 0 {
		return resp.Status
	}
	parsed := struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}{}
	if err = json.Unmarshal(data, &parsed); err == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return string(data)
}
