package media

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

type Blob struct {
	Data     []byte
	MimeType string
}

func (b Blob) Empty() bool {
	return len(b.Data) == 0
}

// Recorder — буфер медиа чанков одного трека.
// Чанки приходят от клиента по websocket, append-only до остановки.
type Recorder struct {
	mu      sync.Mutex
	kind    Kind
	chunks  [][]byte
	stopped chan struct{}
	once    sync.Once
}

func NewRecorder(kind Kind) *Recorder {
	return &Recorder{
		kind:    kind,
		chunks:  [][]byte{},
		stopped: make(chan struct{}),
	}
}

func (r *Recorder) Kind() Kind {
	return r.kind
}

// Append добавляет чанк, после остановки чанки игнорируются
func (r *Recorder) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	select {
	case <-r.stopped:
		return
	default:
	}
	data := make([]byte, len(chunk))
	copy(data, chunk)
	r.mu.Lock()
	r.chunks = append(r.chunks, data)
	r.mu.Unlock()
}

// MarkStopped — от клиента пришел маркер остановки рекордера после финального flush
func (r *Recorder) MarkStopped() {
	r.once.Do(func() {
		close(r.stopped)
	})
}

func (r *Recorder) Stopped() bool {
	select {
	case <-r.stopped:
		return true
	default:
		return false
	}
}

// AwaitStop ждет маркер остановки, без маркера выходим по таймауту,
// чтобы пайплайн выгрузки не завис навсегда
func (r *Recorder) AwaitStop(ctx context.Context, timeout time.Duration) error {
	select {
	case <-r.stopped:
		return nil
	case <-time.After(timeout):
		return errors.New("маркер остановки рекордера не получен")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) ChunkCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chunks)
}

// Blob склеивает накопленные чанки, mime-тип определяется по первому чанку
func (r *Recorder) Blob() Blob {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.chunks) == 0 {
		return Blob{}
	}
	size := 0
	for _, c := range r.chunks {
		size += len(c)
	}
	buf := make([]byte, 0, size)
	for _, c := range r.chunks {
		buf = append(buf, c...)
	}
	return Blob{
		Data:     buf,
		MimeType: DetectMimeType(r.kind, r.chunks[0]),
	}
}

// Сигнатуры контейнеров в порядке предпочтения, список фиксированный,
// повторного определения по ходу записи нет
var containerSignatures = []struct {
	match func(b []byte) bool
	video string
	audio string
}{
	{ // EBML (webm/matroska)
		match: func(b []byte) bool { return bytes.HasPrefix(b, []byte{0x1A, 0x45, 0xDF, 0xA3}) },
		video: "video/webm",
		audio: "audio/webm",
	},
	{ // ISO BMFF (mp4)
		match: func(b []byte) bool { return len(b) > 11 && bytes.Equal(b[4:8], []byte("ftyp")) },
		video: "video/mp4",
		audio: "audio/mp4",
	},
	{ // ogg
		match: func(b []byte) bool { return bytes.HasPrefix(b, []byte("OggS")) },
		video: "video/ogg",
		audio: "audio/ogg",
	},
	{ // mpeg audio
		match: func(b []byte) bool {
			return bytes.HasPrefix(b, []byte("ID3")) ||
				(len(b) > 1 && b[0] == 0xFF && b[1]&0xE0 == 0xE0)
		},
		video: "audio/mpeg",
		audio: "audio/mpeg",
	},
}

func DetectMimeType(kind Kind, firstChunk []byte) string {
	for _, sig := range containerSignatures {
		if sig.match(firstChunk) {
			if kind == KindVideo {
				return sig.video
			}
			return sig.audio
		}
	}
	return "application/octet-stream"
}

// ExtForMime — расширение файла для имени объекта при выгрузке
func ExtForMime(mimeType string) string {
	switch mimeType {
	case "video/webm", "audio/webm":
		return ".webm"
	case "video/mp4", "audio/mp4":
		return ".mp4"
	case "video/ogg", "audio/ogg":
		return ".ogg"
	case "audio/mpeg":
		return ".mp3"
	default:
		return ".bin"
	}
}
