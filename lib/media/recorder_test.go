package media

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	t.Run(`append and blob check`, func(t *testing.T) {
		rec := NewRecorder(KindAudio)
		rec.Append([]byte("OggS"))
		rec.Append([]byte("-part2"))
		rec.Append(nil)
		require.Equal(t, 2, rec.ChunkCount())

		blob := rec.Blob()
		require.Equal(t, []byte("OggS-part2"), blob.Data)
		require.Equal(t, "audio/ogg", blob.MimeType)
	})

	t.Run(`chunks are copied check`, func(t *testing.T) {
		rec := NewRecorder(KindAudio)
		chunk := []byte("OggSxx")
		rec.Append(chunk)
		chunk[0] = 'Z'

		blob := rec.Blob()
		require.Equal(t, []byte("OggSxx"), blob.Data)
	})

	t.Run(`append after stop ignored check`, func(t *testing.T) {
		rec := NewRecorder(KindVideo)
		rec.Append([]byte{0x1A, 0x45, 0xDF, 0xA3, 0x01})
		rec.MarkStopped()
		rec.MarkStopped() // повторный маркер не паникует
		rec.Append([]byte("late chunk"))
		require.Equal(t, 1, rec.ChunkCount())
	})

	t.Run(`empty blob check`, func(t *testing.T) {
		rec := NewRecorder(KindVideo)
		blob := rec.Blob()
		require.Equal(t, true, blob.Empty())
	})

	t.Run(`await stop check`, func(t *testing.T) {
		rec := NewRecorder(KindAudio)
		go func() {
			time.Sleep(10 * time.Millisecond)
			rec.MarkStopped()
		}()
		err := rec.AwaitStop(context.Background(), time.Second)
		require.Nil(t, err)
		require.Equal(t, true, rec.Stopped())
	})

	t.Run(`await stop timeout check`, func(t *testing.T) {
		rec := NewRecorder(KindAudio)
		err := rec.AwaitStop(context.Background(), 20*time.Millisecond)
		require.NotNil(t, err)
		require.Equal(t, false, rec.Stopped())
	})

	t.Run(`mime detection check`, func(t *testing.T) {
		cases := []struct {
			name  string
			kind  Kind
			chunk []byte
			want  string
		}{
			{"webm video", KindVideo, []byte{0x1A, 0x45, 0xDF, 0xA3, 0x00}, "video/webm"},
			{"webm audio", KindAudio, []byte{0x1A, 0x45, 0xDF, 0xA3, 0x00}, "audio/webm"},
			{"mp4", KindVideo, append([]byte{0, 0, 0, 0x18}, []byte("ftypisom")...), "video/mp4"},
			{"ogg", KindAudio, []byte("OggS....."), "audio/ogg"},
			{"mp3 id3", KindAudio, []byte("ID3....."), "audio/mpeg"},
			{"mp3 frame", KindAudio, []byte{0xFF, 0xFB, 0x90}, "audio/mpeg"},
			{"unknown", KindVideo, []byte("garbage"), "application/octet-stream"},
		}
		for _, c := range cases {
			got := DetectMimeType(c.kind, c.chunk)
			require.Equal(t, c.want, got, c.name)
		}
	})

	t.Run(`ext for mime check`, func(t *testing.T) {
		require.Equal(t, ".webm", ExtForMime("video/webm"))
		require.Equal(t, ".mp4", ExtForMime("audio/mp4"))
		require.Equal(t, ".mp3", ExtForMime("audio/mpeg"))
		require.Equal(t, ".bin", ExtForMime("application/octet-stream"))
	})
}
