package novelai

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"image_bot/entities"
)

// pngWithComment encodes a 2x2 image and injects a tEXt "Comment" chunk after IHDR.
func pngWithComment(t *testing.T, comment string) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	raw := buf.Bytes()

	data := append([]byte("Comment\x00"), comment...)
	chunk := make([]byte, 0, 12+len(data))
	chunk = binary.BigEndian.AppendUint32(chunk, uint32(len(data)))
	chunk = append(chunk, "tEXt"...)
	chunk = append(chunk, data...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(append([]byte("tEXt"), data...)))

	// signature (8) + IHDR chunk (4 length + 4 type + 13 data + 4 crc)
	ihdrEnd := 8 + 25
	out := append([]byte{}, raw[:ihdrEnd]...)
	out = append(out, chunk...)
	return append(out, raw[ihdrEnd:]...)
}

func zipped(t *testing.T, files ...[]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for i, file := range files {
		f, err := w.Create("image_" + string(rune('0'+i)) + ".png")
		require.NoError(t, err)
		_, err = f.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractSeed(t *testing.T) {
	seed, err := ExtractSeed(pngWithComment(t, `{"prompt":"cat","seed":123456,"steps":28}`))
	require.NoError(t, err)
	require.Equal(t, int64(123456), seed)

	_, err = ExtractSeed(pngWithComment(t, `{"prompt":"cat"}`))
	require.ErrorIs(t, err, ErrNoSeed)

	_, err = ExtractSeed([]byte("not a png"))
	require.Error(t, err)
}

func TestInference(t *testing.T) {
	file := pngWithComment(t, `{"seed":42}`)

	var received entities.NovelAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.Equal(t, "/ai/generate-image", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(zipped(t, file))
	}))
	defer server.Close()

	client := NewNovelAIClient("secret", WithHost(server.URL))

	request := entities.DefaultNovelAIRequest()
	request.Input = "cat"
	response, err := client.Inference(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, response.Images, 1)
	require.Equal(t, file, response.Images[0])
	require.Equal(t, int64(42), response.Seed)
	require.Equal(t, "cat", received.Input)
	require.Equal(t, entities.ModelV3, received.Model)
}

func TestInferenceStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":400,"message":"prompt too long"}`))
	}))
	defer server.Close()

	client := NewNovelAIClient("secret", WithHost(server.URL))
	_, err := client.Inference(context.Background(), entities.DefaultNovelAIRequest())

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "prompt too long", apiErr.Message)
}

func TestInferenceRejectsInvalidRequest(t *testing.T) {
	client := NewNovelAIClient("secret", WithHost("http://127.0.0.1:0"))

	request := entities.DefaultNovelAIRequest()
	request.Parameters.Width = 10
	_, err := client.Inference(context.Background(), request)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Contains(t, apiErr.Message, "width out of range")
}
