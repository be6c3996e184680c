package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxFreeImageSize is the largest pixel area NovelAI generates without spending credits.
	MaxFreeImageSize = 1024 * 1024
	// MaxUploadedImageSize is the largest img2img source sent as is.
	MaxUploadedImageSize = 1536 * 1536

	maxDownloadSize = 25 << 20
)

var ErrTooLarge = errors.New("file is too large")

func GetDataFromUrl(ctx context.Context, url string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status downloading %s: %s", url, response.Status)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, maxDownloadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDownloadSize {
		return nil, ErrTooLarge
	}

	log.Printf("Downloaded %s from %s", humanize.Bytes(uint64(len(data))), url)
	return data, nil
}

// ScaleToSize scales width and height to cover about size pixels, keeping the aspect ratio.
func ScaleToSize(width, height, size int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	scale := math.Sqrt(float64(size) / float64(width*height))
	return int(float64(width) * scale), int(float64(height) * scale)
}

// RoundToNearest rounds x to the closest multiple of base.
func RoundToNearest(x, base int) int {
	return base * int(math.Round(float64(x)/float64(base)))
}

// Img2ImgResolution is the generation size used for a source image of width x height.
func Img2ImgResolution(width, height int) (int, int) {
	w, h := ScaleToSize(width, height, MaxFreeImageSize)
	return RoundToNearest(w, 64), RoundToNearest(h, 64)
}

// ShrinkToPNG re-encodes data as a PNG no larger than size pixels.
// Images already within size are returned unchanged.
func ShrinkToPNG(data []byte, size int) ([]byte, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if config.Width*config.Height <= size {
		return data, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	width, height := ScaleToSize(config.Width, config.Height, size)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}

	log.Printf("Resized image from %dx%d to %dx%d (%s)", config.Width, config.Height, width, height, humanize.Bytes(uint64(buf.Len())))
	return buf.Bytes(), nil
}

func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
