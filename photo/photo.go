// Package photo turns picked files and camera frames into the data URIs stored
// on reports.
package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxUploadBytes caps a single picked file
const MaxUploadBytes = 10 << 20

// DefaultMaxPixels caps the declared size of a camera frame before it is decoded
const DefaultMaxPixels = 40_000_000

var (
	ErrNotDataURI    = errors.New("photo must be a base64 data URI")
	ErrNotImage      = errors.New("file is not an image")
	ErrTooLarge      = errors.New("photo exceeds the upload limit")
	ErrFrameTooLarge = errors.New("frame dimensions exceed the pixel limit")
)

// ParseDataURI splits a "data:<mime>;base64,<payload>" URI
func ParseDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, ErrNotDataURI
	}
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return "", nil, ErrNotDataURI
	}
	meta := uri[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, ErrNotDataURI
	}
	mime := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrNotDataURI, err)
	}
	return mime, data, nil
}

// EncodeDataURI builds a base64 data URI
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsImageDataURI reports whether uri is a well-formed image data URI
func IsImageDataURI(uri string) bool {
	mime, data, err := ParseDataURI(uri)
	return err == nil && strings.HasPrefix(mime, "image/") && len(data) > 0
}

// FromUpload reads a picked file as-is into a data URI, like a browser file reader.
func FromUpload(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return "", ErrTooLarge
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", ErrNotImage
	}
	return EncodeDataURI(mime, data), nil
}

// Encoder draws a single camera frame onto an off-screen raster and encodes it
// as JPEG at a fixed quality.
type Encoder struct {
	MaxDimension int
	Quality      int
	MaxPixels    int
}

// NewEncoder creates a frame encoder with the default pixel cap
func NewEncoder(maxDimension, quality int) *Encoder {
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &Encoder{MaxDimension: maxDimension, Quality: quality, MaxPixels: DefaultMaxPixels}
}

// CaptureFrame encodes one frame given as a data URI
func (e *Encoder) CaptureFrame(frameURI string) (string, error) {
	_, data, err := ParseDataURI(frameURI)
	if err != nil {
		return "", err
	}
	encoded, err := e.Encode(data)
	if err != nil {
		return "", err
	}
	return EncodeDataURI("image/jpeg", encoded), nil
}

// Encode decodes data, applies EXIF orientation, scales it to fit MaxDimension
// and re-encodes it as JPEG.
func (e *Encoder) Encode(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if e.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(e.MaxPixels) {
		log.Warnf("[photo] frame rejected: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, e.MaxPixels)
		return nil, ErrFrameTooLarge
	}

	orientation := Orientation(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if orientation != 1 {
		img = Orient(img, orientation)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	nw, nh := fit(w, h, e.MaxDimension)

	canvas := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: e.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	log.Infof("[photo] frame encoded: %d bytes -> %d bytes (%dx%d -> %dx%d, quality %d, orientation %d)",
		len(data), buf.Len(), w, h, nw, nh, e.Quality, orientation)
	return buf.Bytes(), nil
}

// fit scales w x h down to fit limit while keeping the aspect ratio; limit <= 0 keeps the size
func fit(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		nh := h * limit / w
		if nh < 1 {
			nh = 1
		}
		return limit, nh
	}
	nw := w * limit / h
	if nw < 1 {
		nw = 1
	}
	return nw, limit
}

// Orientation reads the EXIF orientation tag; 1 when absent
func Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// Orient returns img transformed so that EXIF orientation o displays upright
func Orient(img image.Image, o int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	transposed := o >= 5

	dw, dh := w, h
	if transposed {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch o {
			case 2:
				dx, dy = w-1-x, y
			case 3:
				dx, dy = w-1-x, h-1-y
			case 4:
				dx, dy = x, h-1-y
			case 5:
				dx, dy = y, x
			case 6:
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8:
				dx, dy = y, w-1-x
			default:
				dx, dy = x, y
			}
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
