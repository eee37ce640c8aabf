package photo

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestParseDataURIRoundTrip(t *testing.T) {
	uri := EncodeDataURI("image/png", []byte{1, 2, 3})
	mime, data, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestParseDataURIRejectsPlainURL(t *testing.T) {
	for _, in := range []string{"https://cdn/x.jpg", "data:image/png,raw", "data:image/png;base64", "data:image/png;base64,@@@"} {
		_, _, err := ParseDataURI(in)
		assert.ErrorIs(t, err, ErrNotDataURI, in)
	}
}

func TestFromUpload(t *testing.T) {
	uri, err := FromUpload(bytes.NewReader(createTestPNG(t, 4, 4)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	assert.True(t, IsImageDataURI(uri))

	_, err = FromUpload(strings.NewReader("hello, not an image"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestCaptureFrameScalesAndEncodesJPEG(t *testing.T) {
	frame := EncodeDataURI("image/png", createTestPNG(t, 400, 200))

	out, err := NewEncoder(100, 70).CaptureFrame(frame)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))

	_, data, err := ParseDataURI(out)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestCaptureFrameKeepsSmallFrames(t *testing.T) {
	frame := EncodeDataURI("image/png", createTestPNG(t, 40, 30))
	out, err := NewEncoder(100, 80).CaptureFrame(frame)
	require.NoError(t, err)
	_, data, err := ParseDataURI(out)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
}

func TestOrientRotates90(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})

	out := Orient(src, 6)
	assert.Equal(t, 2, out.Bounds().Dx())
	assert.Equal(t, 3, out.Bounds().Dy())
	// Top-left pixel moves to the top-right corner on a clockwise turn.
	r, _, _, _ := out.At(1, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestOrientationDefaultsToOne(t *testing.T) {
	assert.Equal(t, 1, Orientation(createTestPNG(t, 2, 2)))
}

func TestFit(t *testing.T) {
	w, h := fit(2000, 1000, 500)
	assert.Equal(t, 500, w)
	assert.Equal(t, 250, h)

	w, h = fit(1000, 2000, 500)
	assert.Equal(t, 250, w)
	assert.Equal(t, 500, h)

	w, h = fit(10, 10, 0)
	assert.Equal(t, 10, w)
	assert.Equal(t, 10, h)
}

// pngWithDeclaredSize returns a 1x1 PNG whose header claims w x h pixels
func pngWithDeclaredSize(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := createTestPNG(t, 1, 1)
	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc over type+data
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestCaptureFrameRejectsOversizedDeclaredFrame(t *testing.T) {
	frame := EncodeDataURI("image/png", pngWithDeclaredSize(t, 8000, 8000))

	_, err := NewEncoder(100, 70).CaptureFrame(frame)
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	e := NewEncoder(100, 70)
	e.MaxPixels = 100
	_, err = e.CaptureFrame(EncodeDataURI("image/png", createTestPNG(t, 20, 20)))
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	_, err = e.CaptureFrame(EncodeDataURI("image/png", createTestPNG(t, 10, 10)))
	assert.NoError(t, err)
}
