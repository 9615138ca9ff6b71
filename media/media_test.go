package media_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
	"github.com/jrsteele09/videotube-server/media"
	"github.com/jrsteele09/videotube-server/media/storefake"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), nil))
	return buf.Bytes()
}

func TestUploadScalesAvatarDown(t *testing.T) {
	store := storefake.NewFakeStore()
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	u := media.NewUploader(store, media.WithNowFunc(func() time.Time { return now }))

	url, err := u.Upload(context.Background(), media.KindAvatar, bytes.NewReader(pngBytes(t, 1024, 300)))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, storefake.BaseURL+"avatar/2024/03/"), url)
	require.True(t, strings.HasSuffix(url, ".png"), url)

	obj, ok := store.Get(url)
	require.True(t, ok)
	require.Equal(t, "image/png", obj.ContentType)

	cfg, err := png.DecodeConfig(bytes.NewReader(obj.Body))
	require.NoError(t, err)
	require.Equal(t, 512, cfg.Width)
	require.Equal(t, 150, cfg.Height)
}

func TestUploadKeepsSmallJPEGSize(t *testing.T) {
	store := storefake.NewFakeStore()
	u := media.NewUploader(store)

	url, err := u.Upload(context.Background(), media.KindCoverImage, bytes.NewReader(jpegBytes(t, 640, 360)))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(url, ".jpg"), url)

	obj, ok := store.Get(url)
	require.True(t, ok)
	require.Equal(t, "image/jpeg", obj.ContentType)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(obj.Body))
	require.NoError(t, err)
	require.Equal(t, 640, cfg.Width)
	require.Equal(t, 360, cfg.Height)
}

func TestUploadRejectsNonImages(t *testing.T) {
	u := media.NewUploader(storefake.NewFakeStore())

	_, err := u.Upload(context.Background(), media.KindAvatar, strings.NewReader("just some text, not a picture"))
	require.ErrorIs(t, err, apperrors.ErrUnsupportedMedia)
}

func TestUploadRejectsOversizedFiles(t *testing.T) {
	u := media.NewUploader(storefake.NewFakeStore(), media.WithMaxBytes(64))

	_, err := u.Upload(context.Background(), media.KindAvatar, bytes.NewReader(pngBytes(t, 32, 32)))
	require.ErrorIs(t, err, apperrors.ErrMediaTooLarge)
}

func TestUploadRejectsTooManyPixels(t *testing.T) {
	u := media.NewUploader(storefake.NewFakeStore(), media.WithMaxPixels(100*100))

	_, err := u.Upload(context.Background(), media.KindAvatar, bytes.NewReader(pngBytes(t, 200, 60)))
	require.ErrorIs(t, err, apperrors.ErrMediaTooLarge)

	_, err = u.Upload(context.Background(), media.KindAvatar, bytes.NewReader(pngBytes(t, 100, 100)))
	require.NoError(t, err)
}

// pngHeaderClaiming returns a valid 1x1 PNG whose header declares w x h.
func pngHeaderClaiming(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := pngBytes(t, 1, 1)
	// Signature (8), IHDR length (4), "IHDR" (4), width, height ... then CRC over type and data.
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestUploadRejectsDecompressionBombs(t *testing.T) {
	store := storefake.NewFakeStore()
	u := media.NewUploader(store)

	_, err := u.Upload(context.Background(), media.KindAvatar, bytes.NewReader(pngHeaderClaiming(t, 100_000, 100_000)))
	require.ErrorIs(t, err, apperrors.ErrMediaTooLarge)
	require.Zero(t, store.Len())
}

func TestUploadStoreFailure(t *testing.T) {
	store := storefake.NewFakeStore()
	store.FailPut = true
	u := media.NewUploader(store)

	_, err := u.Upload(context.Background(), media.KindAvatar, bytes.NewReader(pngBytes(t, 16, 16)))
	require.ErrorContains(t, err, "store unavailable")
}

func TestDelete(t *testing.T) {
	store := storefake.NewFakeStore()
	u := media.NewUploader(store)

	url, err := u.Upload(context.Background(), media.KindAvatar, bytes.NewReader(pngBytes(t, 16, 16)))
	require.NoError(t, err)

	require.NoError(t, u.Delete(context.Background(), ""))
	require.Empty(t, store.Deleted())

	require.NoError(t, u.Delete(context.Background(), url))
	require.Equal(t, []string{url}, store.Deleted())
	require.Zero(t, store.Len())
}
