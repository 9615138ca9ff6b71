// Package media validates, normalises and stores user-uploaded images.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
)

// Kind is the role an image plays on a profile.
type Kind string

const (
	KindAvatar     Kind = "avatar"
	KindCoverImage Kind = "cover-image"
)

const (
	DefaultMaxUploadBytes = 10 << 20
	// DefaultMaxPixels bounds the decoded size of an upload.
	DefaultMaxPixels = 40_000_000
)

// Store persists media objects and returns their public URL.
type Store interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
	// Delete removes the object behind url. URLs the store does not own are ignored.
	Delete(ctx context.Context, url string) error
}

type bounds struct {
	width, height int
}

var kindBounds = map[Kind]bounds{
	KindAvatar:     {512, 512},
	KindCoverImage: {1920, 1080},
}

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Uploader turns raw uploads into stored, size-bounded images.
type Uploader struct {
	store     Store
	maxBytes  int64
	maxPixels int
	nowFunc   func() time.Time
}

type UploaderOption func(*Uploader)

func WithMaxBytes(n int64) UploaderOption {
	return func(u *Uploader) {
		if n > 0 {
			u.maxBytes = n
		}
	}
}

func WithMaxPixels(n int) UploaderOption {
	return func(u *Uploader) {
		if n > 0 {
			u.maxPixels = n
		}
	}
}

func WithNowFunc(now func() time.Time) UploaderOption {
	return func(u *Uploader) {
		u.nowFunc = now
	}
}

func NewUploader(store Store, options ...UploaderOption) *Uploader {
	u := &Uploader{
		store:     store,
		maxBytes:  DefaultMaxUploadBytes,
		maxPixels: DefaultMaxPixels,
		nowFunc:   time.Now,
	}
	for _, opt := range options {
		opt(u)
	}
	return u
}

// Upload reads an image from r, scales it down to fit its kind and stores it.
func (u *Uploader) Upload(ctx context.Context, kind Kind, r io.Reader) (string, error) {
	b, ok := kindBounds[kind]
	if !ok {
		return "", apperrors.Wrapf(apperrors.ErrUnsupported, "media kind %s", kind)
	}

	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > u.maxBytes {
		return "", apperrors.ErrMediaTooLarge
	}

	contentType := mimetype.Detect(data).String()
	ext, ok := extensions[contentType]
	if !ok {
		return "", apperrors.Wrapf(apperrors.ErrUnsupportedMedia, "%s", contentType)
	}

	// imaging has no webp decoder; webp is stored as uploaded.
	if contentType != "image/webp" {
		data, contentType, ext, err = u.normalise(data, contentType, b)
		if err != nil {
			return "", err
		}
	}

	key := fmt.Sprintf("%s/%s/%s.%s", kind, u.nowFunc().UTC().Format("2006/01"), uuid.New().String(), ext)
	url, err := u.store.Put(ctx, key, contentType, data)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return url, nil
}

// Delete removes a previously uploaded object. Empty URLs are ignored.
func (u *Uploader) Delete(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	return u.store.Delete(ctx, url)
}

func (u *Uploader) normalise(data []byte, contentType string, b bounds) ([]byte, string, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", "", apperrors.Wrapf(apperrors.ErrUnsupportedMedia, "decode %s: %v", contentType, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > u.maxPixels/cfg.Height {
		return nil, "", "", apperrors.Wrapf(apperrors.ErrMediaTooLarge, "%dx%d pixels", cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", "", apperrors.Wrapf(apperrors.ErrUnsupportedMedia, "decode %s: %v", contentType, err)
	}

	if exceeds(img, b) {
		img = imaging.Fit(img, b.width, b.height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if contentType == "image/png" {
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, "", "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "image/png", "png", nil
	}

	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, "", "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", "jpg", nil
}

func exceeds(img image.Image, b bounds) bool {
	size := img.Bounds().Size()
	return size.X > b.width || size.Y > b.height
}
