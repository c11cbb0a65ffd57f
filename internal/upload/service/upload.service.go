package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"seeksy/internal/upload/model"
	"seeksy/pkg/apperr"
	"seeksy/pkg/logger"

	"github.com/google/uuid"
)

// ObjectStore is the bucket storage the uploads land in.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key, contentType string, data []byte) error
	SignedURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}

type UploadService struct {
	Store ObjectStore
	Now   func() time.Time
}

func NewUploadService(store ObjectStore) *UploadService {
	return &UploadService{Store: store, Now: time.Now}
}

// Upload stores data under <userID>/<uuid>-<filename> in an allowed bucket
// and returns a signed download URL for it.
func (s *UploadService) Upload(ctx context.Context, userID, bucket, filename, contentType string, data []byte) (*model.Upload, error) {
	if !model.Buckets[bucket] {
		return nil, fmt.Errorf("%w: unknown bucket %q", apperr.ErrInvalid, bucket)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", apperr.ErrInvalid)
	}
	if len(data) > model.MaxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", apperr.ErrInvalid, model.MaxUploadBytes)
	}

	key := fmt.Sprintf("%s/%s-%s", userID, uuid.NewString(), SafeName(filename))
	if err := s.Store.Upload(ctx, bucket, key, contentType, data); err != nil {
		return nil, fmt.Errorf("upload %s/%s: %w", bucket, key, err)
	}
	signed, err := s.Store.SignedURL(ctx, bucket, key, model.SignedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("sign %s/%s: %w", bucket, key, err)
	}
	logger.Sugar.Infof("Stored %d bytes at %s/%s", len(data), bucket, key)

	return &model.Upload{
		Bucket:      bucket,
		Key:         key,
		Size:        len(data),
		ContentType: contentType,
		SignedURL:   signed,
		ExpiresAt:   s.Now().Add(model.SignedURLTTL),
	}, nil
}

// SafeName reduces a client filename to its base name with only letters,
// digits, dots, dashes and underscores.
func SafeName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	clean := strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		case unicode.IsSpace(r):
			return '_'
		default:
			return -1
		}
	}, base)
	clean = strings.TrimLeft(clean, ".")
	if clean == "" {
		return "file"
	}
	if len(clean) > 120 {
		clean = clean[len(clean)-120:]
	}
	return clean
}
