package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	config "social-executor/configs"
	"social-executor/internal/repository"
)

// MediaService stores caller-supplied media bytes in the media bucket and
// returns the public URL a draft can carry. Two inbound shapes are accepted:
// raw inline content (utf8 or base64) and RFC 2397 data URLs.
type MediaService interface {
	IngestInline(ctx context.Context, mime, encoding, content, captionHint string) (string, error)
	IngestDataURL(ctx context.Context, dataURL, captionHint string) (string, error)
}

type mediaService struct {
	cfg   config.Config
	store repository.ObjectStore
}

func NewMediaService(cfg config.Config, store repository.ObjectStore) MediaService {
	return &mediaService{cfg: cfg, store: store}
}

func (s *mediaService) IngestInline(ctx context.Context, mime, encoding, content, captionHint string) (string, error) {
	if mime == "" {
		mime = "image/svg+xml"
	}

	var raw []byte
	switch strings.ToLower(encoding) {
	case "", "utf8", "utf-8":
		raw = []byte(content)
	case "base64":
		decoded, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return "", fmt.Errorf("invalid base64 media content: %w", err)
		}
		raw = decoded
	default:
		return "", fmt.Errorf("unsupported media encoding: %s", encoding)
	}

	return s.put(ctx, raw, mime, captionHint)
}

func (s *mediaService) IngestDataURL(ctx context.Context, dataURL, captionHint string) (string, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", errors.New("not a data url")
	}

	meta, payload, ok := strings.Cut(dataURL[len("data:"):], ",")
	if !ok {
		return "", errors.New("malformed data url")
	}

	mime := strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = "application/octet-stream"
	}

	var raw []byte
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", fmt.Errorf("invalid base64 data url: %w", err)
		}
		raw = decoded
	} else {
		raw = []byte(payload)
	}

	// prefer the sniffed type over the declared one when the bytes say more
	if kind, err := filetype.Match(raw); err == nil && kind != filetype.Unknown {
		mime = kind.MIME.Value
	}

	return s.put(ctx, raw, mime, captionHint)
}

func (s *mediaService) put(ctx context.Context, raw []byte, mime, captionHint string) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("empty media content")
	}
	if s.cfg.S3.MediaBucket == "" || s.cfg.S3.MediaPublicBaseURL == "" {
		return "", errors.New("media storage is not configured")
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("media/%s%s.%s", slugHint(captionHint), id, extForMime(mime))
	if err := s.store.Put(ctx, key, raw, mime); err != nil {
		return "", err
	}

	slog.Info("media ingested", "key", key, "mime", mime, "bytes", len(raw))
	return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.S3.MediaPublicBaseURL, "/"), key), nil
}

func extForMime(mime string) string {
	if kind := filetype.GetType(strings.TrimPrefix(mime, "image/")); kind != filetype.Unknown {
		return kind.Extension
	}
	switch mime {
	case "image/svg+xml":
		return "svg"
	case "image/jpeg":
		return "jpg"
	}
	if _, sub, ok := strings.Cut(mime, "/"); ok && sub != "" {
		return sub
	}
	return "bin"
}

// slugHint turns the caption into a short readable key prefix.
func slugHint(hint string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(hint) {
		if b.Len() >= 32 {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return ""
	}
	return slug + "-"
}
