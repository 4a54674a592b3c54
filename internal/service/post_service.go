package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	config "social-executor/configs"
	"social-executor/internal/models"
	"social-executor/internal/repository"
	"social-executor/internal/transfer"
	"social-executor/pkg/utils"
)

// approval links stay valid for a week
const approvalTokenTTL = 7 * 24 * time.Hour

// PostService implements the draft-creation and approval operations.
type PostService interface {
	CreateDraft(ctx context.Context, dc *transfer.DraftCreation) (string, error)
	ApprovalLink(postID string) (string, error)
	Approve(ctx context.Context, req *transfer.ApproveRequest) (*transfer.ApproveResult, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, status string, limit int) ([]*models.Post, error)
}

type postService struct {
	cfg       config.Config
	repo      repository.QueueRepository
	publisher PublishService
	media     MediaService
	locks     *PostLocks
}

func NewPostService(cfg config.Config, repo repository.QueueRepository, publisher PublishService, media MediaService, locks *PostLocks) PostService {
	return &postService{
		cfg:       cfg,
		repo:      repo,
		publisher: publisher,
		media:     media,
		locks:     locks,
	}
}

// CreateDraft validates the payload into a pending post. Unrecognized media
// types and platforms are rejected outright instead of being defaulted away.
func (s *postService) CreateDraft(ctx context.Context, dc *transfer.DraftCreation) (string, error) {
	caption := strings.TrimSpace(dc.Caption)
	if caption == "" {
		return "", models.NewValidationError("caption is required")
	}

	post := &models.Post{
		Caption:  caption,
		MediaURL: strings.TrimSpace(dc.MediaURL),
		Source:   dc.Source,
		Notes:    dc.Notes,
	}
	if post.Source == "" {
		post.Source = "unknown"
	}

	if dc.MediaType != "" {
		mt, ok := models.ParseMediaType(strings.ToLower(strings.TrimSpace(dc.MediaType)))
		if !ok {
			return "", models.NewValidationError("unknown media_type: %s", dc.MediaType)
		}
		post.MediaType = mt
	}

	if len(dc.Platforms) == 0 {
		post.Platforms = []models.Channel{models.ChannelInstagram, models.ChannelFacebook}
	} else {
		for _, raw := range dc.Platforms {
			ch, ok := models.ParseChannel(strings.ToLower(strings.TrimSpace(raw)))
			if !ok {
				return "", models.NewValidationError("unknown platform: %s", raw)
			}
			post.Platforms = append(post.Platforms, ch)
		}
	}

	if err := s.ingestMedia(ctx, dc, post); err != nil {
		return "", err
	}

	// default the media type from whether media is attached
	if post.MediaType == "" {
		if post.MediaURL != "" {
			post.MediaType = models.MediaTypeImage
		} else {
			post.MediaType = models.MediaTypeText
		}
	}

	id, err := s.repo.Append(ctx, post)
	if err != nil {
		return "", err
	}

	slog.Info("draft created", "post_id", id, "media_type", string(post.MediaType))
	return id, nil
}

// ApprovalLink mints the signed one-click link the owner can follow to
// approve a draft. Empty when no signing secret is configured.
func (s *postService) ApprovalLink(postID string) (string, error) {
	if s.cfg.SecretKey == "" {
		return "", nil
	}

	token, err := utils.GenerateApprovalToken(s.cfg.SecretKey, postID, approvalTokenTTL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/approve?token=%s", strings.TrimRight(s.cfg.ApproveBaseURL, "/"), token), nil
}

// Ingestion priority follows the request: inline media first, then a data
// URL, then whatever media_url the caller supplied.
func (s *postService) ingestMedia(ctx context.Context, dc *transfer.DraftCreation, post *models.Post) error {
	if dc.MediaInline != nil && dc.MediaInline.Content != "" {
		mediaURL, err := s.media.IngestInline(ctx, dc.MediaInline.Mime, dc.MediaInline.Encoding, dc.MediaInline.Content, post.Caption)
		if err != nil {
			return models.NewValidationError("media ingestion failed: %v", err)
		}
		post.MediaURL = mediaURL
		post.MediaType = models.MediaTypeImage
		return nil
	}

	if strings.TrimSpace(dc.MediaDataURL) != "" {
		mediaURL, err := s.media.IngestDataURL(ctx, dc.MediaDataURL, post.Caption)
		if err != nil {
			return models.NewValidationError("media ingestion failed: %v", err)
		}
		post.MediaURL = mediaURL
		post.MediaType = models.MediaTypeImage
	}
	return nil
}

// Approve records the owner's decision and optionally publishes right away.
// The approval itself always sticks once the post is found, regardless of
// how the publish attempts go.
func (s *postService) Approve(ctx context.Context, req *transfer.ApproveRequest) (*transfer.ApproveResult, error) {
	if strings.TrimSpace(req.PostID) == "" {
		return nil, models.NewValidationError("post_id is required")
	}

	var channels []models.Channel
	for _, raw := range req.Channels {
		ch, ok := models.ParseChannel(strings.ToLower(strings.TrimSpace(raw)))
		if !ok {
			return nil, models.NewValidationError("unknown channel: %s", raw)
		}
		channels = append(channels, ch)
	}

	var scheduledAt *time.Time
	if strings.TrimSpace(req.ScheduledAt) != "" {
		ts, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			return nil, models.NewValidationError("invalid scheduled_at, want RFC3339: %v", err)
		}
		if !ts.After(time.Now()) {
			return nil, models.NewValidationError("scheduled_at must be in the future")
		}
		scheduledAt = &ts
	}

	found, err := s.repo.Approve(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrPostNotFound
	}

	result := &transfer.ApproveResult{
		OK:        true,
		PostID:    req.PostID,
		Approved:  true,
		Published: map[string]transfer.ChannelResult{},
	}
	if !req.PublishNow {
		return result, nil
	}

	unlock := s.locks.Lock(req.PostID)
	defer unlock()

	post, err := s.repo.Get(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.ErrPostNotFound
	}

	if len(channels) == 0 {
		channels = post.Platforms
	}

	for ch, cr := range s.publisher.PublishAll(ctx, post, channels, scheduledAt) {
		result.Published[string(ch)] = cr
	}
	return result, nil
}

func (s *postService) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *postService) List(ctx context.Context, status string, limit int) ([]*models.Post, error) {
	return s.repo.List(ctx, status, limit)
}
