package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	config "social-executor/configs"
	"social-executor/internal/models"
)

// FacebookService posts to the Page feed, photos and videos edges. A future
// scheduledAt defers publication server-side (published=false), so the caller
// must not mark the post as live.
type FacebookService interface {
	PublishText(ctx context.Context, message string, scheduledAt *time.Time) (string, error)
	PublishPhoto(ctx context.Context, imageURL, caption string, scheduledAt *time.Time) (string, error)
	PublishVideo(ctx context.Context, videoURL, description string, scheduledAt *time.Time) (string, error)
	PublishPost(ctx context.Context, post *models.Post, scheduledAt *time.Time) (string, error)
}

type facebookService struct {
	cfg    config.Config
	client *http.Client
}

func NewFacebookService(cfg config.Config) FacebookService {
	return &facebookService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *facebookService) graphURL(edge string) string {
	return fmt.Sprintf("%s/%s/%s/%s", s.cfg.GraphBaseURL, s.cfg.MetaAPIVersion, s.cfg.FBPageID, edge)
}

func applySchedule(form url.Values, scheduledAt *time.Time) {
	if scheduledAt != nil {
		form.Set("published", "false")
		form.Set("scheduled_publish_time", strconv.FormatInt(scheduledAt.Unix(), 10))
	}
}

func (s *facebookService) PublishText(ctx context.Context, message string, scheduledAt *time.Time) (string, error) {
	if message == "" {
		return "", errors.New("message is required for a facebook text post")
	}

	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", s.cfg.FBPageAccessToken)
	applySchedule(form, scheduledAt)

	result, err := postGraphForm(ctx, s.client, s.graphURL("feed"), form)
	if err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", errors.New("no post id returned from facebook")
	}

	slog.Info("facebook text post created", "post_id", result.ID, "scheduled", scheduledAt != nil)
	return result.ID, nil
}

func (s *facebookService) PublishPhoto(ctx context.Context, imageURL, caption string, scheduledAt *time.Time) (string, error) {
	if imageURL == "" {
		return "", errors.New("image url is required for a facebook photo post")
	}

	form := url.Values{}
	form.Set("url", imageURL)
	form.Set("access_token", s.cfg.FBPageAccessToken)
	if caption != "" {
		form.Set("caption", caption)
	}
	applySchedule(form, scheduledAt)

	result, err := postGraphForm(ctx, s.client, s.graphURL("photos"), form)
	if err != nil {
		return "", err
	}

	// the photos edge reports the feed post id separately
	postID := result.PostID
	if postID == "" {
		postID = result.ID
	}
	if postID == "" {
		return "", errors.New("no post id returned from facebook")
	}

	slog.Info("facebook photo post created", "post_id", postID, "scheduled", scheduledAt != nil)
	return postID, nil
}

func (s *facebookService) PublishVideo(ctx context.Context, videoURL, description string, scheduledAt *time.Time) (string, error) {
	if videoURL == "" {
		return "", errors.New("video url is required for a facebook video post")
	}

	form := url.Values{}
	form.Set("file_url", videoURL)
	form.Set("access_token", s.cfg.FBPageAccessToken)
	if description != "" {
		form.Set("description", description)
	}
	applySchedule(form, scheduledAt)

	result, err := postGraphForm(ctx, s.client, s.graphURL("videos"), form)
	if err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", errors.New("no video id returned from facebook")
	}

	slog.Info("facebook video post created", "video_id", result.ID, "scheduled", scheduledAt != nil)
	return result.ID, nil
}

func (s *facebookService) PublishPost(ctx context.Context, post *models.Post, scheduledAt *time.Time) (string, error) {
	switch post.MediaType {
	case models.MediaTypeText:
		return s.PublishText(ctx, post.Caption, scheduledAt)
	case models.MediaTypeImage:
		return s.PublishPhoto(ctx, post.MediaURL, post.Caption, scheduledAt)
	case models.MediaTypeVideo, models.MediaTypeReel:
		return s.PublishVideo(ctx, post.MediaURL, post.Caption, scheduledAt)
	}
	return "", fmt.Errorf("unsupported media type for facebook: %s", post.MediaType)
}
