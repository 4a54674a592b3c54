package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "social-executor/configs"
	"social-executor/internal/models"
)

// InstagramService drives the Graph API container flow: create a media
// container, poll until it is processed, then publish it.
type InstagramService interface {
	CreateImageContainer(ctx context.Context, imageURL, caption string) (string, error)
	CreateVideoContainer(ctx context.Context, videoURL, caption string, reels, shareToFeed bool) (string, error)
	WaitForContainer(ctx context.Context, creationID string) error
	PublishContainer(ctx context.Context, creationID string) (string, error)
	PublishPost(ctx context.Context, post *models.Post) (string, error)
}

type instagramService struct {
	cfg    config.Config
	client *http.Client
}

func NewInstagramService(cfg config.Config) InstagramService {
	return &instagramService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *instagramService) graphURL(path string) string {
	return fmt.Sprintf("%s/%s/%s", s.cfg.GraphBaseURL, s.cfg.MetaAPIVersion, path)
}

func (s *instagramService) CreateImageContainer(ctx context.Context, imageURL, caption string) (string, error) {
	if imageURL == "" {
		return "", errors.New("image url is required for an instagram image container")
	}

	form := url.Values{}
	form.Set("image_url", imageURL)
	form.Set("caption", caption)
	form.Set("access_token", s.cfg.IGAccessToken)

	result, err := postGraphForm(ctx, s.client, s.graphURL(s.cfg.IGUserID+"/media"), form)
	if err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", errors.New("no creation id returned from instagram")
	}

	slog.Info("instagram image container created", "creation_id", result.ID)
	return result.ID, nil
}

func (s *instagramService) CreateVideoContainer(ctx context.Context, videoURL, caption string, reels, shareToFeed bool) (string, error) {
	if videoURL == "" {
		return "", errors.New("video url is required for an instagram video container")
	}

	form := url.Values{}
	form.Set("video_url", videoURL)
	form.Set("caption", caption)
	form.Set("access_token", s.cfg.IGAccessToken)
	if reels {
		form.Set("media_type", "REELS")
		if shareToFeed {
			form.Set("share_to_feed", "true")
		} else {
			form.Set("share_to_feed", "false")
		}
	}

	result, err := postGraphForm(ctx, s.client, s.graphURL(s.cfg.IGUserID+"/media"), form)
	if err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", errors.New("no creation id returned from instagram")
	}

	slog.Info("instagram video container created", "creation_id", result.ID, "reels", reels)
	return result.ID, nil
}

// WaitForContainer polls the container status until FINISHED or the
// configured timeout. Containers expire after roughly a day, so they are
// created just-in-time and published as soon as they are ready.
func (s *instagramService) WaitForContainer(ctx context.Context, creationID string) error {
	params := url.Values{}
	params.Set("fields", "status_code,status")
	params.Set("access_token", s.cfg.IGAccessToken)

	deadline := time.Now().Add(s.cfg.IGPollTimeout)
	for {
		var status struct {
			StatusCode string `json:"status_code"`
			Status     string `json:"status"`
		}
		if err := getGraphJSON(ctx, s.client, s.graphURL(creationID), params, &status); err != nil {
			return err
		}

		code := status.StatusCode
		if code == "" {
			code = status.Status
		}
		switch strings.ToUpper(code) {
		case "FINISHED":
			slog.Info("instagram container ready", "creation_id", creationID)
			return nil
		case "ERROR":
			return fmt.Errorf("instagram container processing failed: %s", creationID)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("instagram container not ready before timeout (%s): %s", s.cfg.IGPollTimeout, creationID)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.IGPollInterval):
		}
	}
}

func (s *instagramService) PublishContainer(ctx context.Context, creationID string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", creationID)
	form.Set("access_token", s.cfg.IGAccessToken)

	result, err := postGraphForm(ctx, s.client, s.graphURL(s.cfg.IGUserID+"/media_publish"), form)
	if err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", errors.New("no media id returned from instagram")
	}

	slog.Info("instagram published", "media_id", result.ID, "creation_id", creationID)
	return result.ID, nil
}

// PublishPost runs the container flow matching the post's media type and
// returns the Instagram media id. Text-only posts are unsupported here.
func (s *instagramService) PublishPost(ctx context.Context, post *models.Post) (string, error) {
	var creationID string
	var err error

	switch post.MediaType {
	case models.MediaTypeImage:
		creationID, err = s.CreateImageContainer(ctx, post.MediaURL, post.Caption)
	case models.MediaTypeVideo:
		creationID, err = s.CreateVideoContainer(ctx, post.MediaURL, post.Caption, false, false)
	case models.MediaTypeReel:
		creationID, err = s.CreateVideoContainer(ctx, post.MediaURL, post.Caption, true, true)
	case models.MediaTypeText:
		return "", errors.New("instagram does not support text-only posts")
	default:
		return "", fmt.Errorf("unsupported media type for instagram: %s", post.MediaType)
	}
	if err != nil {
		return "", err
	}

	if err := s.WaitForContainer(ctx, creationID); err != nil {
		return "", err
	}

	return s.PublishContainer(ctx, creationID)
}
