package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"social-executor/internal/models"
	"social-executor/internal/repository"
	"social-executor/internal/transfer"
)

// PublishService dispatches a post to its target channels and records the
// outcome back into the queue. Channel failures are isolated: one channel's
// error never aborts the other's attempt.
type PublishService interface {
	Publish(ctx context.Context, post *models.Post, channel models.Channel, scheduledAt *time.Time) (string, error)
	PublishAll(ctx context.Context, post *models.Post, channels []models.Channel, scheduledAt *time.Time) map[models.Channel]transfer.ChannelResult
}

type publishService struct {
	ig   InstagramService
	fb   FacebookService
	repo repository.QueueRepository
}

func NewPublishService(ig InstagramService, fb FacebookService, repo repository.QueueRepository) PublishService {
	return &publishService{ig: ig, fb: fb, repo: repo}
}

// Publish pushes one post to one channel and returns the platform-assigned
// id. It does not touch the queue; PublishAll owns the mark-posted write.
func (s *publishService) Publish(ctx context.Context, post *models.Post, channel models.Channel, scheduledAt *time.Time) (string, error) {
	switch channel {
	case models.ChannelFacebook:
		return s.fb.PublishPost(ctx, post, scheduledAt)
	case models.ChannelInstagram:
		if scheduledAt != nil {
			return "", errors.New("instagram does not support deferred publishing")
		}
		return s.ig.PublishPost(ctx, post)
	}
	return "", fmt.Errorf("unknown channel: %s", channel)
}

// PublishAll attempts every requested channel independently. A post may only
// go to channels it is declared for and has not already used. A deferred
// publish (future scheduledAt) is not marked posted: it has not gone live
// yet, and recording it would wrongly block the post from later runs.
func (s *publishService) PublishAll(ctx context.Context, post *models.Post, channels []models.Channel, scheduledAt *time.Time) map[models.Channel]transfer.ChannelResult {
	results := make(map[models.Channel]transfer.ChannelResult, len(channels))

	for _, channel := range channels {
		if !post.HasPlatform(channel) {
			results[channel] = transfer.ChannelResult{Error: fmt.Sprintf("post is not enabled for %s", channel)}
			continue
		}
		if post.PostedOn(channel) {
			results[channel] = transfer.ChannelResult{Error: fmt.Sprintf("post was already published on %s", channel)}
			continue
		}

		externalID, err := s.Publish(ctx, post, channel, scheduledAt)
		if err != nil {
			perr := &models.PublishError{Channel: channel, Err: err}
			slog.Error(perr.Error(), "post_id", post.ID)
			results[channel] = transfer.ChannelResult{Error: err.Error()}
			continue
		}

		if scheduledAt == nil {
			if _, err := s.repo.MarkPosted(ctx, post.ID, channel); err != nil {
				slog.Error("failed to record publish outcome", "post_id", post.ID, "channel", string(channel), "err", err)
			}
		}
		results[channel] = transfer.ChannelResult{OK: true, ExternalID: externalID}
	}

	return results
}
