package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	config "social-executor/configs"
	"social-executor/internal/models"
	"social-executor/internal/repository"
	"social-executor/internal/transfer"
)

// SchedulerService picks and publishes the single post for a twice-daily
// slot. Channel assignment alternates on the day-of-year parity so the slot
// pair always covers both channels across a two-day cycle.
type SchedulerService interface {
	ChannelForSlot(slot models.Slot, day time.Time) models.Channel
	Run(ctx context.Context, slot models.Slot, channelOverride string) (*transfer.SchedulerResult, error)
}

type schedulerService struct {
	cfg       config.Config
	repo      repository.QueueRepository
	publisher PublishService
	locks     *PostLocks
	loc       *time.Location
	now       func() time.Time
}

func NewSchedulerService(cfg config.Config, repo repository.QueueRepository, publisher PublishService, locks *PostLocks, loc *time.Location) SchedulerService {
	return &schedulerService{
		cfg:       cfg,
		repo:      repo,
		publisher: publisher,
		locks:     locks,
		loc:       loc,
		now:       time.Now,
	}
}

// ValidateChannels rejects typos in the channel pins at startup, before the
// alternation quietly falls back to its default.
func ValidateChannels(cfg config.Config) error {
	if _, ok := models.ParseChannel(cfg.OddAMChannel); !ok {
		return fmt.Errorf("SCHEDULER_ODD_AM must be instagram or facebook, got %q", cfg.OddAMChannel)
	}
	if cfg.SlotChannelAM != "" {
		if _, ok := models.ParseChannel(cfg.SlotChannelAM); !ok {
			return fmt.Errorf("SLOT_CHANNEL_AM must be instagram or facebook, got %q", cfg.SlotChannelAM)
		}
	}
	if cfg.SlotChannelPM != "" {
		if _, ok := models.ParseChannel(cfg.SlotChannelPM); !ok {
			return fmt.Errorf("SLOT_CHANNEL_PM must be instagram or facebook, got %q", cfg.SlotChannelPM)
		}
	}
	return nil
}

// ChannelForSlot is pure: same slot and day always yield the same channel.
// Per-slot pins from config take precedence over the alternation.
func (s *schedulerService) ChannelForSlot(slot models.Slot, day time.Time) models.Channel {
	if slot == models.SlotAM {
		if pin, ok := models.ParseChannel(s.cfg.SlotChannelAM); ok {
			return pin
		}
	} else {
		if pin, ok := models.ParseChannel(s.cfg.SlotChannelPM); ok {
			return pin
		}
	}

	oddAM, ok := models.ParseChannel(s.cfg.OddAMChannel)
	if !ok {
		oddAM = models.ChannelInstagram
	}

	am := oddAM
	if day.YearDay()%2 == 0 {
		am = oddAM.Other()
	}
	if slot == models.SlotAM {
		return am
	}
	return am.Other()
}

func (s *schedulerService) Run(ctx context.Context, slot models.Slot, channelOverride string) (*transfer.SchedulerResult, error) {
	var channel models.Channel
	if channelOverride != "" {
		ch, ok := models.ParseChannel(channelOverride)
		if !ok {
			return nil, models.NewValidationError("unknown channel: %s", channelOverride)
		}
		channel = ch
	} else {
		channel = s.ChannelForSlot(slot, s.now().In(s.loc))
	}

	cooldown := time.Duration(s.cfg.CooldownDays) * 24 * time.Hour

	picked, err := s.repo.PickNext(ctx, channel, cooldown)
	if err != nil {
		return nil, err
	}
	if picked == nil {
		slog.Info("scheduler run: nothing eligible", "slot", string(slot), "channel", string(channel))
		return &transfer.SchedulerResult{
			OK:      false,
			Channel: string(channel),
			Reason:  fmt.Sprintf("no approved content for %s", channel),
		}, nil
	}

	// re-check under the per-post lock: a concurrent publish may have won
	unlock := s.locks.Lock(picked.ID)
	defer unlock()

	post, err := s.repo.Get(ctx, picked.ID)
	if err != nil {
		return nil, err
	}
	if post == nil || !models.Eligible(post, channel) {
		return &transfer.SchedulerResult{
			OK:      false,
			Channel: string(channel),
			Reason:  fmt.Sprintf("no approved content for %s", channel),
		}, nil
	}

	results := s.publisher.PublishAll(ctx, post, []models.Channel{channel}, nil)
	cr := results[channel]
	if !cr.OK {
		return &transfer.SchedulerResult{
				OK:      false,
				Channel: string(channel),
				PostID:  post.ID,
				Reason:  cr.Error,
			}, &models.PublishError{
				Channel: channel,
				Err:     fmt.Errorf("%s", cr.Error),
			}
	}

	slog.Info("scheduler published", "slot", string(slot), "channel", string(channel), "post_id", post.ID, "external_id", cr.ExternalID)
	return &transfer.SchedulerResult{
		OK:         true,
		Channel:    string(channel),
		PostID:     post.ID,
		ExternalID: cr.ExternalID,
	}, nil
}
