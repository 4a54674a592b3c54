package job

import (
	"context"
	"log/slog"

	"social-executor/internal/models"
	"social-executor/internal/service"
)

// SchedulerJob adapts the scheduler service to cron, for deployments that
// want the twice-daily trigger in-process instead of an external timer
// hitting /scheduler/run.
type SchedulerJob struct {
	s service.SchedulerService
}

func NewSchedulerJob(s service.SchedulerService) *SchedulerJob {
	return &SchedulerJob{s: s}
}

func (j *SchedulerJob) RunAM() {
	j.run(models.SlotAM)
}

func (j *SchedulerJob) RunPM() {
	j.run(models.SlotPM)
}

func (j *SchedulerJob) run(slot models.Slot) {
	ctx := context.Background()

	result, err := j.s.Run(ctx, slot, "")
	if err != nil {
		slog.Error("scheduled run failed", "slot", string(slot), "err", err)
		return
	}
	if !result.OK {
		slog.Info("scheduled run: nothing published", "slot", string(slot), "reason", result.Reason)
		return
	}
	slog.Info("scheduled run published", "slot", string(slot), "channel", result.Channel, "post_id", result.PostID)
}
