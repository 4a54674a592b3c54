package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"social-executor/internal/models"
)

// memQueueRepo is an in-memory stand-in for the S3-backed queue.
type memQueueRepo struct {
	mu    sync.Mutex
	posts []*models.Post
	seq   int
	now   func() time.Time
}

func newMemQueueRepo() *memQueueRepo {
	return &memQueueRepo{now: time.Now}
}

func (r *memQueueRepo) Load(context.Context) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Post{}, r.posts...), nil
}

func (r *memQueueRepo) Get(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memQueueRepo) List(_ context.Context, status string, limit int) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, p := range r.posts {
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memQueueRepo) Append(_ context.Context, post *models.Post) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	post.ID = fmt.Sprintf("draft_%d", r.seq)
	post.Status = models.PostStatusPending
	post.CreatedAt = r.now().UTC()
	if post.PostedAt == nil {
		post.PostedAt = map[models.Channel]time.Time{}
	}
	r.posts = append(r.posts, post)
	return post.ID, nil
}

func (r *memQueueRepo) Approve(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID == id {
			now := r.now().UTC()
			p.Status = models.PostStatusApproved
			p.ApprovedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (r *memQueueRepo) MarkPosted(_ context.Context, id string, channel models.Channel) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID == id {
			if p.PostedAt == nil {
				p.PostedAt = map[models.Channel]time.Time{}
			}
			p.PostedAt[channel] = r.now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (r *memQueueRepo) PickNext(_ context.Context, channel models.Channel, cooldown time.Duration) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	var next *models.Post
	for _, p := range r.posts {
		if !models.Eligible(p, channel) {
			continue
		}
		if last, ok := p.LastPostedAt(); ok && now.Sub(last) < cooldown {
			continue
		}
		if next == nil || p.CreatedAt.Before(next.CreatedAt) {
			next = p
		}
	}
	return next, nil
}

// fakeInstagram answers the container flow from a script.
type fakeInstagram struct {
	mu        sync.Mutex
	mediaID   string
	err       error
	published int
}

func (f *fakeInstagram) CreateImageContainer(context.Context, string, string) (string, error) {
	return "container_1", f.err
}

func (f *fakeInstagram) CreateVideoContainer(context.Context, string, string, bool, bool) (string, error) {
	return "container_1", f.err
}

func (f *fakeInstagram) WaitForContainer(context.Context, string) error {
	return f.err
}

func (f *fakeInstagram) PublishContainer(context.Context, string) (string, error) {
	return f.mediaID, f.err
}

func (f *fakeInstagram) PublishPost(context.Context, *models.Post) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.published++
	if f.mediaID != "" {
		return f.mediaID, nil
	}
	return "ig_media_1", nil
}

type fakeFacebook struct {
	mu        sync.Mutex
	postID    string
	err       error
	published int
	scheduled []*time.Time
}

func (f *fakeFacebook) PublishText(ctx context.Context, _ string, scheduledAt *time.Time) (string, error) {
	return f.record(scheduledAt)
}

func (f *fakeFacebook) PublishPhoto(ctx context.Context, _, _ string, scheduledAt *time.Time) (string, error) {
	return f.record(scheduledAt)
}

func (f *fakeFacebook) PublishVideo(ctx context.Context, _, _ string, scheduledAt *time.Time) (string, error) {
	return f.record(scheduledAt)
}

func (f *fakeFacebook) PublishPost(_ context.Context, _ *models.Post, scheduledAt *time.Time) (string, error) {
	return f.record(scheduledAt)
}

func (f *fakeFacebook) record(scheduledAt *time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.published++
	f.scheduled = append(f.scheduled, scheduledAt)
	if f.postID != "" {
		return f.postID, nil
	}
	return "fb_post_1", nil
}
