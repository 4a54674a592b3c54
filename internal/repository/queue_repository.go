package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"social-executor/internal/models"
)

// QueueRepository is the durable queue of draft and approved posts, kept as a
// single JSON document. Every call is one read-modify-write cycle; the
// single-process deployment is the unit of atomicity.
type QueueRepository interface {
	Load(ctx context.Context) ([]*models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, status string, limit int) ([]*models.Post, error)
	Append(ctx context.Context, post *models.Post) (string, error)
	Approve(ctx context.Context, id string) (bool, error)
	MarkPosted(ctx context.Context, id string, channel models.Channel) (bool, error)
	PickNext(ctx context.Context, channel models.Channel, cooldown time.Duration) (*models.Post, error)
}

type queueDoc struct {
	Posts []*models.Post `json:"posts"`
}

type queueRepository struct {
	store ObjectStore
	key   string
	now   func() time.Time
}

func NewQueueRepository(store ObjectStore, key string) QueueRepository {
	return &queueRepository{store: store, key: key, now: time.Now}
}

func (r *queueRepository) load(ctx context.Context) (*queueDoc, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return &queueDoc{Posts: []*models.Post{}}, nil
		}
		return nil, &models.StorageError{Op: "load", Err: err}
	}
	if len(raw) == 0 {
		return &queueDoc{Posts: []*models.Post{}}, nil
	}

	var doc queueDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &models.StorageError{Op: "decode", Err: err}
	}
	if doc.Posts == nil {
		doc.Posts = []*models.Post{}
	}
	return &doc, nil
}

func (r *queueRepository) save(ctx context.Context, doc *queueDoc) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &models.StorageError{Op: "encode", Err: err}
	}
	if err := r.store.Put(ctx, r.key, raw, "application/json"); err != nil {
		return &models.StorageError{Op: "save", Err: err}
	}
	return nil
}

func (r *queueRepository) Load(ctx context.Context) ([]*models.Post, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Posts, nil
}

func (r *queueRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range doc.Posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *queueRepository) List(ctx context.Context, status string, limit int) ([]*models.Post, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(doc.Posts))
	for _, p := range doc.Posts {
		if status != "" && p.Status != status {
			continue
		}
		posts = append(posts, p)
		if limit > 0 && len(posts) >= limit {
			break
		}
	}
	return posts, nil
}

// Append assigns a fresh id, stamps the post pending, and persists it at the
// end of the document so insertion order stays creation order.
func (r *queueRepository) Append(ctx context.Context, post *models.Post) (string, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return "", err
	}

	nid, err := gonanoid.New()
	if err != nil {
		slog.Error(err.Error())
		return "", fmt.Errorf("generate post id: %w", err)
	}

	post.ID = fmt.Sprintf("draft_%s", nid)
	post.Status = models.PostStatusPending
	post.CreatedAt = r.now().UTC()
	if post.PostedAt == nil {
		post.PostedAt = map[models.Channel]time.Time{}
	}
	if post.History == nil {
		post.History = []models.HistoryEvent{}
	}

	doc.Posts = append(doc.Posts, post)
	if err := r.save(ctx, doc); err != nil {
		return "", err
	}
	return post.ID, nil
}

// Approve is idempotent: re-approving an approved post refreshes approved_at
// and records another history event, same as the first call.
func (r *queueRepository) Approve(ctx context.Context, id string) (bool, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	for _, p := range doc.Posts {
		if p.ID != id {
			continue
		}
		now := r.now().UTC()
		p.Status = models.PostStatusApproved
		p.ApprovedAt = &now
		p.History = append(p.History, models.HistoryEvent{TS: now, Event: "approved"})
		if err := r.save(ctx, doc); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// MarkPosted records a live publish on channel. An unknown id is a no-op
// rather than an error: this runs after the external publish already
// succeeded, so losing the record matters more than surfacing a failure.
func (r *queueRepository) MarkPosted(ctx context.Context, id string, channel models.Channel) (bool, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	for _, p := range doc.Posts {
		if p.ID != id {
			continue
		}
		now := r.now().UTC()
		if p.PostedAt == nil {
			p.PostedAt = map[models.Channel]time.Time{}
		}
		p.PostedAt[channel] = now
		p.History = append(p.History, models.HistoryEvent{TS: now, Event: fmt.Sprintf("posted:%s", channel)})
		if err := r.save(ctx, doc); err != nil {
			return false, err
		}
		return true, nil
	}

	slog.Warn("mark posted: unknown post id", "post_id", id, "channel", string(channel))
	return false, nil
}

// PickNext returns the oldest eligible post for channel, skipping anything
// published on any channel within the cooldown window.
func (r *queueRepository) PickNext(ctx context.Context, channel models.Channel, cooldown time.Duration) (*models.Post, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	var next *models.Post
	for _, p := range doc.Posts {
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
