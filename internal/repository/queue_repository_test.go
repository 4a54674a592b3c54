package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"social-executor/internal/models"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (m *memStore) Put(_ context.Context, key string, body []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(body))
	copy(stored, body)
	m.objects[key] = stored
	return nil
}

func newTestRepo(now func() time.Time) *queueRepository {
	return &queueRepository{store: newMemStore(), key: "social/approved_posts.json", now: now}
}

func draft(caption string, platforms ...models.Channel) *models.Post {
	if len(platforms) == 0 {
		platforms = []models.Channel{models.ChannelInstagram, models.ChannelFacebook}
	}
	return &models.Post{
		Caption:   caption,
		MediaType: models.MediaTypeText,
		Platforms: platforms,
	}
}

func TestLoadSelfHealsMissingDocument(t *testing.T) {
	repo := newTestRepo(time.Now)

	posts, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load empty store: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected empty queue, got %d posts", len(posts))
	}
}

func TestAppendAssignsFreshIDsAndPendingStatus(t *testing.T) {
	repo := newTestRepo(time.Now)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		id, err := repo.Append(ctx, draft("hello"))
		if err != nil {
			t.Fatalf("append #%d: %v", i+1, err)
		}
		if id == "" {
			t.Fatal("expected a non-empty id")
		}
		if seen[id] {
			t.Fatalf("id %s issued twice", id)
		}
		seen[id] = true

		p, err := repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if p == nil {
			t.Fatalf("post %s not retrievable after append", id)
		}
		if p.Status != models.PostStatusPending {
			t.Fatalf("expected pending status, got %q", p.Status)
		}
		if p.CreatedAt.IsZero() {
			t.Fatal("expected created_at to be stamped")
		}
	}
}

func TestApproveIsIdempotent(t *testing.T) {
	repo := newTestRepo(time.Now)
	ctx := context.Background()

	id, err := repo.Append(ctx, draft("hello"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	for i := 0; i < 2; i++ {
		found, err := repo.Approve(ctx, id)
		if err != nil {
			t.Fatalf("approve #%d: %v", i+1, err)
		}
		if !found {
			t.Fatalf("approve #%d: post not found", i+1)
		}

		p, err := repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if p.Status != models.PostStatusApproved {
			t.Fatalf("approve #%d: expected approved, got %q", i+1, p.Status)
		}
		if p.ApprovedAt == nil {
			t.Fatalf("approve #%d: approved_at not set", i+1)
		}
	}
}

func TestApproveUnknownIDDoesNotMutate(t *testing.T) {
	repo := newTestRepo(time.Now)
	ctx := context.Background()

	id, err := repo.Append(ctx, draft("hello"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	found, err := repo.Approve(ctx, "draft_nope")
	if err != nil {
		t.Fatalf("approve unknown: %v", err)
	}
	if found {
		t.Fatal("expected approve of unknown id to report not found")
	}

	p, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Status != models.PostStatusPending {
		t.Fatalf("queue mutated by failed approve: status %q", p.Status)
	}
}

func TestMarkPostedUnknownIDIsNoOp(t *testing.T) {
	repo := newTestRepo(time.Now)

	found, err := repo.MarkPosted(context.Background(), "draft_nope", models.ChannelFacebook)
	if err != nil {
		t.Fatalf("mark posted unknown: %v", err)
	}
	if found {
		t.Fatal("expected unknown id to be reported")
	}
}

func TestMarkPostedGrowsPostedChannels(t *testing.T) {
	repo := newTestRepo(time.Now)
	ctx := context.Background()

	id, _ := repo.Append(ctx, draft("hello"))
	if _, err := repo.Approve(ctx, id); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := repo.MarkPosted(ctx, id, models.ChannelInstagram); err != nil {
		t.Fatalf("mark posted: %v", err)
	}

	p, _ := repo.Get(ctx, id)
	if !p.PostedOn(models.ChannelInstagram) {
		t.Fatal("expected instagram in posted channels")
	}
	if models.Eligible(p, models.ChannelInstagram) {
		t.Fatal("post must never be eligible again for a posted channel")
	}
	if !models.Eligible(p, models.ChannelFacebook) {
		t.Fatal("facebook should still be eligible")
	}
}

func TestPickNextIsFIFO(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := now
	repo := newTestRepo(func() time.Time { return clock })
	ctx := context.Background()

	firstID, _ := repo.Append(ctx, draft("first"))
	clock = clock.Add(time.Minute)
	secondID, _ := repo.Append(ctx, draft("second"))

	repo.Approve(ctx, secondID)
	repo.Approve(ctx, firstID)

	p, err := repo.PickNext(ctx, models.ChannelFacebook, 3*24*time.Hour)
	if err != nil {
		t.Fatalf("pick next: %v", err)
	}
	if p == nil || p.ID != firstID {
		t.Fatalf("expected oldest post %s, got %+v", firstID, p)
	}
}

func TestPickNextSkipsPendingAndWrongPlatform(t *testing.T) {
	repo := newTestRepo(time.Now)
	ctx := context.Background()

	pendingID, _ := repo.Append(ctx, draft("pending"))
	igOnlyID, _ := repo.Append(ctx, draft("ig only", models.ChannelInstagram))
	repo.Approve(ctx, igOnlyID)

	p, err := repo.PickNext(ctx, models.ChannelFacebook, 0)
	if err != nil {
		t.Fatalf("pick next: %v", err)
	}
	if p != nil {
		t.Fatalf("expected no eligible post, got %s", p.ID)
	}
	_ = pendingID

	p, err = repo.PickNext(ctx, models.ChannelInstagram, 0)
	if err != nil {
		t.Fatalf("pick next instagram: %v", err)
	}
	if p == nil || p.ID != igOnlyID {
		t.Fatalf("expected %s for instagram, got %+v", igOnlyID, p)
	}
}

func TestPickNextHonorsCrossChannelCooldown(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := now
	repo := newTestRepo(func() time.Time { return clock })
	ctx := context.Background()

	id, _ := repo.Append(ctx, draft("hello"))
	repo.Approve(ctx, id)
	repo.MarkPosted(ctx, id, models.ChannelInstagram)

	cooldown := 3 * 24 * time.Hour

	// published on instagram moments ago: facebook is inside the global cooldown
	clock = clock.Add(time.Hour)
	p, err := repo.PickNext(ctx, models.ChannelFacebook, cooldown)
	if err != nil {
		t.Fatalf("pick next: %v", err)
	}
	if p != nil {
		t.Fatalf("expected cooldown to exclude the post, got %s", p.ID)
	}

	// once the window passes the post becomes eligible for the other channel
	clock = now.Add(cooldown + time.Hour)
	p, err = repo.PickNext(ctx, models.ChannelFacebook, cooldown)
	if err != nil {
		t.Fatalf("pick next after cooldown: %v", err)
	}
	if p == nil || p.ID != id {
		t.Fatalf("expected %s after cooldown, got %+v", id, p)
	}

	// but never again for the channel already used
	p, err = repo.PickNext(ctx, models.ChannelInstagram, cooldown)
	if err != nil {
		t.Fatalf("pick next posted channel: %v", err)
	}
	if p != nil {
		t.Fatalf("posted channel must stay excluded, got %s", p.ID)
	}
}
