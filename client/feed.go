package client

import (
	"context"
	"sort"
	"sync"

	"github.com/bigjohnmusic/bigjohn-api/models"
)

// NewsFeed holds the landing page's post list. A failed refresh keeps
// whatever was on screen; visitors see stale posts, not a blank page.
type NewsFeed struct {
	client *Client

	mu      sync.Mutex
	posts   []models.NewsPost
	lastErr error
}

// NewNewsFeed builds the feed and re-fetches on every auth change.
func NewNewsFeed(c *Client, auth *AuthState) *NewsFeed {
	f := &NewsFeed{client: c}
	if auth != nil {
		auth.OnChange(func() { f.Refresh(context.Background()) })
	}
	return f
}

// Refresh re-fetches the post list. On failure the previous list is
// retained and the error recorded.
func (f *NewsFeed) Refresh(ctx context.Context) error {
	posts, err := f.client.FetchNews(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastErr = err
	if err != nil {
		return err
	}
	f.posts = posts
	return nil
}

// Posts returns the current list.
func (f *NewsFeed) Posts() []models.NewsPost {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.NewsPost(nil), f.posts...)
}

// Top returns the n newest posts by uploadDate.
func (f *NewsFeed) Top(n int) []models.NewsPost {
	posts := f.Posts()
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].UploadDate.After(posts[j].UploadDate)
	})
	if len(posts) > n {
		posts = posts[:n]
	}
	return posts
}

// LastError reports the most recent refresh failure, nil after a
// successful refresh.
func (f *NewsFeed) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// VipFeed mirrors NewsFeed for the subscriber-only area. Anonymous
// refreshes fail with 401 and simply leave the feed empty.
type VipFeed struct {
	client *Client

	mu      sync.Mutex
	entries []models.VipContent
	lastErr error
}

// NewVipFeed builds the feed and re-fetches on every auth change.
func NewVipFeed(c *Client, auth *AuthState) *VipFeed {
	f := &VipFeed{client: c}
	if auth != nil {
		auth.OnChange(func() { f.Refresh(context.Background()) })
	}
	return f
}

// Refresh re-fetches the VIP entries, keeping prior state on failure.
func (f *VipFeed) Refresh(ctx context.Context) error {
	entries, err := f.client.FetchVip(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastErr = err
	if err != nil {
		return err
	}
	f.entries = entries
	return nil
}

// Entries returns the current list.
func (f *VipFeed) Entries() []models.VipContent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.VipContent(nil), f.entries...)
}

// LastError reports the most recent refresh failure.
func (f *VipFeed) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}
