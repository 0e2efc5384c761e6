// Package client is the site front end's data layer: a typed API
// client plus the small pieces of view state (feeds, editor, route
// guards) that sit on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bigjohnmusic/bigjohn-api/models"
)

// TokenSource supplies the current bearer token. An empty token means
// the visitor is anonymous and requests go out without an
// Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for a fixed token, mainly for tests.
type StaticToken string

func (s StaticToken) Token(ctx context.Context) (string, error) { return string(s), nil }

// APIError is a non-2xx response decoded into the server's error shape.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// AuthState tracks login status changes. Feeds subscribe so that a
// login or logout triggers an immediate re-fetch.
type AuthState struct {
	mu        sync.Mutex
	listeners []func()
}

// OnChange registers a callback invoked on every auth transition.
func (a *AuthState) OnChange(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// NotifyChanged fans the transition out to every subscriber.
func (a *AuthState) NotifyChanged() {
	a.mu.Lock()
	fns := append([]func(){}, a.listeners...)
	a.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Client talks to the promotion site API.
type Client struct {
	http   *resty.Client
	tokens TokenSource
}

// New builds a Client against baseURL. tokens may be nil for a client
// that only ever reads public routes.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		http:   resty.New().SetBaseURL(baseURL).SetTimeout(15 * time.Second),
		tokens: tokens,
	}
}

// request builds a resty request with the bearer token attached when
// one is available.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	r := c.http.R().SetContext(ctx)
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve token: %w", err)
		}
		if token != "" {
			r.SetAuthToken(token)
		}
	}
	return r, nil
}

func decode(resp *resty.Response, err error, out interface{}) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(resp.Body(), &body)
		if body.Message == "" {
			body.Message = resp.Status()
		}
		return &APIError{Status: resp.StatusCode(), Message: body.Message}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(resp.Body(), out)
}

// FetchNews returns every news post.
func (c *Client) FetchNews(ctx context.Context) ([]models.NewsPost, error) {
	r, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var posts []models.NewsPost
	resp, err := r.Get("/api/news")
	if err := decode(resp, err, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// NewsDraft is the create/replace payload for a post.
type NewsDraft struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Link     string `json:"link"`
	ImageURL string `json:"imageUrl"`
}

// CreateNews publishes a new post.
func (c *Client) CreateNews(ctx context.Context, draft NewsDraft) (*models.NewsPost, error) {
	r, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var post models.NewsPost
	resp, err := r.SetBody(draft).Post("/api/news")
	if err := decode(resp, err, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// ReplaceNews fully replaces an existing post.
func (c *Client) ReplaceNews(ctx context.Context, id uint, draft NewsDraft) (*models.NewsPost, error) {
	r, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var post models.NewsPost
	resp, err := r.SetBody(draft).Put(fmt.Sprintf("/api/news/%d", id))
	if err := decode(resp, err, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeleteNews removes a post.
func (c *Client) DeleteNews(ctx context.Context, id uint) error {
	r, err := c.request(ctx)
	if err != nil {
		return err
	}
	resp, err := r.Delete(fmt.Sprintf("/api/news/%d", id))
	return decode(resp, err, nil)
}

// FetchSpotify returns the embeds column (at most five, newest first).
func (c *Client) FetchSpotify(ctx context.Context) ([]models.SpotifyEmbed, error) {
	r, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var embeds []models.SpotifyEmbed
	resp, err := r.Get("/api/spotify")
	if err := decode(resp, err, &embeds); err != nil {
		return nil, err
	}
	return embeds, nil
}

// CreateSpotify adds a new embed.
func (c *Client) CreateSpotify(ctx context.Context, embedURL string) (*models.SpotifyEmbed, error) {
	r, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var embed models.SpotifyEmbed
	resp, err := r.SetBody(map[string]string{"embedUrl": embedURL}).Post("/api/spotify")
	if err := decode(resp, err, &embed); err != nil {
		return nil, err
	}
	return &embed, nil
}

// DeleteSpotify removes an embed.
func (c *Client) DeleteSpotify(ctx context.Context, id uint) error {
	r, err := c.request(ctx)
	if err != nil {
		return err
	}
	resp, err := r.Delete(fmt.Sprintf("/api/spotify/%d", id))
	return decode(resp, err, nil)
}

// FetchVip returns the subscriber-only entries. Requires a token.
func (c *Client) FetchVip(ctx context.Context) ([]models.VipContent, error) {
	r, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var entries []models.VipContent
	resp, err := r.Get("/api/vip")
	if err := decode(resp, err, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// VipDraft carries the multipart fields for a new VIP entry. File
// slots left nil are omitted from the form.
type VipDraft struct {
	Title       string
	Description string
	Image       *FileUpload
	Video       *FileUpload
	Audio       *FileUpload
}

// FileUpload is one in-memory file destined for a multipart field.
type FileUpload struct {
	Name    string
	Content []byte
}

// CreateVip publishes a VIP entry with its media files.
func (c *Client) CreateVip(ctx context.Context, draft VipDraft) (*models.VipContent, error) {
	r, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	r.SetFormData(map[string]string{
		"title":       draft.Title,
		"description": draft.Description,
	})
	for field, f := range map[string]*FileUpload{
		"image": draft.Image,
		"video": draft.Video,
		"audio": draft.Audio,
	} {
		if f != nil {
			r.SetFileReader(field, f.Name, bytes.NewReader(f.Content))
		}
	}
	var entry models.VipContent
	resp, err := r.Post("/api/vip")
	if err := decode(resp, err, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteVip removes a VIP entry.
func (c *Client) DeleteVip(ctx context.Context, id uint) error {
	r, err := c.request(ctx)
	if err != nil {
		return err
	}
	resp, err := r.Delete(fmt.Sprintf("/api/vip/%d", id))
	return decode(resp, err, nil)
}

// UploadImage pushes a standalone image and returns its public URL.
func (c *Client) UploadImage(ctx context.Context, f FileUpload) (string, error) {
	r, err := c.request(ctx)
	if err != nil {
		return "", err
	}
	var body struct {
		ImageURL string `json:"imageUrl"`
	}
	resp, err := r.SetFileReader("image", f.Name, bytes.NewReader(f.Content)).Post("/api/upload")
	if err := decode(resp, err, &body); err != nil {
		return "", err
	}
	return body.ImageURL, nil
}

// TrackDailyUser reports the logged-in user as active today.
func (c *Client) TrackDailyUser(ctx context.Context, userID string) error {
	r, err := c.request(ctx)
	if err != nil {
		return err
	}
	resp, err := r.SetBody(map[string]string{"userId": userID}).Post("/api/dau/track")
	return decode(resp, err, nil)
}

// DayCount is one day of the activity chart.
type DayCount struct {
	Date  string `json:"date"`
	Users int    `json:"users"`
}

// FetchDailyUsers returns the last 30 days of activity, oldest first.
func (c *Client) FetchDailyUsers(ctx context.Context) ([]DayCount, error) {
	r, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var days []DayCount
	resp, err := r.Get("/api/dau")
	if err := decode(resp, err, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// FetchUserEmails returns every registered user's email address.
func (c *Client) FetchUserEmails(ctx context.Context) ([]string, error) {
	r, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var emails []string
	resp, err := r.Get("/api/users")
	if err := decode(resp, err, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// UnlockEditor checks the shared editor password. Returns true when
// the gate accepts it.
func (c *Client) UnlockEditor(ctx context.Context, password string) (bool, error) {
	r, err := c.request(ctx)
	if err != nil {
		return false, err
	}
	resp, err := r.SetBody(map[string]string{"password": password}).Post("/api/auth/editor")
	if err != nil {
		return false, err
	}
	if resp.StatusCode() == 401 {
		return false, nil
	}
	if err := decode(resp, nil, nil); err != nil {
		return false, err
	}
	return true, nil
}
