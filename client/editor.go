package client

import (
	"context"
	"fmt"

	"github.com/bigjohnmusic/bigjohn-api/models"
	"github.com/bigjohnmusic/bigjohn-api/richtext"
)

// Editor is the post composition workflow: a draft with a rich-text
// document and an optional pending header image that only uploads
// when the draft is saved.
type Editor struct {
	client *Client
	feed   *NewsFeed

	postID       uint // 0 means composing a new post
	Title        string
	Link         string
	Document     richtext.Document
	imageURL     string
	pendingImage *FileUpload
}

// NewEditor builds an editor bound to the feed it must refresh after
// every mutation.
func NewEditor(c *Client, feed *NewsFeed) *Editor {
	return &Editor{client: c, feed: feed, Document: richtext.New("")}
}

// LoadPost populates the draft from an existing post for editing.
func (e *Editor) LoadPost(post models.NewsPost) error {
	doc, err := richtext.Deserialize(post.Content)
	if err != nil {
		return fmt.Errorf("load post %d: %w", post.ID, err)
	}
	e.postID = post.ID
	e.Title = post.Title
	e.Link = post.Link
	e.Document = doc
	e.imageURL = post.ImageURL
	e.pendingImage = nil
	return nil
}

// Reset returns the editor to a blank new-post draft.
func (e *Editor) Reset() {
	*e = Editor{client: e.client, feed: e.feed, Document: richtext.New("")}
}

// SetPendingImage stages a header image. Nothing uploads until Save.
func (e *Editor) SetPendingImage(f FileUpload) {
	e.pendingImage = &f
}

// Save uploads any pending image, serializes the document, then
// creates or replaces the post and refreshes the feed.
func (e *Editor) Save(ctx context.Context) (*models.NewsPost, error) {
	if e.pendingImage != nil {
		url, err := e.client.UploadImage(ctx, *e.pendingImage)
		if err != nil {
			return nil, fmt.Errorf("upload header image: %w", err)
		}
		e.imageURL = url
		e.pendingImage = nil
	}

	content, err := richtext.Serialize(e.Document)
	if err != nil {
		return nil, err
	}

	draft := NewsDraft{
		Title:    e.Title,
		Content:  content,
		Link:     e.Link,
		ImageURL: e.imageURL,
	}

	var post *models.NewsPost
	if e.postID == 0 {
		post, err = e.client.CreateNews(ctx, draft)
	} else {
		post, err = e.client.ReplaceNews(ctx, e.postID, draft)
	}
	if err != nil {
		return nil, err
	}
	e.postID = post.ID

	_ = e.feed.Refresh(ctx)
	return post, nil
}

// Delete removes a post and refreshes the feed.
func (e *Editor) Delete(ctx context.Context, id uint) error {
	if err := e.client.DeleteNews(ctx, id); err != nil {
		return err
	}
	if e.postID == id {
		e.Reset()
	}
	_ = e.feed.Refresh(ctx)
	return nil
}
