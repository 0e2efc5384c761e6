package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bigjohnmusic/bigjohn-api/models"
)

func TestBearerHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("abc123"))
	if _, err := c.FetchNews(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer abc123" {
		t.Errorf("authorization = %q", gotAuth)
	}

	anon := New(srv.URL, StaticToken(""))
	if _, err := anon.FetchNews(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "" {
		t.Errorf("anonymous request sent authorization %q", gotAuth)
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Post not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	err := c.DeleteNews(context.Background(), 99)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "Post not found" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestCreateNewsRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/news" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var draft NewsDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			t.Error(err)
		}
		post := models.NewsPost{ID: 7, Title: draft.Title, Content: draft.Content, UploadDate: time.Now()}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(post)
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	post, err := c.CreateNews(context.Background(), NewsDraft{Title: "hello", Content: "{}"})
	if err != nil {
		t.Fatal(err)
	}
	if post.ID != 7 || post.Title != "hello" {
		t.Errorf("post = %+v", post)
	}
}

func TestUnlockEditor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password == "letmein" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid password"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))

	ok, err := c.UnlockEditor(context.Background(), "letmein")
	if err != nil || !ok {
		t.Errorf("UnlockEditor(correct) = %v, %v", ok, err)
	}
	ok, err = c.UnlockEditor(context.Background(), "nope")
	if err != nil || ok {
		t.Errorf("UnlockEditor(wrong) = %v, %v", ok, err)
	}
}

func TestTrackDailyUser(t *testing.T) {
	var gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID string `json:"userId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotUser = body.UserID
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	if err := c.TrackDailyUser(context.Background(), "auth0|u1"); err != nil {
		t.Fatal(err)
	}
	if gotUser != "auth0|u1" {
		t.Errorf("userId = %q", gotUser)
	}
}

func TestCreateVipSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("title") != "Demo" {
			t.Errorf("title = %q", r.FormValue("title"))
		}
		if _, _, err := r.FormFile("audio"); err != nil {
			t.Errorf("audio part missing: %v", err)
		}
		if _, _, err := r.FormFile("image"); err == nil {
			t.Error("image part should be absent")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"title":"Demo","mediaType":"mixed"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	entry, err := c.CreateVip(context.Background(), VipDraft{
		Title: "Demo",
		Audio: &FileUpload{Name: "demo.mp3", Content: []byte("riff")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if entry.MediaType != models.MediaTypeMixed {
		t.Errorf("mediaType = %q", entry.MediaType)
	}
}
