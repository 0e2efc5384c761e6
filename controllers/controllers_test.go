package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bigjohnmusic/bigjohn-api/models"
	"github.com/bigjohnmusic/bigjohn-api/utils"
)

// clearCache drops any leftover redis entries so list responses and
// DAU dedupe always start from the test database. No-op when redis is
// absent.
func clearCache() {
	utils.InvalidateByPrefix("cache:")
	utils.InvalidateByPrefix(dauRedisPrefix)
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	// Minimal environment so config.Load does not fatal.
	os.Setenv("AUTH0_DOMAIN", "tenant.test.auth0.com")
	os.Setenv("AUTH0_AUDIENCE", "https://api.test")
	if hash, err := utils.HashPassword("letmein"); err == nil {
		os.Setenv("EDITOR_PASSWORD_HASH", hash)
	}

	// In-process redis so the cache and DAU dedupe paths really run.
	// Must be up before the first config.Get / GetRedis call.
	mr, err := miniredis.Run()
	if err == nil {
		host, port, _ := net.SplitHostPort(mr.Addr())
		os.Setenv("REDIS_HOST", host)
		os.Setenv("REDIS_PORT", port)
	}

	code := m.Run()
	if mr != nil {
		mr.Close()
	}
	os.Exit(code)
}

// newTestDB opens an isolated in-memory database per test. The shared
// cache keeps gorm's pooled connections on the same store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.NewsPost{},
		&models.SpotifyEmbed{},
		&models.VipContent{},
		&models.DailyUserCount{},
		&models.UploadedObject{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// fakeStore records puts and deletes instead of talking to S3.
type fakeStore struct {
	mu      sync.Mutex
	puts    map[string]string // key -> content type
	deletes []string
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{puts: map[string]string{}}
}

func (f *fakeStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeStore) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts)
}

var errStoreDown = errors.New("storage unavailable")

// doJSON runs a JSON request through the handler and returns the recorder.
func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// multipartBody builds a multipart form from text fields and files.
func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for field, filename := range files {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file %s: %v", field, err)
		}
		if _, err := fw.Write([]byte("test-bytes")); err != nil {
			t.Fatalf("write form file %s: %v", field, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}
