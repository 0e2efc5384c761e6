package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bigjohnmusic/bigjohn-api/models"
)

func newVipRouter(t *testing.T, store *fakeStore) (*gin.Engine, *gorm.DB) {
	t.Helper()
	clearCache()
	db := newTestDB(t)
	vc := NewVipController(db, store)
	r := gin.New()
	r.GET("/api/vip", vc.List)
	r.POST("/api/vip", vc.Create)
	r.DELETE("/api/vip/:id", vc.Delete)
	return r, db
}

func postVip(t *testing.T, r *gin.Engine, fields map[string]string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, "/api/vip", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVipCreateAudioOnly(t *testing.T) {
	store := newFakeStore()
	r, db := newVipRouter(t, store)

	w := postVip(t, r,
		map[string]string{"title": "Unreleased demo", "description": "studio take"},
		map[string]string{"audio": "demo.mp3"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var entry models.VipContent
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.MediaType != models.MediaTypeMixed {
		t.Errorf("mediaType = %q, want %q", entry.MediaType, models.MediaTypeMixed)
	}
	if entry.MediaURL.AudioURL == nil {
		t.Fatal("audioUrl missing")
	}
	if entry.MediaURL.ImageURL != nil || entry.MediaURL.VideoURL != nil {
		t.Errorf("absent slots should be null: %+v", entry.MediaURL)
	}
	if store.putCount() != 1 {
		t.Errorf("uploads = %d, want 1", store.putCount())
	}

	// The uploaded object is recorded as attached so the sweeper skips it.
	var obj models.UploadedObject
	if err := db.First(&obj).Error; err != nil {
		t.Fatalf("ledger row missing: %v", err)
	}
	if !obj.Attached {
		t.Error("ledger row not marked attached")
	}
}

func TestVipCreateAllThreeMedia(t *testing.T) {
	store := newFakeStore()
	r, _ := newVipRouter(t, store)

	w := postVip(t, r,
		map[string]string{"title": "Full drop", "description": ""},
		map[string]string{"image": "a.jpg", "video": "b.mp4", "audio": "c.mp3"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var entry models.VipContent
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.MediaURL.ImageURL == nil || entry.MediaURL.VideoURL == nil || entry.MediaURL.AudioURL == nil {
		t.Errorf("all three slots should be set: %+v", entry.MediaURL)
	}
	if store.putCount() != 3 {
		t.Errorf("uploads = %d, want 3", store.putCount())
	}
}

func TestVipCreateMissingTitle(t *testing.T) {
	store := newFakeStore()
	r, _ := newVipRouter(t, store)

	w := postVip(t, r, map[string]string{"title": " "}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if store.putCount() != 0 {
		t.Error("nothing should upload when validation fails")
	}
}

func TestVipCreateUploadFailureCompensates(t *testing.T) {
	store := newFakeStore()
	store.putErr = errStoreDown
	r, db := newVipRouter(t, store)

	w := postVip(t, r,
		map[string]string{"title": "Broken", "description": ""},
		map[string]string{"audio": "demo.mp3"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var count int64
	db.Model(&models.VipContent{}).Count(&count)
	if count != 0 {
		t.Error("failed create must not leave an entry behind")
	}
}

func TestVipCreateLedgerFailureSkipsUpload(t *testing.T) {
	store := newFakeStore()
	r, db := newVipRouter(t, store)

	// Without the ledger the sweeper could never reclaim the object,
	// so a failed ledger write must keep the file out of storage.
	if err := db.Migrator().DropTable(&models.UploadedObject{}); err != nil {
		t.Fatal(err)
	}

	w := postVip(t, r,
		map[string]string{"title": "Untracked", "description": ""},
		map[string]string{"audio": "demo.mp3"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if store.putCount() != 0 {
		t.Errorf("uploads = %d, want 0 when the ledger write fails", store.putCount())
	}

	var count int64
	db.Model(&models.VipContent{}).Count(&count)
	if count != 0 {
		t.Error("failed create must not leave an entry behind")
	}
}

func TestVipDeleteTwice(t *testing.T) {
	store := newFakeStore()
	r, _ := newVipRouter(t, store)

	postVip(t, r, map[string]string{"title": "x", "description": ""}, nil)

	if w := doJSON(r, http.MethodDelete, "/api/vip/1", ""); w.Code != http.StatusOK {
		t.Fatalf("first delete status = %d", w.Code)
	}
	w := doJSON(r, http.MethodDelete, "/api/vip/1", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
	assertMessage(t, w.Body.Bytes(), "Content not found")
}

func TestVipListNewestFirst(t *testing.T) {
	store := newFakeStore()
	r, _ := newVipRouter(t, store)

	postVip(t, r, map[string]string{"title": "first", "description": ""}, nil)
	postVip(t, r, map[string]string{"title": "second", "description": ""}, nil)

	w := doJSON(r, http.MethodGet, "/api/vip", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var entries []models.VipContent
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].UploadDate.Before(entries[1].UploadDate) {
		t.Error("entries not newest-first")
	}
}
