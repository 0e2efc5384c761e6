package controllers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bigjohnmusic/bigjohn-api/config"
	"github.com/bigjohnmusic/bigjohn-api/models"
	"github.com/bigjohnmusic/bigjohn-api/storage"
	"github.com/bigjohnmusic/bigjohn-api/utils"
)

const vipCachePrefix = "cache:vip:"

// VipController manages subscriber-only content entries and their
// attached media objects.
type VipController struct {
	db    *gorm.DB
	store storage.ObjectStore
}

// NewVipController creates a new VipController instance.
func NewVipController(db *gorm.DB, store storage.ObjectStore) *VipController {
	return &VipController{db: db, store: store}
}

// List returns every VIP entry, newest first. The route itself is
// token protected so anonymous visitors never reach this handler.
func (v *VipController) List(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(vipCachePrefix + "list"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var entries []models.VipContent
	if err := v.db.Order("upload_date DESC").Find(&entries).Error; err != nil {
		utils.ServerError(ctx, err, "failed to list vip content")
		return
	}
	if entries == nil {
		entries = []models.VipContent{}
	}

	utils.CacheSetJSON(vipCachePrefix+"list", entries, time.Hour)
	ctx.JSON(http.StatusOK, entries)
}

// vipUpload is one media slot of the multipart create request. Target
// points at the MediaURL field the uploaded object's URL lands in.
type vipUpload struct {
	field  string
	header *multipart.FileHeader
	target **string
	key    string
	url    string
}

// Create accepts a multipart form with title, description and up to
// three optional media parts (image, video, audio). All present parts
// upload concurrently; if any upload fails the ones that succeeded
// are deleted again so no half-created entry leaves objects behind.
func (v *VipController) Create(ctx *gin.Context) {
	cfg := config.Get()
	maxBytes := int64(cfg.UploadMaxSizeMB) << 20

	title := utils.SanitizeText(strings.TrimSpace(ctx.PostForm("title")))
	description := utils.SanitizeText(strings.TrimSpace(ctx.PostForm("description")))
	if title == "" {
		utils.Message(ctx, http.StatusBadRequest, "title cannot be empty")
		return
	}

	entry := models.VipContent{
		Title:       title,
		Description: description,
		MediaType:   models.MediaTypeMixed,
	}

	uploads := make([]*vipUpload, 0, 3)
	for _, slot := range []struct {
		field  string
		target **string
	}{
		{"image", &entry.MediaURL.ImageURL},
		{"video", &entry.MediaURL.VideoURL},
		{"audio", &entry.MediaURL.AudioURL},
	} {
		header, err := ctx.FormFile(slot.field)
		if err != nil {
			continue
		}
		if header.Size > maxBytes {
			utils.Message(ctx, http.StatusBadRequest, "file too large: "+slot.field)
			return
		}
		uploads = append(uploads, &vipUpload{field: slot.field, header: header, target: slot.target})
	}

	if err := v.uploadAll(ctx.Request.Context(), uploads); err != nil {
		v.compensate(uploads)
		utils.ServerError(ctx, err, "failed to upload vip media")
		return
	}

	for _, up := range uploads {
		if up.url != "" {
			url := up.url
			*up.target = &url
		}
	}

	if err := v.db.Create(&entry).Error; err != nil {
		v.compensate(uploads)
		utils.ServerError(ctx, err, "failed to create vip content")
		return
	}

	v.markAttached(uploads)
	utils.InvalidateByPrefix(vipCachePrefix)
	ctx.JSON(http.StatusCreated, entry)
}

// uploadAll pushes every media part to object storage concurrently.
// Each object is recorded in the uploaded_objects ledger before the
// upload starts so the sweeper can reclaim it if this request dies.
func (v *VipController) uploadAll(ctx context.Context, uploads []*vipUpload) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, up := range uploads {
		up.key = storage.NewObjectKey(up.header.Filename)
		// No ledger row means the sweeper could never reclaim the
		// object; do not upload what we cannot track.
		if err := v.db.Create(&models.UploadedObject{Key: up.key}).Error; err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("record upload %s: %w", up.key, err)
			}
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(up *vipUpload) {
			defer wg.Done()

			f, err := up.header.Open()
			if err == nil {
				defer f.Close()
				up.url, err = v.store.Put(ctx, up.key, up.header.Header.Get("Content-Type"), f, up.header.Size)
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(up)
	}
	wg.Wait()
	return firstErr
}

// compensate removes whatever made it to storage before the request
// failed. Best effort; the sweeper catches anything this misses.
func (v *VipController) compensate(uploads []*vipUpload) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, up := range uploads {
		if up.url == "" {
			continue
		}
		if err := v.store.Delete(ctx, up.key); err != nil {
			continue
		}
		v.db.Where("`key` = ?", up.key).Delete(&models.UploadedObject{})
	}
}

func (v *VipController) markAttached(uploads []*vipUpload) {
	for _, up := range uploads {
		if up.url == "" {
			continue
		}
		v.db.Model(&models.UploadedObject{}).
			Where("`key` = ?", up.key).
			Updates(map[string]interface{}{"url": up.url, "attached": true})
	}
}

// Delete removes a VIP entry and echoes the deleted document. The
// media objects stay in storage; old direct links keep working.
func (v *VipController) Delete(ctx *gin.Context) {
	var entry models.VipContent
	if err := v.db.First(&entry, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Message(ctx, http.StatusNotFound, "Content not found")
			return
		}
		utils.ServerError(ctx, err, "failed to load vip content")
		return
	}

	if err := v.db.Delete(&entry).Error; err != nil {
		utils.ServerError(ctx, err, "failed to delete vip content")
		return
	}

	utils.InvalidateByPrefix(vipCachePrefix)
	ctx.JSON(http.StatusOK, entry)
}
