package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bigjohnmusic/bigjohn-api/config"
	"github.com/bigjohnmusic/bigjohn-api/models"
	"github.com/bigjohnmusic/bigjohn-api/storage"
	"github.com/bigjohnmusic/bigjohn-api/utils"
)

// MediaController handles standalone media uploads, used by the rich
// text editor to host inline images before the post referencing them
// exists.
type MediaController struct {
	db    *gorm.DB
	store storage.ObjectStore
}

// NewMediaController creates a new MediaController instance.
func NewMediaController(db *gorm.DB, store storage.ObjectStore) *MediaController {
	return &MediaController{db: db, store: store}
}

// Upload stores a single file sent under the "image" form field and
// returns its public URL.
func (m *MediaController) Upload(ctx *gin.Context) {
	header, err := ctx.FormFile("image")
	if err != nil {
		utils.Message(ctx, http.StatusBadRequest, "No file uploaded")
		return
	}

	cfg := config.Get()
	if header.Size > int64(cfg.UploadMaxSizeMB)<<20 {
		utils.Message(ctx, http.StatusBadRequest, "file too large")
		return
	}

	f, err := header.Open()
	if err != nil {
		utils.ServerError(ctx, err, "failed to open uploaded file")
		return
	}
	defer f.Close()

	key := storage.NewObjectKey(header.Filename)
	url, err := m.store.Put(ctx.Request.Context(), key, header.Header.Get("Content-Type"), f, header.Size)
	if err != nil {
		utils.ServerError(ctx, err, "failed to store uploaded file")
		return
	}

	// Inline images are referenced from post content, not a DB column,
	// so they count as attached the moment they upload.
	m.db.Create(&models.UploadedObject{Key: key, URL: url, Attached: true})

	ctx.JSON(http.StatusCreated, gin.H{"imageUrl": url})
}
