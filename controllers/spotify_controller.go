package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bigjohnmusic/bigjohn-api/models"
	"github.com/bigjohnmusic/bigjohn-api/utils"
)

const (
	spotifyCachePrefix = "cache:spotify:"
	spotifyListLimit   = 5
)

// SpotifyController manages the embedded releases column.
type SpotifyController struct {
	db *gorm.DB
}

// NewSpotifyController creates a new SpotifyController instance.
func NewSpotifyController(db *gorm.DB) *SpotifyController {
	return &SpotifyController{db: db}
}

// List returns at most the five newest embeds. An empty collection is
// a plain empty array, never an error body.
func (s *SpotifyController) List(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(spotifyCachePrefix + "list"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var embeds []models.SpotifyEmbed
	if err := s.db.Order("upload_date DESC").Limit(spotifyListLimit).Find(&embeds).Error; err != nil {
		utils.ServerError(ctx, err, "failed to list spotify embeds")
		return
	}
	if embeds == nil {
		embeds = []models.SpotifyEmbed{}
	}

	utils.CacheSetJSON(spotifyCachePrefix+"list", embeds, time.Hour)
	ctx.JSON(http.StatusOK, embeds)
}

// Create stores a new embed URL.
func (s *SpotifyController) Create(ctx *gin.Context) {
	var req struct {
		EmbedURL string `json:"embedUrl"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Message(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	embedURL := utils.SanitizeText(strings.TrimSpace(req.EmbedURL))
	if embedURL == "" {
		utils.Message(ctx, http.StatusBadRequest, "embedUrl cannot be empty")
		return
	}

	embed := models.SpotifyEmbed{EmbedURL: embedURL}
	if err := s.db.Create(&embed).Error; err != nil {
		utils.ServerError(ctx, err, "failed to create spotify embed")
		return
	}

	utils.InvalidateByPrefix(spotifyCachePrefix)
	ctx.JSON(http.StatusCreated, embed)
}

// Delete removes an embed and echoes the deleted document.
func (s *SpotifyController) Delete(ctx *gin.Context) {
	var embed models.SpotifyEmbed
	if err := s.db.First(&embed, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Message(ctx, http.StatusNotFound, "Embed not found")
			return
		}
		utils.ServerError(ctx, err, "failed to load spotify embed")
		return
	}

	if err := s.db.Delete(&embed).Error; err != nil {
		utils.ServerError(ctx, err, "failed to delete spotify embed")
		return
	}

	utils.InvalidateByPrefix(spotifyCachePrefix)
	ctx.JSON(http.StatusOK, embed)
}
