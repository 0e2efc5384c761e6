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

const newsCachePrefix = "cache:news:"

// NewsController manages CRUD operations for news posts.
type NewsController struct {
	db *gorm.DB
}

// NewNewsController creates a new NewsController instance.
func NewNewsController(db *gorm.DB) *NewsController {
	return &NewsController{db: db}
}

type newsRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Link     string `json:"link"`
	ImageURL string `json:"imageUrl"`
}

// List returns every news post, newest first. Public; the client does
// its own top-5 slice.
func (n *NewsController) List(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(newsCachePrefix + "list"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var posts []models.NewsPost
	if err := n.db.Order("upload_date DESC").Find(&posts).Error; err != nil {
		utils.ServerError(ctx, err, "failed to list news posts")
		return
	}
	if posts == nil {
		posts = []models.NewsPost{}
	}

	utils.CacheSetJSON(newsCachePrefix+"list", posts, time.Hour)
	ctx.JSON(http.StatusOK, posts)
}

// Create stores a news post. The server assigns id and uploadDate;
// any client-supplied values for either are ignored. Content is an
// opaque serialized rich-text document and is never parsed here.
func (n *NewsController) Create(ctx *gin.Context) {
	var req newsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Message(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	post := models.NewsPost{
		Title:    utils.SanitizeText(strings.TrimSpace(req.Title)),
		Content:  req.Content,
		Link:     utils.SanitizeText(strings.TrimSpace(req.Link)),
		ImageURL: utils.SanitizeText(strings.TrimSpace(req.ImageURL)),
	}

	if err := n.db.Create(&post).Error; err != nil {
		utils.ServerError(ctx, err, "failed to create news post")
		return
	}

	utils.InvalidateByPrefix(newsCachePrefix)
	ctx.JSON(http.StatusCreated, post)
}

// Replace fully replaces an existing post. UploadDate is refreshed so
// edited posts bubble back up in the feed.
func (n *NewsController) Replace(ctx *gin.Context) {
	var req newsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Message(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var post models.NewsPost
	if err := n.db.First(&post, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Message(ctx, http.StatusNotFound, "Post not found")
			return
		}
		utils.ServerError(ctx, err, "failed to load news post")
		return
	}

	post.Title = utils.SanitizeText(strings.TrimSpace(req.Title))
	post.Content = req.Content
	post.Link = utils.SanitizeText(strings.TrimSpace(req.Link))
	post.ImageURL = utils.SanitizeText(strings.TrimSpace(req.ImageURL))
	post.UploadDate = time.Now()

	if err := n.db.Save(&post).Error; err != nil {
		utils.ServerError(ctx, err, "failed to update news post")
		return
	}

	utils.InvalidateByPrefix(newsCachePrefix)
	ctx.JSON(http.StatusOK, post)
}

// Delete removes a post and echoes the deleted document. A second
// delete of the same id reports not found, never a generic failure.
func (n *NewsController) Delete(ctx *gin.Context) {
	var post models.NewsPost
	if err := n.db.First(&post, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Message(ctx, http.StatusNotFound, "Post not found")
			return
		}
		utils.ServerError(ctx, err, "failed to load news post")
		return
	}

	if err := n.db.Delete(&post).Error; err != nil {
		utils.ServerError(ctx, err, "failed to delete news post")
		return
	}

	utils.InvalidateByPrefix(newsCachePrefix)
	ctx.JSON(http.StatusOK, post)
}
