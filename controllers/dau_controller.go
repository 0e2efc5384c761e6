package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bigjohnmusic/bigjohn-api/models"
	"github.com/bigjohnmusic/bigjohn-api/utils"
)

const (
	dauCachePrefix  = "cache:dau:"
	dauRedisPrefix  = "dau:users:"
	dauQueryDays    = 30
	dauRedisRetain  = 48 * time.Hour
	dauDayFormat    = "2006-01-02"
	dauListCacheTTL = 5 * time.Minute
)

// DauController tracks daily active users. Each calendar day owns a
// bucket of distinct user ids; tracking is idempotent within a day.
type DauController struct {
	db *gorm.DB
}

// NewDauController creates a new DauController instance.
func NewDauController(db *gorm.DB) *DauController {
	return &DauController{db: db}
}

// Track records one authenticated user as active today. A redis set
// short-circuits repeat calls from the same user; when redis is down
// or cold the DB path alone still keeps the count correct.
func (d *DauController) Track(ctx *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Message(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		utils.Message(ctx, http.StatusBadRequest, "userId cannot be empty")
		return
	}

	day := models.DayOf(time.Now())

	if d.seenToday(ctx, day, userID) {
		ctx.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	err := d.db.Transaction(func(tx *gorm.DB) error {
		q := tx
		// sqlite has no row locks; the serialized writer is enough there
		if tx.Dialector.Name() == "mysql" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var bucket models.DailyUserCount
		err := q.Where("date = ?", day).First(&bucket).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			bucket = models.DailyUserCount{Date: day}
			bucket.AddUser(userID)
			return tx.Create(&bucket).Error
		}
		if err != nil {
			return err
		}
		if !bucket.AddUser(userID) {
			return nil
		}
		return tx.Save(&bucket).Error
	})
	if err != nil {
		// The redis mark happened before the write; take it back or the
		// user's retries would short-circuit against a bucket that never
		// recorded them.
		d.forgetSeen(ctx, day, userID)
		utils.ServerError(ctx, err, "failed to track daily user")
		return
	}

	utils.InvalidateByPrefix(dauCachePrefix)
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// seenToday consults the redis day set. It answers true only when the
// user is already a member; every error path answers false so the DB
// transaction stays the source of truth.
func (d *DauController) seenToday(ctx *gin.Context, day time.Time, userID string) bool {
	rdb := utils.GetRedis()
	key := dauRedisPrefix + day.Format(dauDayFormat)

	added, err := rdb.SAdd(ctx.Request.Context(), key, userID).Result()
	if err != nil {
		return false
	}
	rdb.Expire(ctx.Request.Context(), key, dauRedisRetain)
	return added == 0
}

// forgetSeen removes the user from the redis day set after a failed DB
// write. If redis is down the SAdd never stuck either, so ignoring the
// error here is safe.
func (d *DauController) forgetSeen(ctx *gin.Context, day time.Time, userID string) {
	key := dauRedisPrefix + day.Format(dauDayFormat)
	utils.GetRedis().SRem(ctx.Request.Context(), key, userID)
}

// Query returns the last 30 days of counts in ascending date order as
// {date, users} pairs. Days with no activity have no row and are
// simply absent.
func (d *DauController) Query(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(dauCachePrefix + "list"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	since := models.DayOf(time.Now()).AddDate(0, 0, -(dauQueryDays - 1))

	var buckets []models.DailyUserCount
	if err := d.db.Where("date >= ?", since).Order("date ASC").Find(&buckets).Error; err != nil {
		utils.ServerError(ctx, err, "failed to query daily user counts")
		return
	}

	type dayCount struct {
		Date  string `json:"date"`
		Users int    `json:"users"`
	}
	out := make([]dayCount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, dayCount{Date: b.Date.Format(dauDayFormat), Users: b.UserCount})
	}

	utils.CacheSetJSON(dauCachePrefix+"list", out, dauListCacheTTL)
	ctx.JSON(http.StatusOK, out)
}
