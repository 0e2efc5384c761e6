package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bigjohnmusic/bigjohn-api/identity"
	"github.com/bigjohnmusic/bigjohn-api/utils"
)

const userCachePrefix = "cache:users:"

// UserController exposes the registered-user directory backed by the
// identity provider's management API.
type UserController struct {
	directory identity.Directory
}

// NewUserController creates a new UserController instance.
func NewUserController(directory identity.Directory) *UserController {
	return &UserController{directory: directory}
}

// List returns the email address of every registered user. Responses
// are cached briefly since the management API is rate limited.
func (u *UserController) List(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(userCachePrefix + "emails"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	emails, err := u.directory.ListUserEmails(ctx.Request.Context())
	if err != nil {
		utils.ServerError(ctx, err, "failed to list users")
		return
	}
	// Accounts linked across connections can share an address.
	emails = utils.UniqueStrings(emails)
	if emails == nil {
		emails = []string{}
	}

	utils.CacheSetJSON(userCachePrefix+"emails", emails, 10*time.Minute)
	ctx.JSON(http.StatusOK, emails)
}
