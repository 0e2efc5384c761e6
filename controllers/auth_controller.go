package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bigjohnmusic/bigjohn-api/config"
	"github.com/bigjohnmusic/bigjohn-api/utils"
)

// AuthController holds the secondary editor gate: a shared password
// checked on top of token auth before the editor UI unlocks.
type AuthController struct{}

// NewAuthController creates a new AuthController instance.
func NewAuthController() *AuthController {
	return &AuthController{}
}

// EditorGate verifies the shared editor password. 204 on success,
// 401 otherwise. When no hash is configured the gate is disabled and
// everything is rejected.
func (a *AuthController) EditorGate(ctx *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Message(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	hash := config.Get().EditorPasswordHash
	if hash == "" || !utils.CheckPassword(hash, req.Password) {
		utils.Message(ctx, http.StatusUnauthorized, "invalid password")
		return
	}

	ctx.Status(http.StatusNoContent)
}
