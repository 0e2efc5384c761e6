package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bigjohnmusic/bigjohn-api/config"
	"github.com/bigjohnmusic/bigjohn-api/controllers"
	"github.com/bigjohnmusic/bigjohn-api/identity"
	"github.com/bigjohnmusic/bigjohn-api/middleware"
	"github.com/bigjohnmusic/bigjohn-api/storage"
	"github.com/bigjohnmusic/bigjohn-api/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, store storage.ObjectStore, verifier identity.TokenVerifier, directory identity.Directory) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Plaintext probe used to check whether a bearer token is accepted.
	r.GET("/authorized", middleware.AuthRequired(verifier), func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "Secured Resource")
	})

	newsController := controllers.NewNewsController(db)
	spotifyController := controllers.NewSpotifyController(db)
	vipController := controllers.NewVipController(db, store)
	mediaController := controllers.NewMediaController(db, store)
	dauController := controllers.NewDauController(db)
	userController := controllers.NewUserController(directory)
	authController := controllers.NewAuthController()

	api := r.Group("/api")

	// Public reads: the landing page renders without a session.
	api.GET("/news", newsController.List)
	api.GET("/spotify", spotifyController.List)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(verifier), middleware.RateLimitMiddleware())

	protected.POST("/news", newsController.Create)
	protected.PUT("/news/:id", newsController.Replace)
	protected.DELETE("/news/:id", newsController.Delete)

	protected.POST("/spotify", spotifyController.Create)
	protected.DELETE("/spotify/:id", spotifyController.Delete)

	protected.GET("/vip", vipController.List)
	protected.POST("/vip", vipController.Create)
	protected.DELETE("/vip/:id", vipController.Delete)

	protected.POST("/upload", mediaController.Upload)

	protected.POST("/dau/track", dauController.Track)
	protected.GET("/dau", dauController.Query)

	protected.GET("/users", userController.List)
	protected.POST("/auth/editor", authController.EditorGate)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Message(ctx, http.StatusNotFound, "api route not found")
			return
		}
		ctx.Status(http.StatusNotFound)
	})

	return r
}
