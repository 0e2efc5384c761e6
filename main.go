package main

import (
	"context"
	"time"

	"github.com/bigjohnmusic/bigjohn-api/config"
	"github.com/bigjohnmusic/bigjohn-api/identity"
	"github.com/bigjohnmusic/bigjohn-api/models"
	"github.com/bigjohnmusic/bigjohn-api/routes"
	"github.com/bigjohnmusic/bigjohn-api/storage"
	"github.com/bigjohnmusic/bigjohn-api/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.NewsPost{},
		&models.SpotifyEmbed{},
		&models.VipContent{},
		&models.DailyUserCount{},
		&models.UploadedObject{},
	)

	store, err := storage.NewS3Store(context.Background(), storage.Config{
		Region:        cfg.S3Region,
		Bucket:        cfg.S3Bucket,
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		utils.Sugar.Fatalf("object storage init failed: %v", err)
	}

	verifier := identity.NewAuth0Verifier(cfg.Auth0Domain, cfg.Auth0Audience)
	directory := identity.NewAuth0Management(cfg.Auth0Domain, cfg.Auth0ClientID, cfg.Auth0ClientSecret)

	r := routes.SetupRouter(db, store, verifier, directory)

	// Reclaim media objects whose create request died before attaching them
	sweep := time.Duration(cfg.OrphanSweepMinutes) * time.Minute
	storage.StartOrphanSweeper(db, store, sweep, sweep)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
