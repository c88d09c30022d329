package main

import (
	"context"
	"os"
	"strings"

	"github.com/playmatatu/fairway/internal/admin"
	"github.com/playmatatu/fairway/internal/config"
	"github.com/playmatatu/fairway/internal/database"
	"github.com/playmatatu/fairway/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.InitLogger(cfg.LogLevel, cfg.LogFormat, cfg.IsDevelopment())

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
		log.Infof("Using default admin username: %s", username)
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		adminToken = "change-me-in-production"
		log.Warn("Using default admin token. Set ADMIN_TOKEN env var in production!")
	}

	displayName := os.Getenv("ADMIN_DISPLAY_NAME")
	if displayName == "" {
		displayName = "Admin"
	}

	roles := []string{admin.RoleSuperAdmin}
	if v := os.Getenv("ADMIN_ROLES"); v != "" {
		roles = strings.Split(v, ",")
	}

	if err := admin.CreateAdminAccount(context.Background(), db, username, displayName, adminToken, roles); err != nil {
		log.WithError(err).Fatal("Failed to create admin account")
	}

	log.WithField("username", username).
		WithField("display_name", displayName).
		WithField("roles", roles).
		Info("Admin account created/updated")
	log.Info("Log in with POST /api/v1/admin/login {\"username\": ..., \"token\": ...}")
}
