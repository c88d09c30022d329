package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/fairway/internal/admin"
	"github.com/playmatatu/fairway/internal/config"
	"github.com/playmatatu/fairway/internal/logger"
)

const (
	ctxAdminUsername = "admin_username"
	ctxAdminRoles    = "admin_roles"
)

// IssueAdminToken signs a bearer token for an admin.
func IssueAdminToken(cfg *config.Config, username string, roles []string, now time.Time) (string, time.Time, error) {
	exp := now.Add(time.Duration(cfg.AdminTokenHours) * time.Hour)
	claims := jwt.MapClaims{
		"sub":   username,
		"roles": roles,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// AdminLogin exchanges a username and admin token for a JWT
func AdminLogin(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Token    string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin accounts unavailable"})
			return
		}

		username := strings.TrimSpace(req.Username)
		acc, err := admin.ValidateAdminCredentials(c.Request.Context(), db, username, strings.TrimSpace(req.Token))
		if err != nil {
			admin.LogAdminAction(c.Request.Context(), db, username, c.ClientIP(), c.FullPath(), "login", nil, false)
			if errors.Is(err, admin.ErrAccountNotFound) || errors.Is(err, admin.ErrInvalidToken) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			respondError(c, err)
			return
		}

		signed, exp, err := IssueAdminToken(cfg, acc.Username, acc.Roles, time.Now())
		if err != nil {
			logger.WithComponent("admin").WithError(err).Error("failed to sign token")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		admin.LogAdminAction(c.Request.Context(), db, acc.Username, c.ClientIP(), c.FullPath(), "login", nil, true)
		c.JSON(http.StatusOK, gin.H{
			"token":      signed,
			"expires_at": exp.Format(time.RFC3339),
			"admin":      acc,
		})
	}
}

// AdminAuthMiddleware validates the bearer JWT and stores the admin in the context
func AdminAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")

		parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !parsed.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		username, ok := claims["sub"].(string)
		if !ok || username == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var roles []string
		if raw, ok := claims["roles"].([]interface{}); ok {
			for _, r := range raw {
				if s, ok := r.(string); ok {
					roles = append(roles, s)
				}
			}
		}

		c.Set(ctxAdminUsername, username)
		c.Set(ctxAdminRoles, roles)
		c.Next()
	}
}

// RequireRole rejects admins without role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if admin.HasRole(c.GetStringSlice(ctxAdminRoles), role) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing role " + role})
	}
}
