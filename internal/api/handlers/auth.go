package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playpool/billiards/internal/admin"
	"github.com/playpool/billiards/internal/config"
)

// IssueToken exchanges the operator key for a bearer token
func IssueToken(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.OperatorKeyHash == "" {
			c.JSON(http.StatusNotImplemented, gin.H{"error": admin.ErrNoOperator.Error()})
			return
		}

		var req struct {
			Key string `json:"key" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "key required"})
			return
		}

		if !admin.VerifyOperatorKey(cfg.OperatorKeyHash, req.Key) {
			log.Printf("[AUTH] Rejected operator key from %s", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid key"})
			return
		}

		ttl := time.Duration(cfg.TokenTTLMinutes) * time.Minute
		token, exp, err := admin.IssueToken(cfg.JWTSecret, admin.OperatorRole, ttl)
		if err != nil {
			log.Printf("[AUTH] Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": exp.Unix()})
	}
}

// AuthMiddleware requires an operator bearer token. With no operator key
// configured the control endpoints are open.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.OperatorKeyHash == "" {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := admin.ParseToken(cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("operator", claims.Subject)
		c.Next()
	}
}
