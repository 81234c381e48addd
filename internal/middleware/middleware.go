package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tgo/chariott/internal/pkg/jwt"
	"github.com/tgo/chariott/internal/pkg/response"
)

const (
	ContextUserID   = "user_id"
	ContextUserType = "user_type"
	ContextRequest  = "request_id"

	HeaderAPIKey    = "API-Key"
	HeaderXAPIKey   = "X-API-Key"
	HeaderUserID    = "X-User-ID"
	HeaderRequestID = "X-Request-ID"
	bearerPrefix    = "Bearer "
)

func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		// credentials are only allowed with an explicit origin
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, API-Key, X-API-Key, X-User-ID, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextRequest, requestID)
		c.Writer.Header().Set(HeaderRequestID, requestID)
		c.Next()
	}
}

// APIKey rejects requests that do not carry the static key in either
// API-Key or X-API-Key. An empty key matches nothing.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(HeaderAPIKey)
		if got == "" {
			got = c.GetHeader(HeaderXAPIKey)
		}
		if key == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			response.Unauthorized(c, "Invalid or missing API key")
			return
		}
		c.Next()
	}
}

type AuthMiddleware struct {
	jwtManager      *jwt.Manager
	trustUserHeader bool
}

func NewAuthMiddleware(jwtManager *jwt.Manager, trustUserHeader bool) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, trustUserHeader: trustUserHeader}
}

// Identity resolves the acting user from a bearer token, or from X-User-ID
// when the header is trusted. Requests without either stay anonymous; a
// token that fails validation is rejected.
func (m *AuthMiddleware) Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if strings.HasPrefix(auth, bearerPrefix) {
			claims, err := m.jwtManager.ValidateToken(strings.TrimPrefix(auth, bearerPrefix))
			if err != nil {
				response.Unauthorized(c, "Invalid token")
				return
			}
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUserType, claims.UserType)
			c.Next()
			return
		}

		if m.trustUserHeader {
			if userID := strings.TrimSpace(c.GetHeader(HeaderUserID)); userID != "" {
				c.Set(ContextUserID, userID)
			}
		}
		c.Next()
	}
}

// RequireUser aborts with 401 unless Identity found an acting user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			response.Unauthorized(c, "Authentication required")
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
