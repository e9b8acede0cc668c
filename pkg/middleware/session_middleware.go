package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roteiro/internal/config"
	mem "roteiro/pkg/memcache"
	"roteiro/pkg/utils"
)

const (
	accountIDKey     = "account_id"
	sessionClaimsKey = "session_claims"
)

// SessionAuth resolves the caller from the session cookie, or from an
// "Authorization: Bearer" header, and aborts with 401 when neither is valid.
func SessionAuth(cfg config.SessionConfig, sessions mem.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cfg.CookieName)
		if token == "" {
			utils.HandleServiceError(c, utils.ErrUnauthenticated)
			return
		}

		claims, err := utils.ValidateSessionToken(cfg.Secret, token)
		if err != nil || sessions.IsRevoked(claims.ID) {
			utils.HandleServiceError(c, utils.ErrUnauthenticated)
			return
		}

		accountID, _ := claims.AccountID()
		c.Set(accountIDKey, accountID)
		c.Set(sessionClaimsKey, claims)
		c.Next()
	}
}

// CallerID returns the authenticated account id set by SessionAuth.
func CallerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(accountIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func SessionClaims(c *gin.Context) (*utils.SessionClaims, bool) {
	v, ok := c.Get(sessionClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.SessionClaims)
	return claims, ok
}

func SetSessionCookie(c *gin.Context, cfg config.SessionConfig, token string, expiresAt time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(c *gin.Context, cfg config.SessionConfig) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionToken(c *gin.Context, cookieName string) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}
