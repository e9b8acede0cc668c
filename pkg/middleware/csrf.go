package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roteiro/internal/config"
	"roteiro/pkg/utils"
)

const (
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRFToken"
)

// CSRFProtect enforces a double-submit token on unsafe methods when
// required is true. With required false the routes are explicitly exempt.
func CSRFProtect(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !required || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		cookie, err := c.Cookie(CSRFCookieName)
		header := c.GetHeader(CSRFHeaderName)
		if err != nil || cookie == "" || header == "" ||
			subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			utils.HandleServiceError(c, utils.ErrCSRFFailed)
			return
		}
		c.Next()
	}
}

// IssueCSRFCookie sets a fresh token readable by the frontend, which must
// echo it in the X-CSRFToken header.
func IssueCSRFCookie(c *gin.Context, cfg config.SessionConfig) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    uuid.NewString(),
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
