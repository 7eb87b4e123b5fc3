package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// signSessionID returns an HS256 token carrying the session id as its jti.
func signSessionID(secret, id string, expiry time.Duration) (string, error) {
	issued := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(expiry)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// verifySessionCookie returns the session id of a correctly signed, unexpired cookie value.
func verifySessionCookie(secret, value string) (string, bool) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", false
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", false
	}
	return claims.ID, true
}

// sessionMiddleware resolves the session id from the signed cookie, minting one when absent.
// The session record itself is created lazily by the first journey write.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			id    string
			known bool
		)
		if raw, err := c.Cookie(s.cfg.Session.CookieName); err == nil {
			id, known = verifySessionCookie(s.cfg.Session.Secret, raw)
		}
		if !known {
			id = uuid.NewString()
		}
		c.Set(ctxSessionID, id)
		c.Set(ctxSessionKnown, known)

		value, err := signSessionID(s.cfg.Session.Secret, id, s.cfg.Session.Expiry)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to sign session cookie")
			s.renderError(c, http.StatusInternalServerError)
			c.Abort()
			return
		}
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     s.cfg.Session.CookieName,
			Value:    value,
			Path:     "/",
			MaxAge:   int(s.cfg.Session.Expiry.Seconds()),
			HttpOnly: true,
			Secure:   s.cfg.Session.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}
