package web

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"bookvideolink/internal/models"

	"github.com/gin-gonic/gin"
)

// authMiddleware trusts the identity headers of the SSO proxy once its shared secret matches.
func (s *Server) authMiddleware() gin.HandlerFunc {
	auth := s.cfg.Auth
	return func(c *gin.Context) {
		if !auth.Enabled {
			dev := auth.DevUser
			c.Set(ctxUser, &models.User{
				Username:    dev.Username,
				DisplayName: dev.DisplayName,
				UserType:    models.UserType(strings.ToUpper(dev.UserType)),
				Token:       dev.Token,
				IsAdmin:     dev.IsAdmin,
			})
			c.Next()
			return
		}

		secret := c.GetHeader(auth.HeaderSecret)
		if subtle.ConstantTimeCompare([]byte(secret), []byte(auth.SharedSecret)) != 1 {
			s.logger.Warn().
				Str("request_id", c.GetString(ctxRequestID)).
				Str("path", c.Request.URL.Path).
				Msg("missing or invalid proxy secret")
			s.renderError(c, http.StatusUnauthorized)
			c.Abort()
			return
		}

		username := strings.TrimSpace(c.GetHeader(auth.HeaderUsername))
		if username == "" {
			s.renderError(c, http.StatusUnauthorized)
			c.Abort()
			return
		}

		user := &models.User{
			Username:    username,
			DisplayName: strings.TrimSpace(c.GetHeader(auth.HeaderDisplayName)),
			UserType:    models.UserType(strings.ToUpper(strings.TrimSpace(c.GetHeader(auth.HeaderUserType)))),
			Token:       strings.TrimSpace(strings.TrimPrefix(c.GetHeader(auth.HeaderToken), "Bearer ")),
		}
		for _, role := range strings.Split(c.GetHeader(auth.HeaderRoles), ",") {
			if strings.EqualFold(strings.TrimSpace(role), auth.AdminRole) {
				user.IsAdmin = true
			}
		}
		c.Set(ctxUser, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// requireBookingType keeps court users on court routes and probation users on probation routes.
func (s *Server) requireBookingType(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).CanBook(bt) {
			s.renderError(c, http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := currentUser(c); u == nil || !u.IsAdmin {
			s.renderError(c, http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
