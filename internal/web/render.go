package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"strings"
	"time"

	"bookvideolink/internal/models"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"contains": func(list []string, v string) bool {
		return slices.Contains(list, v)
	},
	// formatDate renders yyyy-MM-dd as "Monday 2 January 2006", or the input unchanged.
	"formatDate": func(s string) string {
		d, err := time.Parse(models.DateLayout, s)
		if err != nil {
			return s
		}
		return d.Format("Monday 2 January 2006")
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"split": strings.Fields,
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// page renders a template with the values every page needs.
func (s *Server) page(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = currentUser(c)
	data["Features"] = s.features
	data["Path"] = c.Request.URL.Path
	if _, ok := data["Form"]; !ok {
		data["Form"] = formView{}
	}
	c.HTML(status, name, data)
}

var errorMessages = map[int]string{
	http.StatusUnauthorized:        "You need to sign in to use this service.",
	http.StatusForbidden:           "You do not have permission to view this page.",
	http.StatusNotFound:            "Page not found.",
	http.StatusConflict:            "This booking has already been submitted.",
	http.StatusTooManyRequests:     "Too many requests. Wait a moment and try again.",
	http.StatusInternalServerError: "Sorry, there is a problem with the service.",
}

func (s *Server) renderError(c *gin.Context, status int) {
	msg, ok := errorMessages[status]
	if !ok {
		msg = errorMessages[http.StatusInternalServerError]
	}
	s.page(c, status, "error.tmpl", gin.H{
		"Status":  status,
		"Message": msg,
	})
}
