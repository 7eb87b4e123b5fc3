package web

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"bookvideolink/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	flashValidationErrors = "validationErrors"
	flashFormResponses    = "formResponses"

	wizardSuffix = "/video-link-booking"
)

// journeyIDIndex is the path segment a journey id belongs at, or -1 for paths without one.
// Segments are counted after the leading slash.
func journeyIDIndex(segments []string) int {
	if len(segments) < 2 || (segments[0] != "court" && segments[0] != "probation") {
		return -1
	}
	switch {
	case segments[1] == "prisoner-search":
		return 2
	case segments[1] != "booking" || len(segments) < 3:
		return -1
	case segments[2] == "create" || segments[2] == "request":
		return 3
	case (segments[2] == "amend" || segments[2] == "cancel") && len(segments) >= 4:
		return 4
	}
	return -1
}

// insertJourneyID puts a new journey id into a wizard path that lacks one.
func insertJourneyID(path string) (string, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	idx := journeyIDIndex(segments)
	if idx < 0 || idx > len(segments) {
		return "", false
	}
	if idx < len(segments) {
		if _, err := uuid.Parse(segments[idx]); err == nil {
			return "", false
		}
	}
	segments = slices.Insert(segments, idx, uuid.NewString())
	return "/" + strings.Join(segments, "/"), true
}

func redirectWithJourneyID(c *gin.Context) bool {
	path, ok := insertJourneyID(c.Request.URL.Path)
	if !ok {
		return false
	}
	if q := c.Request.URL.RawQuery; q != "" {
		path += "?" + q
	}
	c.Redirect(http.StatusFound, path)
	return true
}

func (s *Server) noRoute(c *gin.Context) {
	if c.Request.Method == http.MethodGet && redirectWithJourneyID(c) {
		return
	}
	s.renderError(c, http.StatusNotFound)
}

// requireJourneyID sends wizard requests whose journey segment is not a UUID to a fresh journey.
func (s *Server) requireJourneyID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param("journeyId")); err == nil {
			c.Next()
			return
		}
		if !redirectWithJourneyID(c) {
			s.renderError(c, http.StatusNotFound)
		}
		c.Abort()
	}
}

func journeyID(c *gin.Context) string {
	return c.Param("journeyId")
}

// wizardBase is the path of the first step of the wizard the request belongs to.
func wizardBase(c *gin.Context) string {
	path := c.Request.URL.Path
	if i := strings.Index(path, wizardSuffix); i >= 0 {
		return path[:i+len(wizardSuffix)]
	}
	return path
}

// formView is what a page needs to redisplay a form: the last submitted values and their errors.
type formView struct {
	Errors validation.Errors
	Values url.Values
}

func (f formView) Value(field string) string {
	return f.Values.Get(field)
}

func (f formView) Error(field string) string {
	return f.Errors.For(field)
}

func (f formView) HasErrors() bool {
	return len(f.Errors) > 0
}

// Checked reports whether value is one of the values of field, for radios, checkboxes and selects.
func (f formView) Checked(field, value string) bool {
	return slices.Contains(f.Values[field], value)
}

// takeForm reads the flash left by a failed POST. Without one the page shows fallback.
func (s *Server) takeForm(c *gin.Context, fallback url.Values) (formView, error) {
	ctx := c.Request.Context()
	sid := sessionID(c)

	var view formView
	if _, err := s.deps.Journeys.TakeFlash(ctx, sid, flashValidationErrors, &view.Errors); err != nil {
		return formView{}, err
	}
	found, err := s.deps.Journeys.TakeFlash(ctx, sid, flashFormResponses, &view.Values)
	if err != nil {
		return formView{}, err
	}
	if !found {
		view.Values = fallback
	}
	if view.Values == nil {
		view.Values = url.Values{}
	}
	return view, nil
}

// failValidation keeps the errors and the posted values for the next request and sends
// the browser back to the form.
func (s *Server) failValidation(c *gin.Context, errs validation.Errors) {
	ctx := c.Request.Context()
	sid := sessionID(c)
	if err := s.deps.Journeys.PutFlash(ctx, sid, flashValidationErrors, errs); err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.deps.Journeys.PutFlash(ctx, sid, flashFormResponses, c.Request.PostForm); err != nil {
		_ = c.Error(err)
		return
	}
	c.Redirect(http.StatusSeeOther, c.Request.URL.Path)
}

// postForm parses the body; on failure the error is pushed and false returned.
func postForm(c *gin.Context) bool {
	if err := c.Request.ParseForm(); err != nil {
		_ = c.Error(err)
		return false
	}
	return true
}
