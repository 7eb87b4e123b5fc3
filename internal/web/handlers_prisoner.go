package web

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookvideolink/internal/models"
	"bookvideolink/internal/validation"

	"github.com/gin-gonic/gin"
)

func typePath(bt models.BookingType, parts ...string) string {
	return "/" + bt.PathSegment() + "/" + strings.Join(parts, "/")
}

func (s *Server) home(c *gin.Context) {
	if s.cfg.Maintenance.Enabled {
		s.page(c, http.StatusServiceUnavailable, "maintenance.tmpl", gin.H{
			"EndDate": s.cfg.Maintenance.EndDate,
		})
		return
	}

	user := currentUser(c)
	name := user.DisplayName
	details, err := s.deps.Users.GetUser(c.Request.Context(), user)
	if err != nil {
		s.logger.Warn().Err(err).Str("username", user.Username).Msg("failed to get user details")
	} else if details.Name != "" {
		name = details.Name
	}

	s.page(c, http.StatusOK, "home.tmpl", gin.H{
		"DisplayName":  name,
		"CanCourt":     user.CanBook(models.BookingTypeCourt),
		"CanProbation": user.CanBook(models.BookingTypeProbation),
	})
}

func (s *Server) prisonerSearch(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := currentUser(c)

		saved, err := s.deps.Journeys.Get(ctx, sessionID(c), journeyID(c), models.SlicePrisonerSearch)
		if err != nil {
			_ = c.Error(err)
			return
		}
		fallback := url.Values{}
		for k, v := range saved {
			if str, ok := v.(string); ok {
				fallback.Set(k, str)
			}
		}
		form, err := s.takeForm(c, fallback)
		if err != nil {
			_ = c.Error(err)
			return
		}

		prisons, err := s.deps.API.GetPrisons(ctx, user, true)
		if err != nil {
			_ = c.Error(err)
			return
		}

		s.page(c, http.StatusOK, "prisoner-search.tmpl", gin.H{
			"BookingType": bt,
			"Prisons":     prisons,
			"Form":        form,
		})
	}
}

var prisonerSearchFields = []string{
	validation.FieldFirstName,
	validation.FieldLastName,
	validation.FieldDateOfBirth,
	validation.FieldPrisonCode,
	validation.FieldPrisonerNumber,
}

func (s *Server) submitPrisonerSearch(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !postForm(c) {
			return
		}
		in := validation.Input{Values: c.Request.PostForm, Now: s.now().In(s.loc)}
		if errs := validation.PrisonerSearch().Validate(in); len(errs) > 0 {
			s.failValidation(c, errs)
			return
		}

		partial := models.Slice{}
		for _, f := range prisonerSearchFields {
			partial[f] = optional(in.Get(f))
		}
		if err := s.deps.Journeys.Merge(c.Request.Context(), sessionID(c), journeyID(c), models.SlicePrisonerSearch, partial); err != nil {
			_ = c.Error(err)
			return
		}
		c.Redirect(http.StatusSeeOther, typePath(bt, "prisoner-search", journeyID(c), "results"))
	}
}

func (s *Server) prisonerSearchResults(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		jid := journeyID(c)

		saved, err := s.deps.Journeys.Get(ctx, sessionID(c), jid, models.SlicePrisonerSearch)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if saved == nil {
			c.Redirect(http.StatusFound, typePath(bt, "prisoner-search", jid, "search"))
			return
		}

		criteria := models.PrisonerSearchCriteria{
			FirstName:          saved.GetString(validation.FieldFirstName),
			LastName:           saved.GetString(validation.FieldLastName),
			PrisonerIdentifier: strings.ToUpper(saved.GetString(validation.FieldPrisonerNumber)),
			DateOfBirth:        formDate(saved.GetString(validation.FieldDateOfBirth), s.loc),
			PrisonID:           saved.GetString(validation.FieldPrisonCode),
		}
		prisoners, err := s.deps.Search.Search(ctx, currentUser(c), criteria)
		if err != nil {
			_ = c.Error(err)
			return
		}

		s.page(c, http.StatusOK, "prisoner-results.tmpl", gin.H{
			"BookingType": bt,
			"JourneyID":   jid,
			"Criteria":    criteria,
			"Prisoners":   prisoners,
			"SearchPath":  typePath(bt, "prisoner-search", jid, "search"),
			"RequestPath": typePath(bt, "booking", "request", jid, "prisoner-details"),
			"CreateBase":  typePath(bt, "booking", "create", jid),
		})
	}
}

func (s *Server) prisonerDetails(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		draft, err := s.deps.Journeys.Draft(ctx, sessionID(c), journeyID(c), bt)
		if err != nil {
			_ = c.Error(err)
			return
		}
		fallback := url.Values{}
		if draft != nil {
			p := draft.Prisoner
			fallback.Set(validation.FieldFirstName, p.FirstName)
			fallback.Set(validation.FieldLastName, p.LastName)
			fallback.Set(validation.FieldPrisonCode, p.PrisonCode)
			fallback.Set(validation.FieldPrisonerNumber, p.PrisonerNumber)
			if dob, err := time.Parse(models.DateLayout, p.DateOfBirth); err == nil {
				fallback.Set(validation.FieldDateOfBirth, dob.Format(models.FormDateLayout))
			}
		}
		form, err := s.takeForm(c, fallback)
		if err != nil {
			_ = c.Error(err)
			return
		}

		prisons, err := s.deps.API.GetPrisons(ctx, currentUser(c), true)
		if err != nil {
			_ = c.Error(err)
			return
		}

		s.page(c, http.StatusOK, "prisoner-details.tmpl", gin.H{
			"BookingType": bt,
			"Prisons":     prisons,
			"Form":        form,
		})
	}
}

func (s *Server) submitPrisonerDetails(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !postForm(c) {
			return
		}
		in := validation.Input{Values: c.Request.PostForm, Now: s.now().In(s.loc)}
		if errs := validation.PrisonerDetails().Validate(in); len(errs) > 0 {
			s.failValidation(c, errs)
			return
		}

		prisoner := models.Prisoner{
			FirstName:      in.Get(validation.FieldFirstName),
			LastName:       in.Get(validation.FieldLastName),
			DateOfBirth:    formDate(in.Get(validation.FieldDateOfBirth), s.loc),
			PrisonCode:     in.Get(validation.FieldPrisonCode),
			PrisonerNumber: strings.ToUpper(in.Get(validation.FieldPrisonerNumber)),
		}
		partial := models.Slice{
			models.FieldBookingType: string(bt),
			models.FieldPrisoner:    prisoner,
		}
		jid := journeyID(c)
		if err := s.deps.Journeys.Merge(c.Request.Context(), sessionID(c), jid, bt.JourneySlice(), partial); err != nil {
			_ = c.Error(err)
			return
		}
		c.Redirect(http.StatusSeeOther, typePath(bt, "booking", "request", jid, "video-link-booking"))
	}
}
