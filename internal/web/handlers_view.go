package web

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"bookvideolink/internal/domain"
	"bookvideolink/internal/models"
	"bookvideolink/internal/service"
	"bookvideolink/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/now"
	"golang.org/x/sync/errgroup"
)

const csvDownloadDays = 7

// scheduleQuery is the date and agencies a bookings list is shown for.
type scheduleQuery struct {
	Date     string // yyyy-MM-dd
	Agencies []models.Agency
	Selected []string
}

func (q scheduleQuery) Encode() string {
	v := url.Values{"date": {q.Date}}
	for _, code := range q.Selected {
		v.Add(models.FieldAgencyCode, code)
	}
	return v.Encode()
}

func (s *Server) readScheduleQuery(c *gin.Context, bt models.BookingType) (scheduleQuery, error) {
	q := scheduleQuery{Date: now.With(s.now().In(s.loc)).BeginningOfDay().Format(models.DateLayout)}
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		if d := formDate(raw, s.loc); d != "" {
			q.Date = d
		} else if _, err := now.ParseInLocation(s.loc, raw); err == nil {
			q.Date = raw
		}
	}

	agencies, err := s.preferredAgencies(c.Request.Context(), currentUser(c), bt)
	if err != nil {
		return q, err
	}
	q.Agencies = agencies

	for _, code := range c.QueryArray(models.FieldAgencyCode) {
		if slices.ContainsFunc(agencies, func(a models.Agency) bool { return a.Code == code }) {
			q.Selected = append(q.Selected, code)
		}
	}
	if len(q.Selected) == 0 && len(agencies) > 0 {
		if s.features.ViewMultipleAgenciesBookings {
			for _, a := range agencies {
				q.Selected = append(q.Selected, a.Code)
			}
		} else {
			q.Selected = []string{agencies[0].Code}
		}
	}
	if !s.features.ViewMultipleAgenciesBookings && len(q.Selected) > 1 {
		q.Selected = q.Selected[:1]
	}
	return q, nil
}

func (s *Server) viewBookings(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := s.readScheduleQuery(c, bt)
		if err != nil {
			_ = c.Error(err)
			return
		}
		items, err := s.deps.Bookings.ListSchedule(c.Request.Context(), currentUser(c), bt, q.Selected, q.Date)
		if err != nil {
			_ = c.Error(err)
			return
		}
		s.page(c, http.StatusOK, "bookings.tmpl", gin.H{
			"BookingType": bt,
			"Query":       q,
			"Items":       items,
			"CSVPath":     typePath(bt, "view-booking", "download-csv") + "?" + q.Encode(),
			"XLSXPath":    typePath(bt, "view-booking", "download-xlsx") + "?" + q.Encode(),
		})
	}
}

// downloadCSV streams the upstream CSV of the first selected agency as it arrives.
func (s *Server) downloadCSV(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := s.readScheduleQuery(c, bt)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if len(q.Selected) == 0 {
			_ = c.Error(domain.ErrNotFound)
			return
		}

		out := &attachmentWriter{c: c, contentType: "text/csv", filename: fmt.Sprintf("video-link-bookings-%s.csv", q.Date)}
		if err := s.deps.API.DownloadBookingsCSV(c.Request.Context(), currentUser(c), bt, q.Selected[0], q.Date, csvDownloadDays, out); err != nil {
			_ = c.Error(err)
			return
		}
		out.begin()
		c.Status(http.StatusOK)
	}
}

// attachmentWriter sets the download headers just before the first byte, so an upstream
// failure still renders the error page.
type attachmentWriter struct {
	c           *gin.Context
	contentType string
	filename    string
	started     bool
}

func (w *attachmentWriter) begin() {
	if w.started {
		return
	}
	w.started = true
	w.c.Header("Content-Type", w.contentType)
	w.c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, w.filename))
}

func (w *attachmentWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	w.begin()
	return w.c.Writer.Write(p)
}

func (s *Server) downloadXLSX(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := s.readScheduleQuery(c, bt)
		if err != nil {
			_ = c.Error(err)
			return
		}
		items, err := s.deps.Bookings.ListSchedule(c.Request.Context(), currentUser(c), bt, q.Selected, q.Date)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="video-link-bookings-%s.xlsx"`, q.Date))
		title := fmt.Sprintf("Video link bookings %s", q.Date)
		if err := service.WriteScheduleXLSX(c.Writer, bt, title, items); err != nil {
			_ = c.Error(err)
			return
		}
	}
}

func (s *Server) viewBooking(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := currentUser(c)

		id, ok := bookingIDParam(c)
		if !ok {
			_ = c.Error(domain.ErrNotFound)
			return
		}
		b, err := s.deps.Bookings.Get(ctx, user, id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		main := b.MainAppointment()
		if b.BookingType != bt || main == nil {
			_ = c.Error(domain.ErrNotFound)
			return
		}

		var (
			prisoner *models.Prisoner
			rooms    map[string]string
		)
		keys := make([]string, 0, len(b.PrisonAppointments))
		for _, a := range b.PrisonAppointments {
			keys = append(keys, a.PrisonLocKey)
		}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			prisoner, err = s.deps.Search.GetPrisoner(gctx, user, main.PrisonerNumber)
			return err
		})
		g.Go(func() error {
			rooms = s.roomNames(gctx, user, keys...)
			return nil
		})
		if err := g.Wait(); err != nil {
			_ = c.Error(err)
			return
		}

		idStr := strconv.FormatInt(id, 10)
		s.page(c, http.StatusOK, "view-booking.tmpl", gin.H{
			"BookingType": bt,
			"Booking":     b,
			"Main":        main,
			"Prisoner":    prisoner,
			"RoomNames":   rooms,
			"Notes":       s.deps.Composer.NotesFromBooking(b),
			"Amendable":   s.deps.Bookings.IsAmendable(b),
			"AmendPath":   typePath(bt, "booking", "amend", idStr, "video-link-booking"),
			"CancelPath":  typePath(bt, "booking", "cancel", idStr, "video-link-booking"),
		})
	}
}

func preferenceField(bt models.BookingType) string {
	if bt == models.BookingTypeProbation {
		return validation.FieldProbationTeamCodes
	}
	return validation.FieldCourtCodes
}

func (s *Server) userPreferences(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := currentUser(c)

		var all, preferred []models.Agency
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			all, err = s.allAgencies(gctx, user, bt, true)
			return err
		})
		g.Go(func() error {
			var err error
			preferred, err = s.preferredAgencies(gctx, user, bt)
			return err
		})
		if err := g.Wait(); err != nil {
			_ = c.Error(err)
			return
		}

		fallback := url.Values{}
		for _, a := range preferred {
			fallback.Add(preferenceField(bt), a.Code)
		}
		form, err := s.takeForm(c, fallback)
		if err != nil {
			_ = c.Error(err)
			return
		}

		s.page(c, http.StatusOK, "user-preferences.tmpl", gin.H{
			"BookingType": bt,
			"Agencies":    all,
			"Field":       preferenceField(bt),
			"Form":        form,
		})
	}
}

func (s *Server) saveUserPreferences(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !postForm(c) {
			return
		}
		in := validation.Input{Values: c.Request.PostForm}
		if errs := validation.UserPreferences(bt).Validate(in); len(errs) > 0 {
			s.failValidation(c, errs)
			return
		}

		ctx := c.Request.Context()
		user := currentUser(c)
		codes := in.All(preferenceField(bt))
		var err error
		if bt == models.BookingTypeProbation {
			err = s.deps.API.SetUserProbationTeamPreferences(ctx, user, codes)
		} else {
			err = s.deps.API.SetUserCourtPreferences(ctx, user, codes)
		}
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.Redirect(http.StatusSeeOther, "/")
	}
}
