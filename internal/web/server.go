// Package web is the server rendered UI: routing, middleware, step handlers and templates.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bookvideolink/internal/config"
	"bookvideolink/internal/domain"
	"bookvideolink/internal/logging"
	"bookvideolink/internal/models"
	"bookvideolink/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the handlers call.
type Deps struct {
	Journeys  *service.JourneyService
	Bookings  *service.BookingService
	Composer  *service.Composer
	API       domain.BookAVideoLinkAPI
	Search    domain.PrisonerSearchAPI
	Users     domain.ManageUsersAPI
	Locations domain.LocationsAPI
}

type Server struct {
	cfg      *config.Config
	features config.Features
	deps     Deps
	logger   *zerolog.Logger
	engine   *gin.Engine
	server   *http.Server
	loc      *time.Location
	limiter  *rateLimiter
	now      func() time.Time
}

func NewServer(cfg *config.Config, deps Deps, logger *zerolog.Logger) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		features: cfg.Features,
		deps:     deps,
		logger:   logging.Component(logger, "web"),
		loc:      cfg.Location(),
		limiter:  newRateLimiter(cfg.RateLimit),
		now:      time.Now,
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tmpl)
	s.engine = engine
	s.routes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	return s, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("web server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	r := s.engine
	r.Use(
		s.requestLogger(),
		s.recovery(),
		s.errorHandler(),
		s.sessionMiddleware(),
		s.rateLimit(),
		s.authMiddleware(),
	)
	r.NoRoute(s.noRoute)

	r.GET("/", s.home)

	for _, bt := range []models.BookingType{models.BookingTypeCourt, models.BookingTypeProbation} {
		g := r.Group("/"+bt.PathSegment(), s.requireBookingType(bt))
		s.bookingRoutes(g, bt)

		g.GET("/view-booking", s.viewBookings(bt))
		g.GET("/view-booking/download-csv", s.downloadCSV(bt))
		g.GET("/view-booking/download-xlsx", s.downloadXLSX(bt))
		g.GET("/view-booking/:bookingId", s.viewBooking(bt))

		g.GET("/user-preferences", s.userPreferences(bt))
		g.POST("/user-preferences", s.saveUserPreferences(bt))
	}

	admin := r.Group("/admin", s.requireAdmin())
	admin.GET("", s.adminPrisons)
	admin.GET("/view-prison-locations/:prisonCode", s.adminPrisonRooms)
	admin.GET("/view-prison-room/:prisonCode/:dpsLocationId", s.adminRoom)
	admin.POST("/view-prison-room/:prisonCode/:dpsLocationId", s.adminSaveRoom)
	admin.POST("/view-prison-room/:prisonCode/:dpsLocationId/delete", s.adminDeleteRoom)
	admin.GET("/add-schedule/:prisonCode/:dpsLocationId", s.adminScheduleForm)
	admin.POST("/add-schedule/:prisonCode/:dpsLocationId", s.adminSaveSchedule)
	admin.GET("/amend-schedule/:prisonCode/:dpsLocationId/:scheduleId", s.adminScheduleForm)
	admin.POST("/amend-schedule/:prisonCode/:dpsLocationId/:scheduleId", s.adminSaveSchedule)
	admin.POST("/delete-schedule/:prisonCode/:dpsLocationId/:scheduleId", s.adminDeleteSchedule)
}

// bookingRoutes registers every wizard of one booking type, each step bound to its mode.
func (s *Server) bookingRoutes(g *gin.RouterGroup, bt models.BookingType) {
	search := g.Group("/prisoner-search/:journeyId", s.requireJourneyID())
	search.GET("/search", s.prisonerSearch(bt))
	search.POST("/search", s.submitPrisonerSearch(bt))
	search.GET("/results", s.prisonerSearchResults(bt))

	wizards := map[models.Mode]string{
		models.ModeCreate:  "/booking/create/:journeyId/:prisonerNumber/video-link-booking",
		models.ModeAmend:   "/booking/amend/:bookingId/:journeyId/video-link-booking",
		models.ModeRequest: "/booking/request/:journeyId/video-link-booking",
	}
	for mode, base := range wizards {
		w := g.Group(base, s.requireJourneyID())
		w.GET("", s.newBooking(bt, mode))
		w.POST("", s.submitNewBooking(bt, mode))
		if service.BehaviourOf(mode).SelectRooms {
			w.GET("/select-rooms", s.selectRooms(bt, mode))
			w.POST("/select-rooms", s.submitSelectRooms(bt, mode))
		}
		w.GET("/check-booking", s.checkBooking(bt, mode))
		w.POST("/check-booking", s.submitCheckBooking(bt, mode))
		w.GET("/not-available", s.notAvailable(bt, mode))
		if mode == models.ModeCreate {
			w.GET("/confirmation/:bookingId", s.confirmation(bt, mode))
		} else {
			w.GET("/confirmation", s.confirmation(bt, mode))
		}
	}

	request := g.Group("/booking/request/:journeyId", s.requireJourneyID())
	request.GET("/prisoner-details", s.prisonerDetails(bt))
	request.POST("/prisoner-details", s.submitPrisonerDetails(bt))

	cancel := g.Group("/booking/cancel/:bookingId/:journeyId/video-link-booking", s.requireJourneyID())
	cancel.GET("", s.cancelBooking(bt))
	cancel.POST("", s.submitCancelBooking(bt))
	cancel.GET("/confirmation", s.cancelConfirmation(bt))
}
