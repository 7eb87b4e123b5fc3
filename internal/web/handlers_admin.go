package web

import (
	"net/http"
	"net/url"
	"strconv"

	"bookvideolink/internal/domain"
	"bookvideolink/internal/models"
	"bookvideolink/internal/service"
	"bookvideolink/internal/validation"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func roomPath(prisonCode, dpsLocationID string) string {
	return "/admin/view-prison-room/" + prisonCode + "/" + dpsLocationID
}

func (s *Server) adminPrisons(c *gin.Context) {
	prisons, err := s.deps.API.GetPrisons(c.Request.Context(), currentUser(c), false)
	if err != nil {
		_ = c.Error(err)
		return
	}
	s.page(c, http.StatusOK, "admin-prisons.tmpl", gin.H{"Prisons": prisons})
}

func (s *Server) adminPrisonRooms(c *gin.Context) {
	prisonCode := c.Param("prisonCode")
	rooms, err := s.deps.API.GetPrisonLocations(c.Request.Context(), currentUser(c), prisonCode, false)
	if err != nil {
		_ = c.Error(err)
		return
	}
	s.page(c, http.StatusOK, "admin-rooms.tmpl", gin.H{
		"PrisonCode": prisonCode,
		"Rooms":      rooms,
	})
}

// adminLookups loads the room together with the courts and probation teams its parties are chosen from.
func (s *Server) adminLookups(c *gin.Context) (*models.Location, []models.Court, []models.ProbationTeam, error) {
	ctx := c.Request.Context()
	user := currentUser(c)

	var (
		room   *models.Location
		courts []models.Court
		teams  []models.ProbationTeam
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		room, err = s.deps.API.GetRoom(gctx, user, c.Param("dpsLocationId"))
		return err
	})
	g.Go(func() error {
		var err error
		courts, err = s.deps.API.GetCourts(gctx, user, true)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = s.deps.API.GetProbationTeams(gctx, user, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return room, courts, teams, nil
}

func (s *Server) adminRoom(c *gin.Context) {
	room, courts, teams, err := s.adminLookups(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	form, err := s.takeForm(c, service.ConvertRoomToDisplayFormat(room).Values())
	if err != nil {
		_ = c.Error(err)
		return
	}

	var schedule []models.RoomSchedule
	if room.ExtraAttributes != nil {
		schedule = room.ExtraAttributes.Schedule
	}
	s.page(c, http.StatusOK, "admin-room.tmpl", gin.H{
		"PrisonCode":     c.Param("prisonCode"),
		"Room":           room,
		"Schedule":       schedule,
		"Courts":         courts,
		"ProbationTeams": teams,
		"Form":           form,
	})
}

func (s *Server) adminSaveRoom(c *gin.Context) {
	if !postForm(c) {
		return
	}
	in := validation.Input{Values: c.Request.PostForm}
	if errs := validation.RoomAttributes().Validate(in); len(errs) > 0 {
		s.failValidation(c, errs)
		return
	}

	ctx := c.Request.Context()
	user := currentUser(c)
	prisonCode, dpsLocationID := c.Param("prisonCode"), c.Param("dpsLocationId")

	room, err := s.deps.API.GetRoom(ctx, user, dpsLocationID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	form := service.ParseRoomForm(c.Request.PostForm)
	req := service.BodyToRoomAttributesRequest(form)
	if room.ExtraAttributes == nil {
		err = s.deps.API.CreateRoomAttributes(ctx, user, dpsLocationID, req)
	} else {
		err = s.deps.API.AmendRoomAttributes(ctx, user, dpsLocationID, req)
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	s.logger.Info().
		Str("username", user.Username).
		Str("dps_location_id", dpsLocationID).
		Str("usage", req.LocationUsage).
		Msg("room attributes saved")

	hasSchedule := room.ExtraAttributes != nil && len(room.ExtraAttributes.Schedule) > 0
	if form.PermissionType == models.UsageSchedule && !hasSchedule {
		c.Redirect(http.StatusSeeOther, "/admin/add-schedule/"+prisonCode+"/"+dpsLocationID)
		return
	}
	c.Redirect(http.StatusSeeOther, roomPath(prisonCode, dpsLocationID))
}

func (s *Server) adminDeleteRoom(c *gin.Context) {
	prisonCode, dpsLocationID := c.Param("prisonCode"), c.Param("dpsLocationId")
	if err := s.deps.API.DeleteRoomAttributes(c.Request.Context(), currentUser(c), dpsLocationID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Redirect(http.StatusSeeOther, roomPath(prisonCode, dpsLocationID))
}

type dayOption struct {
	Value int
	Name  string
}

func dayOptions() []dayOption {
	out := make([]dayOption, 0, 7)
	for n := 1; n <= 7; n++ {
		out = append(out, dayOption{Value: n, Name: service.DayName(n)})
	}
	return out
}

func scheduleIDParam(c *gin.Context) (int64, bool) {
	raw := c.Param("scheduleId")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

func findSchedule(room *models.Location, id int64) (models.RoomSchedule, bool) {
	if room == nil || room.ExtraAttributes == nil {
		return models.RoomSchedule{}, false
	}
	for _, row := range room.ExtraAttributes.Schedule {
		if row.ScheduleID == id {
			return row, true
		}
	}
	return models.RoomSchedule{}, false
}

// adminScheduleForm serves both the add and the amend schedule pages.
func (s *Server) adminScheduleForm(c *gin.Context) {
	room, courts, teams, err := s.adminLookups(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var values url.Values
	id, amending := scheduleIDParam(c)
	if amending {
		row, ok := findSchedule(room, id)
		if !ok {
			_ = c.Error(domain.ErrNotFound)
			return
		}
		values = service.ConvertScheduleToDisplayFormat(row).Values()
	}
	form, err := s.takeForm(c, values)
	if err != nil {
		_ = c.Error(err)
		return
	}

	s.page(c, http.StatusOK, "admin-schedule.tmpl", gin.H{
		"PrisonCode":     c.Param("prisonCode"),
		"Room":           room,
		"Amending":       amending,
		"Courts":         courts,
		"ProbationTeams": teams,
		"Days":           dayOptions(),
		"Form":           form,
		"BackPath":       roomPath(c.Param("prisonCode"), c.Param("dpsLocationId")),
	})
}

func (s *Server) adminSaveSchedule(c *gin.Context) {
	if !postForm(c) {
		return
	}
	in := validation.Input{Values: c.Request.PostForm}
	if errs := validation.Schedule().Validate(in); len(errs) > 0 {
		s.failValidation(c, errs)
		return
	}

	ctx := c.Request.Context()
	user := currentUser(c)
	prisonCode, dpsLocationID := c.Param("prisonCode"), c.Param("dpsLocationId")
	req := service.BodyToScheduleRequest(service.ParseScheduleForm(c.Request.PostForm))

	var err error
	if id, ok := scheduleIDParam(c); ok {
		err = s.deps.API.AmendRoomSchedule(ctx, user, dpsLocationID, id, req)
	} else {
		err = s.deps.API.AddRoomSchedule(ctx, user, dpsLocationID, req)
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Redirect(http.StatusSeeOther, roomPath(prisonCode, dpsLocationID))
}

func (s *Server) adminDeleteSchedule(c *gin.Context) {
	id, ok := scheduleIDParam(c)
	if !ok {
		_ = c.Error(domain.ErrNotFound)
		return
	}
	prisonCode, dpsLocationID := c.Param("prisonCode"), c.Param("dpsLocationId")
	if err := s.deps.API.DeleteRoomSchedule(c.Request.Context(), currentUser(c), dpsLocationID, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Redirect(http.StatusSeeOther, roomPath(prisonCode, dpsLocationID))
}
