package web

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"bookvideolink/internal/domain"
	"bookvideolink/internal/models"
	"bookvideolink/internal/service"
	"bookvideolink/internal/validation"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

var roomFieldTypes = map[models.BookingType]map[string]models.AppointmentType{
	models.BookingTypeCourt: {
		models.FieldPreLocationCode:  models.AppointmentCourtPre,
		models.FieldLocationCode:     models.AppointmentCourtMain,
		models.FieldPostLocationCode: models.AppointmentCourtPost,
	},
	models.BookingTypeProbation: {
		models.FieldLocationCode: models.AppointmentProbation,
	},
}

func bookingIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("bookingId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// legacyJourney is the court journey that picks rooms on the new booking page.
func (s *Server) legacyJourney(bt models.BookingType, mode models.Mode) bool {
	return bt == models.BookingTypeCourt && !s.features.AlteredCourtJourneyEnabled && mode != models.ModeRequest
}

func referenceGroup(bt models.BookingType) string {
	if bt == models.BookingTypeProbation {
		return models.GroupProbationMeetingType
	}
	return models.GroupCourtHearingType
}

// preferredAgencies are the courts or probation teams the user chose in their preferences.
func (s *Server) preferredAgencies(ctx context.Context, user *models.User, bt models.BookingType) ([]models.Agency, error) {
	if bt == models.BookingTypeProbation {
		teams, err := s.deps.API.GetUserProbationTeamPreferences(ctx, user)
		if err != nil {
			return nil, err
		}
		return models.ProbationTeamAgencies(teams), nil
	}
	courts, err := s.deps.API.GetUserCourtPreferences(ctx, user)
	if err != nil {
		return nil, err
	}
	return models.CourtAgencies(courts), nil
}

func (s *Server) allAgencies(ctx context.Context, user *models.User, bt models.BookingType, enabledOnly bool) ([]models.Agency, error) {
	if bt == models.BookingTypeProbation {
		teams, err := s.deps.API.GetProbationTeams(ctx, user, enabledOnly)
		if err != nil {
			return nil, err
		}
		return models.ProbationTeamAgencies(teams), nil
	}
	courts, err := s.deps.API.GetCourts(ctx, user, enabledOnly)
	if err != nil {
		return nil, err
	}
	return models.CourtAgencies(courts), nil
}

// roomNames resolves room keys to display names. A room the locations API cannot name keeps its key.
func (s *Server) roomNames(ctx context.Context, user *models.User, keys ...string) map[string]string {
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	names := make(map[string]string, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := key
			loc, err := s.deps.Locations.GetLocationByKey(ctx, user, key)
			if err != nil {
				s.logger.Warn().Err(err).Str("location_key", key).Msg("failed to resolve room name")
			} else {
				name = loc.DisplayName()
			}
			mu.Lock()
			names[key] = name
			mu.Unlock()
		}()
	}
	wg.Wait()
	return names
}

// roomCandidates lists, per room field, the rooms free for that field's interval. When amending,
// the room a slot already sits in stays on its list.
func (s *Server) roomCandidates(ctx context.Context, user *models.User, d *models.BookingDraft) (map[string][]models.AvailableLocation, error) {
	main, ok := d.MainInterval()
	if !ok {
		return nil, errors.New("draft has no main interval")
	}
	var excluded *int64
	if d.BookingID != 0 {
		id := d.BookingID
		excluded = &id
	}

	var mu sync.Mutex
	out := make(map[string][]models.AvailableLocation)
	g, gctx := errgroup.WithContext(ctx)
	for field, slot := range roomSlots(d.BookingType, main) {
		g.Go(func() error {
			resp, err := s.deps.Composer.RoomsAvailableByDateAndTime(gctx, user, d, excluded, slot.Start, slot.End)
			if err != nil {
				return err
			}
			mu.Lock()
			out[field] = resp.Locations
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var missing []string
	for field, t := range roomFieldTypes[d.BookingType] {
		orig, ok := d.Original(t)
		if !ok || orig.LocationCode == "" || slices.ContainsFunc(out[field], func(l models.AvailableLocation) bool {
			return l.DpsLocationKey == orig.LocationCode
		}) {
			continue
		}
		missing = append(missing, orig.LocationCode)
	}
	if len(missing) > 0 {
		names := s.roomNames(ctx, user, missing...)
		for field, t := range roomFieldTypes[d.BookingType] {
			orig, ok := d.Original(t)
			if !ok {
				continue
			}
			if name, ok := names[orig.LocationCode]; ok && !slices.ContainsFunc(out[field], func(l models.AvailableLocation) bool {
				return l.DpsLocationKey == orig.LocationCode
			}) {
				out[field] = append(out[field], models.AvailableLocation{Name: name, DpsLocationKey: orig.LocationCode})
			}
		}
	}
	return out, nil
}

func candidateKeys(cands map[string][]models.AvailableLocation) map[string][]string {
	out := make(map[string][]string, len(cands))
	for field, locs := range cands {
		keys := make([]string, 0, len(locs))
		for _, l := range locs {
			keys = append(keys, l.DpsLocationKey)
		}
		out[field] = keys
	}
	return out
}

// newBooking is the first step of a wizard. It also seeds the journey: the prisoner for create,
// the existing booking for amend.
func (s *Server) newBooking(bt models.BookingType, mode models.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := currentUser(c)
		sid, jid := sessionID(c), journeyID(c)
		slice := bt.JourneySlice()

		draft, err := s.deps.Journeys.Draft(ctx, sid, jid, bt)
		if err != nil {
			_ = c.Error(err)
			return
		}

		switch mode {
		case models.ModeCreate:
			number := strings.ToUpper(c.Param("prisonerNumber"))
			if draft == nil || draft.Prisoner.PrisonerNumber != number {
				prisoner, err := s.deps.Search.GetPrisoner(ctx, user, number)
				if err != nil {
					_ = c.Error(err)
					return
				}
				if err := s.deps.Journeys.Clear(ctx, sid, jid, slice); err != nil {
					_ = c.Error(err)
					return
				}
				partial := models.Slice{models.FieldBookingType: string(bt), models.FieldPrisoner: *prisoner}
				if err := s.deps.Journeys.Merge(ctx, sid, jid, slice, partial); err != nil {
					_ = c.Error(err)
					return
				}
				draft = &models.BookingDraft{BookingType: bt, Prisoner: *prisoner}
			}

		case models.ModeAmend:
			id, ok := bookingIDParam(c)
			if !ok {
				_ = c.Error(domain.ErrNotFound)
				return
			}
			b, err := s.deps.Bookings.GetAmendable(ctx, user, id)
			if errors.Is(err, domain.ErrNotAmendable) {
				c.Redirect(http.StatusFound, typePath(bt, "view-booking", strconv.FormatInt(id, 10)))
				return
			}
			if err != nil {
				_ = c.Error(err)
				return
			}
			if b.BookingType != bt {
				_ = c.Error(domain.ErrNotFound)
				return
			}
			if draft == nil || draft.BookingID != id {
				if draft, err = s.deps.Bookings.HydrateDraft(ctx, user, b); err != nil {
					_ = c.Error(err)
					return
				}
				hydrated, err := models.SliceOf(draft)
				if err != nil {
					_ = c.Error(err)
					return
				}
				if err := s.deps.Journeys.Clear(ctx, sid, jid, slice); err != nil {
					_ = c.Error(err)
					return
				}
				if err := s.deps.Journeys.Merge(ctx, sid, jid, slice, hydrated); err != nil {
					_ = c.Error(err)
					return
				}
			}

		case models.ModeRequest:
			if draft == nil || draft.Prisoner.LastName == "" {
				c.Redirect(http.StatusFound, typePath(bt, "booking", "request", jid, "prisoner-details"))
				return
			}
		}

		form, err := s.takeForm(c, draftValues(draft))
		if err != nil {
			_ = c.Error(err)
			return
		}

		legacy := s.legacyJourney(bt, mode)
		var (
			agencies []models.Agency
			codes    []models.ReferenceCode
			rooms    []models.Location
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			agencies, err = s.preferredAgencies(gctx, user, bt)
			return err
		})
		g.Go(func() error {
			var err error
			codes, err = s.deps.API.GetReferenceCodes(gctx, user, referenceGroup(bt))
			return err
		})
		if legacy {
			g.Go(func() error {
				var err error
				rooms, err = s.deps.API.GetPrisonLocations(gctx, user, draft.Prisoner.PrisonCode, true)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			_ = c.Error(err)
			return
		}

		s.page(c, http.StatusOK, "new-booking.tmpl", gin.H{
			"BookingType":  bt,
			"Mode":         mode,
			"Draft":        draft,
			"Agencies":     agencies,
			"HearingTypes": codes,
			"Legacy":       legacy,
			"Rooms":        rooms,
			"Form":         form,
		})
	}
}

func (s *Server) submitNewBooking(bt models.BookingType, mode models.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := currentUser(c)
		sid, jid := sessionID(c), journeyID(c)
		base := wizardBase(c)

		if !postForm(c) {
			return
		}
		draft, err := s.deps.Journeys.Draft(ctx, sid, jid, bt)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if draft == nil {
			c.Redirect(http.StatusSeeOther, base)
			return
		}

		values := c.Request.PostForm
		in := validation.Input{Values: values, Draft: draft, Now: s.now().In(s.loc)}
		table := validation.NewBooking(bt)

		legacy := s.legacyJourney(bt, mode)
		if legacy {
			table = validation.LegacyNewBooking()
			rooms, err := s.deps.API.GetPrisonLocations(ctx, user, draft.Prisoner.PrisonCode, true)
			if err != nil {
				_ = c.Error(err)
				return
			}
			keys := make([]string, 0, len(rooms))
			for _, r := range rooms {
				keys = append(keys, r.Key)
			}
			in.Candidates = map[string][]string{
				models.FieldPreLocationCode:  keys,
				models.FieldLocationCode:     keys,
				models.FieldPostLocationCode: keys,
			}
			if main, ok := mainInterval(values, nil); ok {
				in.Slots = roomSlots(bt, main)
			}
		}

		if errs := table.Validate(in); len(errs) > 0 {
			s.failValidation(c, errs)
			return
		}

		partial, err := newBookingPartial(values, bt, s.loc)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if legacy {
			main, _ := mainInterval(values, nil)
			maps.Copy(partial, roomsPartial(values, bt, main))
		}
		if err := s.deps.Journeys.Merge(ctx, sid, jid, bt.JourneySlice(), partial); err != nil {
			_ = c.Error(err)
			return
		}

		next := "/select-rooms"
		if legacy || !service.BehaviourOf(mode).SelectRooms {
			next = "/check-booking"
		}
		c.Redirect(http.StatusSeeOther, base+next)
	}
}

func (s *Server) selectRooms(bt models.BookingType, mode models.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := currentUser(c)
		base := wizardBase(c)

		draft, err := s.deps.Journeys.Draft(ctx, sessionID(c), journeyID(c), bt)
		if err != nil {
			_ = c.Error(err)
			return
		}
		main, ok := draftMain(draft)
		if !ok {
			c.Redirect(http.StatusFound, base)
			return
		}

		cands, err := s.roomCandidates(ctx, user, draft)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if len(cands[models.FieldLocationCode]) == 0 ||
			(draft.PreRequired && len(cands[models.FieldPreLocationCode]) == 0) ||
			(draft.PostRequired && len(cands[models.FieldPostLocationCode]) == 0) {
			c.Redirect(http.StatusFound, base+"/not-available")
			return
		}

		form, err := s.takeForm(c, draftValues(draft))
		if err != nil {
			_ = c.Error(err)
			return
		}
		pre, post := models.PrePostIntervals(main)

		s.page(c, http.StatusOK, "select-rooms.tmpl", gin.H{
			"BookingType": bt,
			"Mode":        mode,
			"Draft":       draft,
			"Main":        main,
			"Pre":         pre,
			"Post":        post,
			"PreRooms":    cands[models.FieldPreLocationCode],
			"MainRooms":   cands[models.FieldLocationCode],
			"PostRooms":   cands[models.FieldPostLocationCode],
			"Form":        form,
			"BackPath":    base,
		})
	}
}

func draftMain(d *models.BookingDraft) (models.Interval, bool) {
	if d == nil {
		return models.Interval{}, false
	}
	return d.MainInterval()
}

func (s *Server) submitSelectRooms(bt models.BookingType, mode models.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := currentUser(c)
		sid, jid := sessionID(c), journeyID(c)
		base := wizardBase(c)

		if !postForm(c) {
			return
		}
		draft, err := s.deps.Journeys.Draft(ctx, sid, jid, bt)
		if err != nil {
			_ = c.Error(err)
			return
		}
		main, ok := draftMain(draft)
		if !ok {
			c.Redirect(http.StatusSeeOther, base)
			return
		}

		cands, err := s.roomCandidates(ctx, user, draft)
		if err != nil {
			_ = c.Error(err)
			return
		}

		values := c.Request.PostForm
		in := validation.Input{
			Values:     values,
			Draft:      draft,
			Now:        s.now().In(s.loc),
			Candidates: candidateKeys(cands),
			Slots:      roomSlots(bt, main),
		}
		if errs := validation.SelectRooms(bt).Validate(in); len(errs) > 0 {
			s.failValidation(c, errs)
			return
		}

		if err := s.deps.Journeys.Merge(ctx, sid, jid, bt.JourneySlice(), roomsPartial(values, bt, main)); err != nil {
			_ = c.Error(err)
			return
		}
		c.Redirect(http.StatusSeeOther, base+"/check-booking")
	}
}

func (s *Server) checkBooking(bt models.BookingType, mode models.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := currentUser(c)
		base := wizardBase(c)

		draft, err := s.deps.Journeys.Draft(ctx, sessionID(c), journeyID(c), bt)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if _, ok := draftMain(draft); !ok {
			c.Redirect(http.StatusFound, base)
			return
		}

		form, err := s.takeForm(c, draftValues(draft))
		if err != nil {
			_ = c.Error(err)
			return
		}

		var (
			agencies []models.Agency
			codes    []models.ReferenceCode
			rooms    map[string]string
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			agencies, err = s.allAgencies(gctx, user, bt, false)
			return err
		})
		g.Go(func() error {
			var err error
			codes, err = s.deps.API.GetReferenceCodes(gctx, user, referenceGroup(bt))
			return err
		})
		g.Go(func() error {
			rooms = s.roomNames(gctx, user, draft.PreLocationCode, draft.LocationCode, draft.PostLocationCode)
			return nil
		})
		if err := g.Wait(); err != nil {
			_ = c.Error(err)
			return
		}

		s.page(c, http.StatusOK, "check-booking.tmpl", gin.H{
			"BookingType": bt,
			"Mode":        mode,
			"Draft":       draft,
			"Slots":       service.ActiveSlots(draft),
			"AgencyName":  agencyName(agencies, draft.AgencyCode),
			"HearingType": referenceDescription(codes, draft.HearingTypeCode),
			"RoomNames":   rooms,
			"Form":        form,
			"ChangePath":  base,
		})
	}
}

func agencyName(agencies []models.Agency, code string) string {
	for _, a := range agencies {
		if a.Code == code {
			return a.Description
		}
	}
	return code
}

func referenceDescription(codes []models.ReferenceCode, code string) string {
	for _, rc := range codes {
		if rc.Code == code {
			return rc.Description
		}
	}
	return code
}

// submitCheckBooking is the final step: it re-checks availability where the mode requires it,
// then creates, amends or requests the booking and clears the journey.
func (s *Server) submitCheckBooking(bt models.BookingType, mode models.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := currentUser(c)
		sid, jid := sessionID(c), journeyID(c)
		slice := bt.JourneySlice()
		base := wizardBase(c)

		if !postForm(c) {
			return
		}
		in := validation.Input{Values: c.Request.PostForm, Now: s.now().In(s.loc)}
		if errs := validation.CheckBooking().Validate(in); len(errs) > 0 {
			s.failValidation(c, errs)
			return
		}
		claimed, err := s.deps.Journeys.ClaimSubmission(ctx, jid)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if !claimed {
			_ = c.Error(domain.ErrAlreadySubmitted)
			return
		}

		if _, ok := c.Request.PostForm[models.FieldNotes]; ok {
			partial := models.Slice{models.FieldNotes: optional(in.Get(models.FieldNotes))}
			if err := s.deps.Journeys.Merge(ctx, sid, jid, slice, partial); err != nil {
				s.deps.Journeys.ReleaseSubmission(ctx, jid)
				_ = c.Error(err)
				return
			}
		}

		draft, err := s.deps.Journeys.Draft(ctx, sid, jid, bt)
		if err != nil {
			s.deps.Journeys.ReleaseSubmission(ctx, jid)
			_ = c.Error(err)
			return
		}
		if _, ok := draftMain(draft); !ok {
			s.deps.Journeys.ReleaseSubmission(ctx, jid)
			c.Redirect(http.StatusSeeOther, base)
			return
		}

		if service.BehaviourOf(mode).CheckAvailability {
			resp, err := s.deps.Composer.CheckAvailability(ctx, user, draft)
			if err != nil {
				s.deps.Journeys.ReleaseSubmission(ctx, jid)
				_ = c.Error(err)
				return
			}
			if !resp.AvailabilityOk {
				s.deps.Journeys.ReleaseSubmission(ctx, jid)
				c.Redirect(http.StatusSeeOther, base+"/not-available")
				return
			}
		}

		id, err := s.deps.Bookings.Submit(ctx, user, mode, draft)
		if err != nil {
			s.deps.Journeys.ReleaseSubmission(ctx, jid)
			_ = c.Error(err)
			return
		}

		completed, err := models.SliceOf(draft)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if id != 0 {
			completed[models.FieldBookingID] = id
		}
		if err := s.deps.Journeys.Clear(ctx, sid, jid, slice); err != nil {
			_ = c.Error(err)
			return
		}
		if err := s.deps.Journeys.Merge(ctx, sid, jid, models.SliceCompletedBooking, completed); err != nil {
			_ = c.Error(err)
			return
		}

		if mode == models.ModeCreate {
			c.Redirect(http.StatusSeeOther, base+"/confirmation/"+strconv.FormatInt(id, 10))
			return
		}
		c.Redirect(http.StatusSeeOther, base+"/confirmation")
	}
}

func (s *Server) notAvailable(bt models.BookingType, mode models.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		draft, err := s.deps.Journeys.Draft(c.Request.Context(), sessionID(c), journeyID(c), bt)
		if err != nil {
			_ = c.Error(err)
			return
		}
		base := wizardBase(c)
		if draft == nil {
			c.Redirect(http.StatusFound, base)
			return
		}
		s.page(c, http.StatusOK, "not-available.tmpl", gin.H{
			"BookingType": bt,
			"Mode":        mode,
			"Draft":       draft,
			"ChangePath":  base,
		})
	}
}

func (s *Server) confirmation(bt models.BookingType, mode models.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		completed, err := s.deps.Journeys.Get(c.Request.Context(), sessionID(c), journeyID(c), models.SliceCompletedBooking)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if completed == nil {
			if id, ok := bookingIDParam(c); ok {
				c.Redirect(http.StatusFound, typePath(bt, "view-booking", strconv.FormatInt(id, 10)))
				return
			}
			c.Redirect(http.StatusFound, "/")
			return
		}
		var draft models.BookingDraft
		if err := completed.Decode(&draft); err != nil {
			_ = c.Error(err)
			return
		}

		s.page(c, http.StatusOK, "confirmation.tmpl", gin.H{
			"BookingType": bt,
			"Mode":        mode,
			"Draft":       &draft,
			"Slots":       service.ActiveSlots(&draft),
			"ViewPath":    typePath(bt, "view-booking", strconv.FormatInt(draft.BookingID, 10)),
		})
	}
}

func (s *Server) cancelBooking(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingIDParam(c)
		if !ok {
			_ = c.Error(domain.ErrNotFound)
			return
		}
		b, err := s.deps.Bookings.GetAmendable(c.Request.Context(), currentUser(c), id)
		if errors.Is(err, domain.ErrNotAmendable) {
			c.Redirect(http.StatusFound, typePath(bt, "view-booking", strconv.FormatInt(id, 10)))
			return
		}
		if err != nil {
			_ = c.Error(err)
			return
		}
		if b.BookingType != bt {
			_ = c.Error(domain.ErrNotFound)
			return
		}
		s.page(c, http.StatusOK, "cancel.tmpl", gin.H{
			"BookingType": bt,
			"Booking":     b,
			"Main":        b.MainAppointment(),
			"ViewPath":    typePath(bt, "view-booking", strconv.FormatInt(id, 10)),
		})
	}
}

func (s *Server) submitCancelBooking(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, ok := bookingIDParam(c)
		if !ok {
			_ = c.Error(domain.ErrNotFound)
			return
		}
		b, err := s.deps.Bookings.Cancel(ctx, currentUser(c), id)
		if errors.Is(err, domain.ErrNotAmendable) {
			c.Redirect(http.StatusSeeOther, typePath(bt, "view-booking", strconv.FormatInt(id, 10)))
			return
		}
		if err != nil {
			_ = c.Error(err)
			return
		}

		cancelled, err := models.SliceOf(b)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if err := s.deps.Journeys.Merge(ctx, sessionID(c), journeyID(c), models.SliceCompletedBooking, cancelled); err != nil {
			_ = c.Error(err)
			return
		}
		c.Redirect(http.StatusSeeOther, wizardBase(c)+"/confirmation")
	}
}

func (s *Server) cancelConfirmation(bt models.BookingType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := bookingIDParam(c)
		completed, err := s.deps.Journeys.Get(c.Request.Context(), sessionID(c), journeyID(c), models.SliceCompletedBooking)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if completed == nil {
			c.Redirect(http.StatusFound, typePath(bt, "view-booking", strconv.FormatInt(id, 10)))
			return
		}
		var b models.VideoLinkBooking
		if err := completed.Decode(&b); err != nil {
			_ = c.Error(err)
			return
		}
		s.page(c, http.StatusOK, "cancel-confirmation.tmpl", gin.H{
			"BookingType": bt,
			"Booking":     &b,
			"Main":        b.MainAppointment(),
		})
	}
}
