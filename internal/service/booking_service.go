package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"bookvideolink/internal/domain"
	"bookvideolink/internal/events"
	"bookvideolink/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type BookingService struct {
	api      domain.BookAVideoLinkAPI
	search   domain.PrisonerSearchAPI
	composer *Composer
	eventBus domain.EventPublisher
	loc      *time.Location
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewBookingService(
	api domain.BookAVideoLinkAPI,
	search domain.PrisonerSearchAPI,
	composer *Composer,
	eventBus domain.EventPublisher,
	loc *time.Location,
	logger *zerolog.Logger,
) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		api:      api,
		search:   search,
		composer: composer,
		eventBus: eventBus,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *BookingService) Get(ctx context.Context, user *models.User, id int64) (*models.VideoLinkBooking, error) {
	b, err := s.api.GetVideoLinkBooking(ctx, user, id)
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return b, nil
}

// IsAmendable reports whether the booking is active and its main appointment has not started.
func (s *BookingService) IsAmendable(b *models.VideoLinkBooking) bool {
	if b == nil || b.StatusCode == models.StatusCancelled {
		return false
	}
	startsAt, ok := b.StartsAt(s.loc)
	if !ok {
		return false
	}
	return startsAt.After(s.now().In(s.loc))
}

// GetAmendable returns the booking or domain.ErrNotAmendable alongside it.
func (s *BookingService) GetAmendable(ctx context.Context, user *models.User, id int64) (*models.VideoLinkBooking, error) {
	b, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if !s.IsAmendable(b) {
		return b, domain.ErrNotAmendable
	}
	return b, nil
}

// HydrateDraft builds the draft an amend journey starts from.
func (s *BookingService) HydrateDraft(ctx context.Context, user *models.User, b *models.VideoLinkBooking) (*models.BookingDraft, error) {
	main := b.MainAppointment()
	if main == nil {
		return nil, fmt.Errorf("booking %d has no main appointment", b.VideoLinkBookingID)
	}

	var (
		prisoner   *models.Prisoner
		videoRooms []models.Location
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.search.GetPrisoner(gctx, user, main.PrisonerNumber)
		if err != nil {
			return fmt.Errorf("get prisoner %s: %w", main.PrisonerNumber, err)
		}
		prisoner = p
		return nil
	})
	g.Go(func() error {
		rooms, err := s.api.GetPrisonLocations(gctx, user, main.PrisonCode, true)
		if err != nil {
			return fmt.Errorf("get video rooms for %s: %w", main.PrisonCode, err)
		}
		videoRooms = rooms
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	videoEnabled := make(map[string]bool, len(videoRooms))
	for _, r := range videoRooms {
		videoEnabled[r.Key] = true
	}

	d := &models.BookingDraft{
		BookingID:       b.VideoLinkBookingID,
		BookingType:     b.BookingType,
		Prisoner:        *prisoner,
		AgencyCode:      b.AgencyCode(),
		HearingTypeCode: b.HearingTypeCode(),
		Date:            main.AppointmentDate,
		LocationCode:    main.PrisonLocKey,
		Notes:           s.composer.NotesFromBooking(b),
		VideoLinkURL:    b.VideoLinkURL,
		CvpRequired:     b.VideoLinkURL != "",
	}
	if d.Prisoner.PrisonCode == "" {
		d.Prisoner.PrisonCode = main.PrisonCode
	}

	var err error
	if d.StartTime, d.EndTime, err = clocks(main); err != nil {
		return nil, err
	}
	if pre := b.Appointment(models.AppointmentCourtPre); pre != nil {
		d.PreRequired = true
		d.PreLocationCode = pre.PrisonLocKey
		if d.PreHearingStartTime, d.PreHearingEndTime, err = clocks(pre); err != nil {
			return nil, err
		}
	}
	if post := b.Appointment(models.AppointmentCourtPost); post != nil {
		d.PostRequired = true
		d.PostLocationCode = post.PrisonLocKey
		if d.PostHearingStartTime, d.PostHearingEndTime, err = clocks(post); err != nil {
			return nil, err
		}
	}

	for _, a := range b.PrisonAppointments {
		d.OriginalAppointments = append(d.OriginalAppointments, models.OriginalAppointment{
			Type:         a.AppointmentType,
			LocationCode: a.PrisonLocKey,
			Date:         a.AppointmentDate,
			StartTime:    a.StartTime,
			EndTime:      a.EndTime,
			VideoEnabled: videoEnabled[a.PrisonLocKey],
		})
	}
	return d, nil
}

func clocks(a *models.PrisonAppointment) (*time.Time, *time.Time, error) {
	start, err := models.ParseClock(a.StartTime)
	if err != nil {
		return nil, nil, fmt.Errorf("parse start time %q: %w", a.StartTime, err)
	}
	end, err := models.ParseClock(a.EndTime)
	if err != nil {
		return nil, nil, fmt.Errorf("parse end time %q: %w", a.EndTime, err)
	}
	return &start, &end, nil
}

// Submit sends the draft in the given mode and returns the booking id (zero for requests).
func (s *BookingService) Submit(ctx context.Context, user *models.User, mode models.Mode, d *models.BookingDraft) (int64, error) {
	var (
		id  int64
		err error
	)
	switch mode {
	case models.ModeCreate:
		id, err = s.api.CreateVideoLinkBooking(ctx, user, s.composer.BuildCreateRequest(d))
	case models.ModeAmend:
		id = d.BookingID
		err = s.api.AmendVideoLinkBooking(ctx, user, d.BookingID, s.composer.BuildAmendRequest(d))
	case models.ModeRequest:
		err = s.api.RequestVideoLinkBooking(ctx, user, s.composer.BuildRequestRequest(d))
	default:
		return 0, fmt.Errorf("unsupported mode %q", mode)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("mode", string(mode)).Str("booking_type", string(d.BookingType)).Msg("submit booking failed")
		return 0, err
	}

	s.publishEvent(BehaviourOf(mode).Event, id, d, user)
	return id, nil
}

// Cancel cancels an amendable booking.
func (s *BookingService) Cancel(ctx context.Context, user *models.User, id int64) (*models.VideoLinkBooking, error) {
	b, err := s.GetAmendable(ctx, user, id)
	if err != nil {
		return b, err
	}
	if err := s.api.CancelVideoLinkBooking(ctx, user, id); err != nil {
		return nil, fmt.Errorf("cancel booking %d: %w", id, err)
	}

	main := b.MainAppointment()
	payload := events.BookingEventPayload{
		BookingID:   id,
		BookingType: b.BookingType,
		AgencyCode:  b.AgencyCode(),
		ChangedBy:   user.Username,
	}
	if main != nil {
		payload.PrisonCode = main.PrisonCode
		payload.PrisonerNumber = main.PrisonerNumber
		payload.Date = main.AppointmentDate
		payload.StartTime = main.StartTime
	}
	s.publish(events.EventBookingCancelled, payload)
	return b, nil
}

func (s *BookingService) publishEvent(eventType string, id int64, d *models.BookingDraft, user *models.User) {
	payload := events.BookingEventPayload{
		BookingID:      id,
		BookingType:    d.BookingType,
		AgencyCode:     d.AgencyCode,
		PrisonCode:     d.Prisoner.PrisonCode,
		PrisonerNumber: d.Prisoner.PrisonerNumber,
		Date:           d.Date,
		ChangedBy:      user.Username,
	}
	if d.StartTime != nil {
		payload.StartTime = models.FormatClock(*d.StartTime)
	}
	s.publish(eventType, payload)
}

func (s *BookingService) publish(eventType string, payload events.BookingEventPayload) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("publish booking event")
	}
}

// ListSchedule fetches the schedules of several agencies concurrently and merges them in time order.
func (s *BookingService) ListSchedule(ctx context.Context, user *models.User, bookingType models.BookingType, agencyCodes []string, date string) ([]models.ScheduleItem, error) {
	var (
		mu  sync.Mutex
		all []models.ScheduleItem
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, code := range agencyCodes {
		g.Go(func() error {
			items, err := s.api.GetSchedule(gctx, user, bookingType, code, date)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("get schedule for %s: %w", code, err)
			}
			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].AppointmentDate != all[j].AppointmentDate {
			return all[i].AppointmentDate < all[j].AppointmentDate
		}
		if all[i].StartTime != all[j].StartTime {
			return all[i].StartTime < all[j].StartTime
		}
		return all[i].VideoBookingID < all[j].VideoBookingID
	})
	return all, nil
}
