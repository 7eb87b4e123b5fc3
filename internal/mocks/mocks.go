// Package mocks holds testify mocks of the upstream API interfaces, shared by the service and web tests.
package mocks

import (
	"context"
	"io"
	"time"

	"bookvideolink/internal/models"

	"github.com/stretchr/testify/mock"
)

type BookAVideoLinkAPI struct {
	mock.Mock
}

func (m *BookAVideoLinkAPI) GetCourts(ctx context.Context, user *models.User, enabledOnly bool) ([]models.Court, error) {
	args := m.Called(ctx, user, enabledOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Court), args.Error(1)
}

func (m *BookAVideoLinkAPI) GetProbationTeams(ctx context.Context, user *models.User, enabledOnly bool) ([]models.ProbationTeam, error) {
	args := m.Called(ctx, user, enabledOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProbationTeam), args.Error(1)
}

func (m *BookAVideoLinkAPI) GetUserCourtPreferences(ctx context.Context, user *models.User) ([]models.Court, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Court), args.Error(1)
}

func (m *BookAVideoLinkAPI) GetUserProbationTeamPreferences(ctx context.Context, user *models.User) ([]models.ProbationTeam, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProbationTeam), args.Error(1)
}

func (m *BookAVideoLinkAPI) SetUserCourtPreferences(ctx context.Context, user *models.User, codes []string) error {
	return m.Called(ctx, user, codes).Error(0)
}

func (m *BookAVideoLinkAPI) SetUserProbationTeamPreferences(ctx context.Context, user *models.User, codes []string) error {
	return m.Called(ctx, user, codes).Error(0)
}

func (m *BookAVideoLinkAPI) GetReferenceCodes(ctx context.Context, user *models.User, group string) ([]models.ReferenceCode, error) {
	args := m.Called(ctx, user, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReferenceCode), args.Error(1)
}

func (m *BookAVideoLinkAPI) GetPrisons(ctx context.Context, user *models.User, enabledOnly bool) ([]models.Prison, error) {
	args := m.Called(ctx, user, enabledOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Prison), args.Error(1)
}

func (m *BookAVideoLinkAPI) GetPrisonLocations(ctx context.Context, user *models.User, prisonCode string, videoLinkOnly bool) ([]models.Location, error) {
	args := m.Called(ctx, user, prisonCode, videoLinkOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *BookAVideoLinkAPI) CheckAvailability(ctx context.Context, user *models.User, req models.AvailabilityRequest) (*models.AvailabilityResponse, error) {
	args := m.Called(ctx, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AvailabilityResponse), args.Error(1)
}

func (m *BookAVideoLinkAPI) AvailableLocationsByDateAndTime(ctx context.Context, user *models.User, req models.AvailableLocationsRequest) (*models.AvailableLocationsResponse, error) {
	args := m.Called(ctx, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AvailableLocationsResponse), args.Error(1)
}

func (m *BookAVideoLinkAPI) GetVideoLinkBooking(ctx context.Context, user *models.User, id int64) (*models.VideoLinkBooking, error) {
	args := m.Called(ctx, user, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VideoLinkBooking), args.Error(1)
}

func (m *BookAVideoLinkAPI) CreateVideoLinkBooking(ctx context.Context, user *models.User, req models.CreateVideoBookingRequest) (int64, error) {
	args := m.Called(ctx, user, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BookAVideoLinkAPI) AmendVideoLinkBooking(ctx context.Context, user *models.User, id int64, req models.AmendVideoBookingRequest) error {
	return m.Called(ctx, user, id, req).Error(0)
}

func (m *BookAVideoLinkAPI) RequestVideoLinkBooking(ctx context.Context, user *models.User, req models.RequestVideoBookingRequest) error {
	return m.Called(ctx, user, req).Error(0)
}

func (m *BookAVideoLinkAPI) CancelVideoLinkBooking(ctx context.Context, user *models.User, id int64) error {
	return m.Called(ctx, user, id).Error(0)
}

func (m *BookAVideoLinkAPI) GetSchedule(ctx context.Context, user *models.User, bookingType models.BookingType, agencyCode, date string) ([]models.ScheduleItem, error) {
	args := m.Called(ctx, user, bookingType, agencyCode, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScheduleItem), args.Error(1)
}

func (m *BookAVideoLinkAPI) DownloadBookingsCSV(ctx context.Context, user *models.User, bookingType models.BookingType, agencyCode, startDate string, days int, w io.Writer) error {
	args := m.Called(ctx, user, bookingType, agencyCode, startDate, days, w)
	if body, ok := args.Get(0).(string); ok {
		if _, err := io.WriteString(w, body); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *BookAVideoLinkAPI) GetRoom(ctx context.Context, user *models.User, dpsLocationID string) (*models.Location, error) {
	args := m.Called(ctx, user, dpsLocationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *BookAVideoLinkAPI) CreateRoomAttributes(ctx context.Context, user *models.User, dpsLocationID string, req models.RoomAttributesRequest) error {
	return m.Called(ctx, user, dpsLocationID, req).Error(0)
}

func (m *BookAVideoLinkAPI) AmendRoomAttributes(ctx context.Context, user *models.User, dpsLocationID string, req models.RoomAttributesRequest) error {
	return m.Called(ctx, user, dpsLocationID, req).Error(0)
}

func (m *BookAVideoLinkAPI) DeleteRoomAttributes(ctx context.Context, user *models.User, dpsLocationID string) error {
	return m.Called(ctx, user, dpsLocationID).Error(0)
}

func (m *BookAVideoLinkAPI) AddRoomSchedule(ctx context.Context, user *models.User, dpsLocationID string, req models.RoomScheduleRequest) error {
	return m.Called(ctx, user, dpsLocationID, req).Error(0)
}

func (m *BookAVideoLinkAPI) AmendRoomSchedule(ctx context.Context, user *models.User, dpsLocationID string, scheduleID int64, req models.RoomScheduleRequest) error {
	return m.Called(ctx, user, dpsLocationID, scheduleID, req).Error(0)
}

func (m *BookAVideoLinkAPI) DeleteRoomSchedule(ctx context.Context, user *models.User, dpsLocationID string, scheduleID int64) error {
	return m.Called(ctx, user, dpsLocationID, scheduleID).Error(0)
}

type PrisonerSearchAPI struct {
	mock.Mock
}

func (m *PrisonerSearchAPI) GetPrisoner(ctx context.Context, user *models.User, prisonerNumber string) (*models.Prisoner, error) {
	args := m.Called(ctx, user, prisonerNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prisoner), args.Error(1)
}

func (m *PrisonerSearchAPI) Search(ctx context.Context, user *models.User, criteria models.PrisonerSearchCriteria) ([]models.Prisoner, error) {
	args := m.Called(ctx, user, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Prisoner), args.Error(1)
}

type ManageUsersAPI struct {
	mock.Mock
}

func (m *ManageUsersAPI) GetUser(ctx context.Context, user *models.User) (*models.UserDetails, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserDetails), args.Error(1)
}

type LocationsAPI struct {
	mock.Mock
}

func (m *LocationsAPI) GetLocationByKey(ctx context.Context, user *models.User, key string) (*models.LocationsLocation, error) {
	args := m.Called(ctx, user, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationsLocation), args.Error(1)
}

type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

// Clock parses HH:mm and panics on malformed input. For test fixtures only.
func Clock(s string) *time.Time {
	t, err := models.ParseClock(s)
	if err != nil {
		panic(err)
	}
	return &t
}
