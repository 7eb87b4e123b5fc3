package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"bookvideolink/internal/models"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrNotAmendable     = errors.New("booking cannot be amended")
	ErrAlreadySubmitted = errors.New("booking already submitted")
)

type SessionRepository interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, id string) error
	// Claim reports true for the first caller of key within window.
	Claim(ctx context.Context, key string, window time.Duration) (bool, error)
	ReleaseClaim(ctx context.Context, key string) error
}

// BookAVideoLinkAPI is the Book a Video Link API.
type BookAVideoLinkAPI interface {
	GetCourts(ctx context.Context, user *models.User, enabledOnly bool) ([]models.Court, error)
	GetProbationTeams(ctx context.Context, user *models.User, enabledOnly bool) ([]models.ProbationTeam, error)
	GetUserCourtPreferences(ctx context.Context, user *models.User) ([]models.Court, error)
	GetUserProbationTeamPreferences(ctx context.Context, user *models.User) ([]models.ProbationTeam, error)
	SetUserCourtPreferences(ctx context.Context, user *models.User, codes []string) error
	SetUserProbationTeamPreferences(ctx context.Context, user *models.User, codes []string) error
	GetReferenceCodes(ctx context.Context, user *models.User, group string) ([]models.ReferenceCode, error)
	GetPrisons(ctx context.Context, user *models.User, enabledOnly bool) ([]models.Prison, error)
	GetPrisonLocations(ctx context.Context, user *models.User, prisonCode string, videoLinkOnly bool) ([]models.Location, error)

	CheckAvailability(ctx context.Context, user *models.User, req models.AvailabilityRequest) (*models.AvailabilityResponse, error)
	AvailableLocationsByDateAndTime(ctx context.Context, user *models.User, req models.AvailableLocationsRequest) (*models.AvailableLocationsResponse, error)

	GetVideoLinkBooking(ctx context.Context, user *models.User, id int64) (*models.VideoLinkBooking, error)
	CreateVideoLinkBooking(ctx context.Context, user *models.User, req models.CreateVideoBookingRequest) (int64, error)
	AmendVideoLinkBooking(ctx context.Context, user *models.User, id int64, req models.AmendVideoBookingRequest) error
	RequestVideoLinkBooking(ctx context.Context, user *models.User, req models.RequestVideoBookingRequest) error
	CancelVideoLinkBooking(ctx context.Context, user *models.User, id int64) error

	GetSchedule(ctx context.Context, user *models.User, bookingType models.BookingType, agencyCode, date string) ([]models.ScheduleItem, error)
	DownloadBookingsCSV(ctx context.Context, user *models.User, bookingType models.BookingType, agencyCode, startDate string, days int, w io.Writer) error

	GetRoom(ctx context.Context, user *models.User, dpsLocationID string) (*models.Location, error)
	CreateRoomAttributes(ctx context.Context, user *models.User, dpsLocationID string, req models.RoomAttributesRequest) error
	AmendRoomAttributes(ctx context.Context, user *models.User, dpsLocationID string, req models.RoomAttributesRequest) error
	DeleteRoomAttributes(ctx context.Context, user *models.User, dpsLocationID string) error
	AddRoomSchedule(ctx context.Context, user *models.User, dpsLocationID string, req models.RoomScheduleRequest) error
	AmendRoomSchedule(ctx context.Context, user *models.User, dpsLocationID string, scheduleID int64, req models.RoomScheduleRequest) error
	DeleteRoomSchedule(ctx context.Context, user *models.User, dpsLocationID string, scheduleID int64) error
}

type PrisonerSearchAPI interface {
	GetPrisoner(ctx context.Context, user *models.User, prisonerNumber string) (*models.Prisoner, error)
	Search(ctx context.Context, user *models.User, criteria models.PrisonerSearchCriteria) ([]models.Prisoner, error)
}

type ManageUsersAPI interface {
	GetUser(ctx context.Context, user *models.User) (*models.UserDetails, error)
}

type LocationsAPI interface {
	GetLocationByKey(ctx context.Context, user *models.User, key string) (*models.LocationsLocation, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
