package upstream

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"bookvideolink/internal/config"
	"bookvideolink/internal/models"

	"github.com/rs/zerolog"
)

const APIBookAVideoLink = "book_a_video_link"

// BookAVideoLinkClient calls the Book a Video Link API.
type BookAVideoLinkClient struct {
	*Client
}

func NewBookAVideoLinkClient(cfg config.APIEndpoint, logger *zerolog.Logger) *BookAVideoLinkClient {
	return &BookAVideoLinkClient{Client: NewClient(APIBookAVideoLink, cfg, logger)}
}

func enabledOnlyQuery(enabledOnly bool) url.Values {
	return url.Values{"enabledOnly": {strconv.FormatBool(enabledOnly)}}
}

func (c *BookAVideoLinkClient) GetCourts(ctx context.Context, user *models.User, enabledOnly bool) ([]models.Court, error) {
	var out []models.Court
	if err := c.getCached(ctx, user, "/courts", enabledOnlyQuery(enabledOnly), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookAVideoLinkClient) GetProbationTeams(ctx context.Context, user *models.User, enabledOnly bool) ([]models.ProbationTeam, error) {
	var out []models.ProbationTeam
	if err := c.getCached(ctx, user, "/probation-teams", enabledOnlyQuery(enabledOnly), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookAVideoLinkClient) GetUserCourtPreferences(ctx context.Context, user *models.User) ([]models.Court, error) {
	var out []models.Court
	if err := c.get(ctx, user, "/courts/user-preferences", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookAVideoLinkClient) GetUserProbationTeamPreferences(ctx context.Context, user *models.User) ([]models.ProbationTeam, error) {
	var out []models.ProbationTeam
	if err := c.get(ctx, user, "/probation-teams/user-preferences", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookAVideoLinkClient) SetUserCourtPreferences(ctx context.Context, user *models.User, codes []string) error {
	body := map[string][]string{"courtCodes": codes}
	return c.post(ctx, user, "/courts/user-preferences/set", nil, body, nil)
}

func (c *BookAVideoLinkClient) SetUserProbationTeamPreferences(ctx context.Context, user *models.User, codes []string) error {
	body := map[string][]string{"probationTeamCodes": codes}
	return c.post(ctx, user, "/probation-teams/user-preferences/set", nil, body, nil)
}

func (c *BookAVideoLinkClient) GetReferenceCodes(ctx context.Context, user *models.User, group string) ([]models.ReferenceCode, error) {
	var out []models.ReferenceCode
	if err := c.getCached(ctx, user, "/reference-codes/group/"+url.PathEscape(group), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookAVideoLinkClient) GetPrisons(ctx context.Context, user *models.User, enabledOnly bool) ([]models.Prison, error) {
	var out []models.Prison
	if err := c.getCached(ctx, user, "/prisons/list", enabledOnlyQuery(enabledOnly), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookAVideoLinkClient) GetPrisonLocations(ctx context.Context, user *models.User, prisonCode string, videoLinkOnly bool) ([]models.Location, error) {
	var out []models.Location
	path := fmt.Sprintf("/prisons/%s/locations", url.PathEscape(prisonCode))
	query := url.Values{"videoLinkOnly": {strconv.FormatBool(videoLinkOnly)}}
	if err := c.get(ctx, user, path, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookAVideoLinkClient) CheckAvailability(ctx context.Context, user *models.User, req models.AvailabilityRequest) (*models.AvailabilityResponse, error) {
	var out models.AvailabilityResponse
	if err := c.post(ctx, user, "/availability", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *BookAVideoLinkClient) AvailableLocationsByDateAndTime(ctx context.Context, user *models.User, req models.AvailableLocationsRequest) (*models.AvailableLocationsResponse, error) {
	var out models.AvailableLocationsResponse
	if err := c.post(ctx, user, "/availability/by-date-and-time", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func bookingPath(id int64) string {
	return "/video-link-booking/id/" + strconv.FormatInt(id, 10)
}

func (c *BookAVideoLinkClient) GetVideoLinkBooking(ctx context.Context, user *models.User, id int64) (*models.VideoLinkBooking, error) {
	var out models.VideoLinkBooking
	if err := c.get(ctx, user, bookingPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVideoLinkBooking returns the identifier of the new booking.
func (c *BookAVideoLinkClient) CreateVideoLinkBooking(ctx context.Context, user *models.User, req models.CreateVideoBookingRequest) (int64, error) {
	var id int64
	if err := c.post(ctx, user, "/video-link-booking", nil, req, &id); err != nil {
		return 0, err
	}
	return id, nil
}

func (c *BookAVideoLinkClient) AmendVideoLinkBooking(ctx context.Context, user *models.User, id int64, req models.AmendVideoBookingRequest) error {
	return c.put(ctx, user, bookingPath(id), req, nil)
}

func (c *BookAVideoLinkClient) RequestVideoLinkBooking(ctx context.Context, user *models.User, req models.RequestVideoBookingRequest) error {
	return c.post(ctx, user, "/video-link-booking/request", nil, req, nil)
}

func (c *BookAVideoLinkClient) CancelVideoLinkBooking(ctx context.Context, user *models.User, id int64) error {
	return c.delete(ctx, user, bookingPath(id))
}

func (c *BookAVideoLinkClient) GetSchedule(ctx context.Context, user *models.User, bookingType models.BookingType, agencyCode, date string) ([]models.ScheduleItem, error) {
	var out []models.ScheduleItem
	path := fmt.Sprintf("/schedule/%s/%s", bookingType.PathSegment(), url.PathEscape(agencyCode))
	if err := c.get(ctx, user, path, url.Values{"date": {date}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DownloadBookingsCSV streams the upstream CSV export for an agency into w.
func (c *BookAVideoLinkClient) DownloadBookingsCSV(ctx context.Context, user *models.User, bookingType models.BookingType, agencyCode, startDate string, days int, w io.Writer) error {
	path := "/download-csv/court-data-by-hearing-date"
	agencyParam := "court"
	if bookingType == models.BookingTypeProbation {
		path = "/download-csv/probation-data-by-meeting-date"
		agencyParam = "probationTeam"
	}
	query := url.Values{
		"start-date": {startDate},
		"days":       {strconv.Itoa(days)},
		agencyParam:  {agencyCode},
	}
	return c.stream(ctx, user, path, query, w)
}

func roomPath(dpsLocationID string) string {
	return "/room-admin/" + url.PathEscape(dpsLocationID)
}

func schedulePath(dpsLocationID string, scheduleID int64) string {
	return roomPath(dpsLocationID) + "/schedule/" + strconv.FormatInt(scheduleID, 10)
}

func (c *BookAVideoLinkClient) GetRoom(ctx context.Context, user *models.User, dpsLocationID string) (*models.Location, error) {
	var out models.Location
	if err := c.get(ctx, user, roomPath(dpsLocationID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *BookAVideoLinkClient) CreateRoomAttributes(ctx context.Context, user *models.User, dpsLocationID string, req models.RoomAttributesRequest) error {
	return c.post(ctx, user, roomPath(dpsLocationID), nil, req, nil)
}

func (c *BookAVideoLinkClient) AmendRoomAttributes(ctx context.Context, user *models.User, dpsLocationID string, req models.RoomAttributesRequest) error {
	return c.put(ctx, user, roomPath(dpsLocationID), req, nil)
}

func (c *BookAVideoLinkClient) DeleteRoomAttributes(ctx context.Context, user *models.User, dpsLocationID string) error {
	return c.delete(ctx, user, roomPath(dpsLocationID))
}

func (c *BookAVideoLinkClient) AddRoomSchedule(ctx context.Context, user *models.User, dpsLocationID string, req models.RoomScheduleRequest) error {
	return c.post(ctx, user, roomPath(dpsLocationID)+"/schedule", nil, req, nil)
}

func (c *BookAVideoLinkClient) AmendRoomSchedule(ctx context.Context, user *models.User, dpsLocationID string, scheduleID int64, req models.RoomScheduleRequest) error {
	return c.put(ctx, user, schedulePath(dpsLocationID, scheduleID), req, nil)
}

func (c *BookAVideoLinkClient) DeleteRoomSchedule(ctx context.Context, user *models.User, dpsLocationID string, scheduleID int64) error {
	return c.delete(ctx, user, schedulePath(dpsLocationID, scheduleID))
}
