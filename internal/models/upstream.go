package models

import "time"

// Wire shapes of the Book a Video Link API.

type Court struct {
	CourtID     int64  `json:"courtId"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

type ProbationTeam struct {
	ProbationTeamID int64  `json:"probationTeamId"`
	Code            string `json:"code"`
	Description     string `json:"description"`
	Enabled         bool   `json:"enabled"`
}

// Agency is a court or a probation team, as offered in a select list.
type Agency struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func CourtAgencies(courts []Court) []Agency {
	out := make([]Agency, 0, len(courts))
	for _, c := range courts {
		out = append(out, Agency{Code: c.Code, Description: c.Description})
	}
	return out
}

func ProbationTeamAgencies(teams []ProbationTeam) []Agency {
	out := make([]Agency, 0, len(teams))
	for _, t := range teams {
		out = append(out, Agency{Code: t.Code, Description: t.Description})
	}
	return out
}

type ReferenceCode struct {
	ReferenceCodeID int64  `json:"referenceCodeId"`
	GroupCode       string `json:"groupCode"`
	Code            string `json:"code"`
	Description     string `json:"description"`
}

type Prison struct {
	PrisonID int64  `json:"prisonId"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
}

type Location struct {
	Key             string          `json:"key"`
	Description     string          `json:"description"`
	Enabled         bool            `json:"enabled"`
	DpsLocationID   string          `json:"dpsLocationId"`
	PrisonCode      string          `json:"prisonCode,omitempty"`
	ExtraAttributes *RoomAttributes `json:"extraAttributes,omitempty"`
}

type RoomAttributes struct {
	AttributeID    int64          `json:"attributeId"`
	LocationStatus string         `json:"locationStatus"`
	LocationUsage  string         `json:"locationUsage"`
	AllowedParties []string       `json:"allowedParties,omitempty"`
	PrisonVideoURL string         `json:"prisonVideoUrl,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	Schedule       []RoomSchedule `json:"schedule,omitempty"`
}

type RoomSchedule struct {
	ScheduleID     int64    `json:"scheduleId"`
	StartDayOfWeek string   `json:"startDayOfWeek"`
	EndDayOfWeek   string   `json:"endDayOfWeek"`
	StartTime      string   `json:"startTime"`
	EndTime        string   `json:"endTime"`
	LocationUsage  string   `json:"locationUsage"`
	AllowedParties []string `json:"allowedParties,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// RoomScheduleRequest creates or amends one schedule row of a room.
type RoomScheduleRequest struct {
	StartDayOfWeek string   `json:"startDayOfWeek"`
	EndDayOfWeek   string   `json:"endDayOfWeek"`
	StartTime      string   `json:"startTime"`
	EndTime        string   `json:"endTime"`
	LocationUsage  string   `json:"locationUsage"`
	AllowedParties []string `json:"allowedParties,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// RoomAttributesRequest creates or amends the decoration of a room.
type RoomAttributesRequest struct {
	LocationStatus string   `json:"locationStatus"`
	LocationUsage  string   `json:"locationUsage"`
	AllowedParties []string `json:"allowedParties,omitempty"`
	PrisonVideoURL string   `json:"prisonVideoUrl,omitempty"`
	Notes          string   `json:"comments,omitempty"`
}

type TimeInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type LocationAndInterval struct {
	PrisonLocKey string       `json:"prisonLocKey"`
	Interval     TimeInterval `json:"interval"`
}

type AvailabilityRequest struct {
	BookingType          BookingType          `json:"bookingType"`
	CourtOrProbationCode string               `json:"courtOrProbationCode"`
	PrisonCode           string               `json:"prisonCode"`
	Date                 string               `json:"date"`
	PreAppointment       *LocationAndInterval `json:"preAppointment,omitempty"`
	MainAppointment      LocationAndInterval  `json:"mainAppointment"`
	PostAppointment      *LocationAndInterval `json:"postAppointment,omitempty"`
	VlbIDToExclude       *int64               `json:"vlbIdToExclude,omitempty"`
}

type AvailabilityResponse struct {
	AvailabilityOk bool `json:"availabilityOk"`
}

type AvailableLocationsRequest struct {
	PrisonCode               string      `json:"prisonCode"`
	BookingType              BookingType `json:"bookingType"`
	CourtOrProbationTeamCode string      `json:"courtOrProbationTeamCode"`
	Date                     string      `json:"date"`
	StartTime                string      `json:"startTime"`
	EndTime                  string      `json:"endTime"`
	VlbIDToExclude           *int64      `json:"vlbIdToExclude,omitempty"`
}

type AvailableLocation struct {
	Name           string `json:"name"`
	DpsLocationKey string `json:"dpsLocationKey"`
	DpsLocationID  string `json:"dpsLocationId"`
}

type AvailableLocationsResponse struct {
	Locations []AvailableLocation `json:"locations"`
}

type Appointment struct {
	Type        AppointmentType `json:"type"`
	LocationKey string          `json:"locationKey,omitempty"`
	Date        string          `json:"date"`
	StartTime   string          `json:"startTime"`
	EndTime     string          `json:"endTime"`
}

type PrisonerDetails struct {
	PrisonCode     string        `json:"prisonCode"`
	PrisonerNumber string        `json:"prisonerNumber,omitempty"`
	FirstName      string        `json:"firstName,omitempty"`
	LastName       string        `json:"lastName,omitempty"`
	DateOfBirth    string        `json:"dateOfBirth,omitempty"`
	Appointments   []Appointment `json:"appointments"`
}

// VideoBookingRequest holds the fields shared by create, amend and request calls.
type VideoBookingRequest struct {
	BookingType          BookingType       `json:"bookingType"`
	Prisoners            []PrisonerDetails `json:"prisoners"`
	CourtCode            string            `json:"courtCode,omitempty"`
	CourtHearingType     string            `json:"courtHearingType,omitempty"`
	ProbationTeamCode    string            `json:"probationTeamCode,omitempty"`
	ProbationMeetingType string            `json:"probationMeetingType,omitempty"`
	Comments             string            `json:"comments,omitempty"`
	NotesForStaff        string            `json:"notesForStaff,omitempty"`
	VideoLinkURL         string            `json:"videoLinkUrl,omitempty"`
}

type CreateVideoBookingRequest struct {
	VideoBookingRequest
}

type AmendVideoBookingRequest struct {
	VideoBookingRequest
}

type RequestVideoBookingRequest struct {
	VideoBookingRequest
}

type PrisonAppointment struct {
	PrisonAppointmentID int64           `json:"prisonAppointmentId"`
	PrisonCode          string          `json:"prisonCode"`
	PrisonerNumber      string          `json:"prisonerNumber"`
	AppointmentType     AppointmentType `json:"appointmentType"`
	PrisonLocKey        string          `json:"prisonLocKey"`
	AppointmentDate     string          `json:"appointmentDate"`
	StartTime           string          `json:"startTime"`
	EndTime             string          `json:"endTime"`
}

type VideoLinkBooking struct {
	VideoLinkBookingID              int64               `json:"videoLinkBookingId"`
	StatusCode                      string              `json:"statusCode"`
	BookingType                     BookingType         `json:"bookingType"`
	PrisonAppointments              []PrisonAppointment `json:"prisonAppointments"`
	CourtCode                       string              `json:"courtCode,omitempty"`
	CourtDescription                string              `json:"courtDescription,omitempty"`
	CourtHearingType                string              `json:"courtHearingType,omitempty"`
	CourtHearingTypeDescription     string              `json:"courtHearingTypeDescription,omitempty"`
	ProbationTeamCode               string              `json:"probationTeamCode,omitempty"`
	ProbationTeamDescription        string              `json:"probationTeamDescription,omitempty"`
	ProbationMeetingType            string              `json:"probationMeetingType,omitempty"`
	ProbationMeetingTypeDescription string              `json:"probationMeetingTypeDescription,omitempty"`
	Comments                        string              `json:"comments,omitempty"`
	NotesForStaff                   string              `json:"notesForStaff,omitempty"`
	VideoLinkURL                    string              `json:"videoLinkUrl,omitempty"`
	CreatedBy                       string              `json:"createdBy,omitempty"`
}

// Appointment returns the appointment of the given type, if the booking has one.
func (b *VideoLinkBooking) Appointment(t AppointmentType) *PrisonAppointment {
	for i := range b.PrisonAppointments {
		if b.PrisonAppointments[i].AppointmentType == t {
			return &b.PrisonAppointments[i]
		}
	}
	return nil
}

// MainAppointment returns the court main hearing or the probation meeting.
func (b *VideoLinkBooking) MainAppointment() *PrisonAppointment {
	if b.BookingType == BookingTypeProbation {
		return b.Appointment(AppointmentProbation)
	}
	return b.Appointment(AppointmentCourtMain)
}

func (b *VideoLinkBooking) AgencyCode() string {
	if b.BookingType == BookingTypeProbation {
		return b.ProbationTeamCode
	}
	return b.CourtCode
}

func (b *VideoLinkBooking) HearingTypeCode() string {
	if b.BookingType == BookingTypeProbation {
		return b.ProbationMeetingType
	}
	return b.CourtHearingType
}

// StartsAt is the start of the main appointment in the given location.
func (b *VideoLinkBooking) StartsAt(loc *time.Location) (time.Time, bool) {
	main := b.MainAppointment()
	if main == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, main.AppointmentDate+" "+main.StartTime, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type ScheduleItem struct {
	VideoBookingID                  int64           `json:"videoBookingId"`
	PrisonAppointmentID             int64           `json:"prisonAppointmentId"`
	BookingType                     BookingType     `json:"bookingType"`
	StatusCode                      string          `json:"statusCode"`
	VideoURL                        string          `json:"videoUrl,omitempty"`
	PrisonCode                      string          `json:"prisonCode"`
	PrisonName                      string          `json:"prisonName,omitempty"`
	PrisonerNumber                  string          `json:"prisonerNumber"`
	AppointmentType                 AppointmentType `json:"appointmentType"`
	AppointmentTypeDescription      string          `json:"appointmentTypeDescription,omitempty"`
	PrisonLocKey                    string          `json:"prisonLocKey"`
	PrisonLocDesc                   string          `json:"prisonLocDesc,omitempty"`
	AppointmentDate                 string          `json:"appointmentDate"`
	StartTime                       string          `json:"startTime"`
	EndTime                         string          `json:"endTime"`
	CourtCode                       string          `json:"courtCode,omitempty"`
	CourtDescription                string          `json:"courtDescription,omitempty"`
	HearingTypeDescription          string          `json:"hearingTypeDescription,omitempty"`
	ProbationTeamCode               string          `json:"probationTeamCode,omitempty"`
	ProbationTeamDescription        string          `json:"probationTeamDescription,omitempty"`
	ProbationMeetingTypeDescription string          `json:"probationMeetingTypeDescription,omitempty"`
}

// AgencyDescription is the court or probation team the schedule row belongs to.
func (s ScheduleItem) AgencyDescription() string {
	if s.BookingType == BookingTypeProbation {
		return s.ProbationTeamDescription
	}
	return s.CourtDescription
}

// PrisonerSearchCriteria is the body of a prisoner search.
type PrisonerSearchCriteria struct {
	LastName           string `json:"lastName,omitempty"`
	FirstName          string `json:"firstName,omitempty"`
	PrisonerIdentifier string `json:"prisonerIdentifier,omitempty"`
	DateOfBirth        string `json:"dateOfBirth,omitempty"`
	PrisonID           string `json:"prisonId,omitempty"`
}

// LocationsLocation is a record of the locations inside prison API.
type LocationsLocation struct {
	ID            string `json:"id"`
	Key           string `json:"key"`
	PrisonID      string `json:"prisonId"`
	LocalName     string `json:"localName,omitempty"`
	PathHierarchy string `json:"pathHierarchy"`
}

// DisplayName prefers the local name of a room over its path.
func (l LocationsLocation) DisplayName() string {
	if l.LocalName != "" {
		return l.LocalName
	}
	return l.PathHierarchy
}
