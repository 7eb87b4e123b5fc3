package models

import "time"

type BookingType string

const (
	BookingTypeCourt     BookingType = "COURT"
	BookingTypeProbation BookingType = "PROBATION"
)

// PathSegment returns the URL prefix used for the booking type ("court" or "probation").
func (t BookingType) PathSegment() string {
	if t == BookingTypeProbation {
		return "probation"
	}
	return "court"
}

// JourneySlice is the name of the journey slice that holds a draft of this type.
func (t BookingType) JourneySlice() string {
	if t == BookingTypeProbation {
		return SliceBookAProbationMeeting
	}
	return SliceBookACourtHearing
}

// Mode selects the variant of the booking wizard.
type Mode string

const (
	ModeCreate  Mode = "create"
	ModeAmend   Mode = "amend"
	ModeRequest Mode = "request"
	ModeCancel  Mode = "cancel"
)

type AppointmentType string

const (
	AppointmentCourtPre  AppointmentType = "VLB_COURT_PRE"
	AppointmentCourtMain AppointmentType = "VLB_COURT_MAIN"
	AppointmentCourtPost AppointmentType = "VLB_COURT_POST"
	AppointmentProbation AppointmentType = "VLB_PROBATION"
)

const (
	StatusActive    = "ACTIVE"
	StatusCancelled = "CANCELLED"
)

// Journey slice names
const (
	SliceBookACourtHearing     = "bookACourtHearing"
	SliceBookAProbationMeeting = "bookAProbationMeeting"
	SlicePrisonerSearch        = "prisonerSearch"
	SliceCompletedBooking      = "completedBooking"
)

// Reference code groups
const (
	GroupCourtHearingType     = "COURT_HEARING_TYPE"
	GroupProbationMeetingType = "PROBATION_MEETING_TYPE"
)

// Room usage values
const (
	UsageCourt     = "COURT"
	UsageProbation = "PROBATION"
	UsageShared    = "SHARED"
	UsageSchedule  = "SCHEDULE"
	UsageBlocked   = "BLOCKED"
)

const (
	RoomStatusActive   = "ACTIVE"
	RoomStatusInactive = "INACTIVE"
)

const (
	TimeLayout     = "15:04"
	DateLayout     = "2006-01-02"
	FormDateLayout = "02/01/2006"

	// PrePostDuration is the length of a pre or post court hearing appointment.
	PrePostDuration = 15 * time.Minute

	// MaxJourneysPerSession caps journeyData; the oldest journey is dropped first.
	MaxJourneysPerSession = 100

	AllDayStartTime = "07:00"
	AllDayEndTime   = "17:00"

	// DefaultSessionTTL is how long a session lives in Redis
	DefaultSessionTTL = 120 * time.Minute

	// SubmissionClaimWindow blocks a repeated final submission of the same journey.
	SubmissionClaimWindow = 10 * time.Minute
)
