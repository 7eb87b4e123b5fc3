package models

import "time"

// Draft field keys. They match the JSON tags of BookingDraft so partial updates
// can be merged into a journey slice without decoding it first.
const (
	FieldBookingID            = "bookingId"
	FieldBookingType          = "type"
	FieldPrisoner             = "prisoner"
	FieldAgencyCode           = "agencyCode"
	FieldHearingTypeCode      = "hearingTypeCode"
	FieldDate                 = "date"
	FieldStartTime            = "startTime"
	FieldEndTime              = "endTime"
	FieldPreRequired          = "preRequired"
	FieldPostRequired         = "postRequired"
	FieldPreHearingStartTime  = "preHearingStartTime"
	FieldPreHearingEndTime    = "preHearingEndTime"
	FieldPostHearingStartTime = "postHearingStartTime"
	FieldPostHearingEndTime   = "postHearingEndTime"
	FieldLocationCode         = "locationCode"
	FieldPreLocationCode      = "preLocationCode"
	FieldPostLocationCode     = "postLocationCode"
	FieldNotes                = "notes"
	FieldVideoLinkURL         = "videoLinkUrl"
	FieldCvpRequired          = "cvpRequired"
	FieldOriginalAppointments = "originalAppointments"
)

type Prisoner struct {
	PrisonerNumber string `json:"prisonerNumber,omitempty"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	DateOfBirth    string `json:"dateOfBirth,omitempty"` // yyyy-MM-dd
	PrisonCode     string `json:"prisonId"`
	PrisonName     string `json:"prisonName,omitempty"`
}

func (p Prisoner) FullName() string {
	return p.FirstName + " " + p.LastName
}

// OriginalAppointment records a slot of the booking being amended, as it was upstream.
type OriginalAppointment struct {
	Type         AppointmentType `json:"type"`
	LocationCode string          `json:"locationCode"`
	Date         string          `json:"date"`
	StartTime    string          `json:"startTime"`
	EndTime      string          `json:"endTime"`
	VideoEnabled bool            `json:"videoEnabled"`
}

// BookingDraft is the accumulated state of a booking wizard.
// Clock values carry only hours and minutes; their date part is meaningless.
type BookingDraft struct {
	BookingID            int64                 `json:"bookingId,omitempty"`
	BookingType          BookingType           `json:"type,omitempty"`
	Prisoner             Prisoner              `json:"prisoner"`
	AgencyCode           string                `json:"agencyCode,omitempty"`
	HearingTypeCode      string                `json:"hearingTypeCode,omitempty"`
	Date                 string                `json:"date,omitempty"` // yyyy-MM-dd
	StartTime            *time.Time            `json:"startTime,omitempty"`
	EndTime              *time.Time            `json:"endTime,omitempty"`
	PreRequired          bool                  `json:"preRequired,omitempty"`
	PostRequired         bool                  `json:"postRequired,omitempty"`
	PreHearingStartTime  *time.Time            `json:"preHearingStartTime,omitempty"`
	PreHearingEndTime    *time.Time            `json:"preHearingEndTime,omitempty"`
	PostHearingStartTime *time.Time            `json:"postHearingStartTime,omitempty"`
	PostHearingEndTime   *time.Time            `json:"postHearingEndTime,omitempty"`
	LocationCode         string                `json:"locationCode,omitempty"`
	PreLocationCode      string                `json:"preLocationCode,omitempty"`
	PostLocationCode     string                `json:"postLocationCode,omitempty"`
	Notes                string                `json:"notes,omitempty"`
	VideoLinkURL         string                `json:"videoLinkUrl,omitempty"`
	CvpRequired          bool                  `json:"cvpRequired,omitempty"`
	OriginalAppointments []OriginalAppointment `json:"originalAppointments,omitempty"`
}

// Interval is a pair of clock values.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) StartClock() string { return FormatClock(i.Start) }
func (i Interval) EndClock() string   { return FormatClock(i.End) }

func (d *BookingDraft) MainInterval() (Interval, bool) {
	return pair(d.StartTime, d.EndTime)
}

func (d *BookingDraft) PreInterval() (Interval, bool) {
	return pair(d.PreHearingStartTime, d.PreHearingEndTime)
}

func (d *BookingDraft) PostInterval() (Interval, bool) {
	return pair(d.PostHearingStartTime, d.PostHearingEndTime)
}

func pair(start, end *time.Time) (Interval, bool) {
	if start == nil || end == nil {
		return Interval{}, false
	}
	return Interval{Start: *start, End: *end}, true
}

// MainAppointmentType is the appointment type of the main slot for the draft's booking type.
func (d *BookingDraft) MainAppointmentType() AppointmentType {
	if d.BookingType == BookingTypeProbation {
		return AppointmentProbation
	}
	return AppointmentCourtMain
}

// Original returns the upstream state of a slot when amending.
func (d *BookingDraft) Original(t AppointmentType) (OriginalAppointment, bool) {
	for _, a := range d.OriginalAppointments {
		if a.Type == t {
			return a, true
		}
	}
	return OriginalAppointment{}, false
}

// FormatClock renders a clock value as HH:mm.
func FormatClock(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseClock parses HH:mm into a clock value.
func ParseClock(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// PrePostIntervals derives the back to back pre and post intervals around a main interval.
func PrePostIntervals(main Interval) (pre, post Interval) {
	pre = Interval{Start: main.Start.Add(-PrePostDuration), End: main.Start}
	post = Interval{Start: main.End, End: main.End.Add(PrePostDuration)}
	return pre, post
}
