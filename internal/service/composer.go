package service

import (
	"context"
	"time"

	"bookvideolink/internal/config"
	"bookvideolink/internal/domain"
	"bookvideolink/internal/models"
)

// Slot is one active appointment of a draft together with the form field that holds its room.
type Slot struct {
	Type          models.AppointmentType
	Interval      models.Interval
	LocationField string
	LocationCode  string
}

// Composer translates booking drafts into Book a Video Link API requests.
type Composer struct {
	api      domain.BookAVideoLinkAPI
	features config.Features
}

func NewComposer(api domain.BookAVideoLinkAPI, features config.Features) *Composer {
	return &Composer{api: api, features: features}
}

// ActiveSlots lists the appointments of the draft in the order pre, main, post.
func ActiveSlots(d *models.BookingDraft) []Slot {
	main, ok := d.MainInterval()
	if !ok {
		return nil
	}
	if d.BookingType == models.BookingTypeProbation {
		return []Slot{{Type: models.AppointmentProbation, Interval: main, LocationField: models.FieldLocationCode, LocationCode: d.LocationCode}}
	}

	slots := make([]Slot, 0, 3)
	if pre, ok := d.PreInterval(); ok {
		slots = append(slots, Slot{Type: models.AppointmentCourtPre, Interval: pre, LocationField: models.FieldPreLocationCode, LocationCode: d.PreLocationCode})
	}
	slots = append(slots, Slot{Type: models.AppointmentCourtMain, Interval: main, LocationField: models.FieldLocationCode, LocationCode: d.LocationCode})
	if post, ok := d.PostInterval(); ok {
		slots = append(slots, Slot{Type: models.AppointmentCourtPost, Interval: post, LocationField: models.FieldPostLocationCode, LocationCode: d.PostLocationCode})
	}
	return slots
}

func interval(i models.Interval) models.TimeInterval {
	return models.TimeInterval{Start: i.StartClock(), End: i.EndClock()}
}

// BuildAvailabilityRequest includes the pre and post appointments only when their rooms are chosen.
func (c *Composer) BuildAvailabilityRequest(d *models.BookingDraft) models.AvailabilityRequest {
	main, _ := d.MainInterval()
	derivedPre, derivedPost := models.PrePostIntervals(main)

	req := models.AvailabilityRequest{
		BookingType:          d.BookingType,
		CourtOrProbationCode: d.AgencyCode,
		PrisonCode:           d.Prisoner.PrisonCode,
		Date:                 d.Date,
		MainAppointment: models.LocationAndInterval{
			PrisonLocKey: d.LocationCode,
			Interval:     interval(main),
		},
	}

	if d.PreLocationCode != "" {
		pre, ok := d.PreInterval()
		if !ok {
			pre = derivedPre
		}
		req.PreAppointment = &models.LocationAndInterval{PrisonLocKey: d.PreLocationCode, Interval: interval(pre)}
	}
	if d.PostLocationCode != "" {
		post, ok := d.PostInterval()
		if !ok {
			post = derivedPost
		}
		req.PostAppointment = &models.LocationAndInterval{PrisonLocKey: d.PostLocationCode, Interval: interval(post)}
	}
	if d.BookingID != 0 {
		id := d.BookingID
		req.VlbIDToExclude = &id
	}
	return req
}

func (c *Composer) buildBookingRequest(d *models.BookingDraft, withIdentity bool) models.VideoBookingRequest {
	slots := ActiveSlots(d)
	appointments := make([]models.Appointment, 0, len(slots))
	for _, s := range slots {
		appointments = append(appointments, models.Appointment{
			Type:        s.Type,
			LocationKey: s.LocationCode,
			Date:        d.Date,
			StartTime:   s.Interval.StartClock(),
			EndTime:     s.Interval.EndClock(),
		})
	}

	prisoner := models.PrisonerDetails{
		PrisonCode:     d.Prisoner.PrisonCode,
		PrisonerNumber: d.Prisoner.PrisonerNumber,
		Appointments:   appointments,
	}
	if withIdentity {
		prisoner.FirstName = d.Prisoner.FirstName
		prisoner.LastName = d.Prisoner.LastName
		prisoner.DateOfBirth = d.Prisoner.DateOfBirth
	}

	req := models.VideoBookingRequest{
		BookingType: d.BookingType,
		Prisoners:   []models.PrisonerDetails{prisoner},
	}
	if d.BookingType == models.BookingTypeProbation {
		req.ProbationTeamCode = d.AgencyCode
		req.ProbationMeetingType = d.HearingTypeCode
	} else {
		req.CourtCode = d.AgencyCode
		req.CourtHearingType = d.HearingTypeCode
		req.VideoLinkURL = d.VideoLinkURL
	}

	if c.features.MasterPublicPrivateNotes {
		req.NotesForStaff = d.Notes
	} else {
		req.Comments = d.Notes
	}
	return req
}

func (c *Composer) BuildCreateRequest(d *models.BookingDraft) models.CreateVideoBookingRequest {
	return models.CreateVideoBookingRequest{VideoBookingRequest: c.buildBookingRequest(d, false)}
}

func (c *Composer) BuildAmendRequest(d *models.BookingDraft) models.AmendVideoBookingRequest {
	return models.AmendVideoBookingRequest{VideoBookingRequest: c.buildBookingRequest(d, false)}
}

// BuildRequestRequest carries the prisoner's identity, since requested bookings may be for
// prisoners unknown to prisoner search.
func (c *Composer) BuildRequestRequest(d *models.BookingDraft) models.RequestVideoBookingRequest {
	return models.RequestVideoBookingRequest{VideoBookingRequest: c.buildBookingRequest(d, true)}
}

// CheckAvailability asks the API whether every chosen room is free. The answer is authoritative.
func (c *Composer) CheckAvailability(ctx context.Context, user *models.User, d *models.BookingDraft) (*models.AvailabilityResponse, error) {
	return c.api.CheckAvailability(ctx, user, c.BuildAvailabilityRequest(d))
}

// RoomsAvailableByDateAndTime lists rooms free for one interval of the draft's date.
func (c *Composer) RoomsAvailableByDateAndTime(ctx context.Context, user *models.User, d *models.BookingDraft, excludedBookingID *int64, start, end time.Time) (*models.AvailableLocationsResponse, error) {
	return c.api.AvailableLocationsByDateAndTime(ctx, user, models.AvailableLocationsRequest{
		PrisonCode:               d.Prisoner.PrisonCode,
		BookingType:              d.BookingType,
		CourtOrProbationTeamCode: d.AgencyCode,
		Date:                     d.Date,
		StartTime:                models.FormatClock(start),
		EndTime:                  models.FormatClock(end),
		VlbIDToExclude:           excludedBookingID,
	})
}

// NotesFromBooking picks the notes field the current toggle shows.
func (c *Composer) NotesFromBooking(b *models.VideoLinkBooking) string {
	if c.features.MasterPublicPrivateNotes {
		return b.NotesForStaff
	}
	return b.Comments
}
