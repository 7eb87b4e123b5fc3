package service

import (
	"context"
	"testing"

	"bookvideolink/internal/config"
	"bookvideolink/internal/mocks"
	"bookvideolink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveSlots(t *testing.T) {
	t.Run("MainOnlyCourt", func(t *testing.T) {
		d := courtDraft()
		d.PreHearingStartTime, d.PreHearingEndTime = nil, nil
		slots := ActiveSlots(d)
		require.Len(t, slots, 1)
		assert.Equal(t, models.AppointmentCourtMain, slots[0].Type)
	})

	t.Run("CourtOrder", func(t *testing.T) {
		d := courtDraft()
		d.PostHearingStartTime, d.PostHearingEndTime = mocks.Clock("12:00"), mocks.Clock("12:15")
		d.PostLocationCode = "MDI-ROOM-3"

		var types []models.AppointmentType
		for _, s := range ActiveSlots(d) {
			types = append(types, s.Type)
		}
		assert.Equal(t, []models.AppointmentType{models.AppointmentCourtPre, models.AppointmentCourtMain, models.AppointmentCourtPost}, types)
	})

	t.Run("Probation", func(t *testing.T) {
		d := courtDraft()
		d.BookingType = models.BookingTypeProbation
		slots := ActiveSlots(d)
		require.Len(t, slots, 1)
		assert.Equal(t, models.AppointmentProbation, slots[0].Type)
		assert.Equal(t, models.FieldLocationCode, slots[0].LocationField)
	})

	t.Run("NoMainTimes", func(t *testing.T) {
		d := courtDraft()
		d.StartTime = nil
		assert.Empty(t, ActiveSlots(d))
	})
}

func TestComposer_BuildAvailabilityRequest(t *testing.T) {
	c := NewComposer(nil, config.Features{})

	t.Run("PreOnlyWhenLocationChosen", func(t *testing.T) {
		d := courtDraft()
		req := c.BuildAvailabilityRequest(d)
		require.NotNil(t, req.PreAppointment)
		assert.Equal(t, "MDI-ROOM-1", req.PreAppointment.PrisonLocKey)
		assert.Equal(t, models.TimeInterval{Start: "10:45", End: "11:00"}, req.PreAppointment.Interval)
		assert.Nil(t, req.PostAppointment)
		assert.Nil(t, req.VlbIDToExclude)
		assert.Equal(t, models.TimeInterval{Start: "11:00", End: "12:00"}, req.MainAppointment.Interval)

		d.PreLocationCode = ""
		assert.Nil(t, c.BuildAvailabilityRequest(d).PreAppointment)
	})

	t.Run("DerivedPostInterval", func(t *testing.T) {
		d := courtDraft()
		d.PostLocationCode = "MDI-ROOM-3"
		req := c.BuildAvailabilityRequest(d)
		require.NotNil(t, req.PostAppointment)
		assert.Equal(t, models.TimeInterval{Start: "12:00", End: "12:15"}, req.PostAppointment.Interval)
	})

	t.Run("AmendExcludesItself", func(t *testing.T) {
		d := courtDraft()
		d.BookingID = 99
		req := c.BuildAvailabilityRequest(d)
		require.NotNil(t, req.VlbIDToExclude)
		assert.Equal(t, int64(99), *req.VlbIDToExclude)
	})
}

func TestComposer_NotesToggle(t *testing.T) {
	d := courtDraft()

	off := NewComposer(nil, config.Features{}).BuildCreateRequest(d)
	assert.Equal(t, "some notes", off.Comments)
	assert.Empty(t, off.NotesForStaff)

	on := NewComposer(nil, config.Features{MasterPublicPrivateNotes: true}).BuildCreateRequest(d)
	assert.Equal(t, "some notes", on.NotesForStaff)
	assert.Empty(t, on.Comments)

	b := &models.VideoLinkBooking{Comments: "public", NotesForStaff: "private"}
	assert.Equal(t, "public", NewComposer(nil, config.Features{}).NotesFromBooking(b))
	assert.Equal(t, "private", NewComposer(nil, config.Features{MasterPublicPrivateNotes: true}).NotesFromBooking(b))
}

func TestComposer_BookingRequests(t *testing.T) {
	c := NewComposer(nil, config.Features{})

	t.Run("Court", func(t *testing.T) {
		d := courtDraft()
		d.VideoLinkURL = "https://video.example/2"
		req := c.BuildAmendRequest(d)
		assert.Equal(t, models.BookingTypeCourt, req.BookingType)
		assert.Equal(t, "DRBYMC", req.CourtCode)
		assert.Equal(t, "APPEAL", req.CourtHearingType)
		assert.Equal(t, "https://video.example/2", req.VideoLinkURL)
		assert.Empty(t, req.ProbationTeamCode)

		require.Len(t, req.Prisoners, 1)
		p := req.Prisoners[0]
		assert.Equal(t, "MDI", p.PrisonCode)
		assert.Equal(t, "A1234AA", p.PrisonerNumber)
		assert.Empty(t, p.FirstName)
		assert.Equal(t, []models.Appointment{
			{Type: models.AppointmentCourtPre, LocationKey: "MDI-ROOM-1", Date: "2030-01-02", StartTime: "10:45", EndTime: "11:00"},
			{Type: models.AppointmentCourtMain, LocationKey: "MDI-ROOM-2", Date: "2030-01-02", StartTime: "11:00", EndTime: "12:00"},
		}, p.Appointments)
	})

	t.Run("Probation", func(t *testing.T) {
		d := courtDraft()
		d.BookingType = models.BookingTypeProbation
		d.AgencyCode = "BLKPPP"
		d.HearingTypeCode = "PSR"
		d.VideoLinkURL = "ignored"
		req := c.BuildCreateRequest(d)
		assert.Equal(t, "BLKPPP", req.ProbationTeamCode)
		assert.Equal(t, "PSR", req.ProbationMeetingType)
		assert.Empty(t, req.CourtCode)
		assert.Empty(t, req.VideoLinkURL)
		require.Len(t, req.Prisoners[0].Appointments, 1)
		assert.Equal(t, models.AppointmentProbation, req.Prisoners[0].Appointments[0].Type)
	})

	t.Run("RequestCarriesIdentity", func(t *testing.T) {
		req := c.BuildRequestRequest(courtDraft())
		p := req.Prisoners[0]
		assert.Equal(t, "Joe", p.FirstName)
		assert.Equal(t, "Bloggs", p.LastName)
		assert.Equal(t, "1990-05-01", p.DateOfBirth)
	})
}

func TestComposer_RoomsAvailableByDateAndTime(t *testing.T) {
	api := new(mocks.BookAVideoLinkAPI)
	c := NewComposer(api, config.Features{})
	ctx := context.Background()
	d := courtDraft()
	excluded := int64(5)

	want := &models.AvailableLocationsResponse{Locations: []models.AvailableLocation{{Name: "Room 1", DpsLocationKey: "MDI-ROOM-1"}}}
	api.On("AvailableLocationsByDateAndTime", ctx, testUser, models.AvailableLocationsRequest{
		PrisonCode:               "MDI",
		BookingType:              models.BookingTypeCourt,
		CourtOrProbationTeamCode: "DRBYMC",
		Date:                     "2030-01-02",
		StartTime:                "11:00",
		EndTime:                  "12:00",
		VlbIDToExclude:           &excluded,
	}).Return(want, nil).Once()

	got, err := c.RoomsAvailableByDateAndTime(ctx, testUser, d, &excluded, *d.StartTime, *d.EndTime)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	api.AssertExpectations(t)
}
