package validation

import "bookvideolink/internal/models"

// Form field names that only exist on forms, never in a draft.
const (
	FieldFirstName          = "firstName"
	FieldLastName           = "lastName"
	FieldDateOfBirth        = "dateOfBirth"
	FieldPrisonCode         = "prison"
	FieldPrisonerNumber     = "prisonerNumber"
	FieldCourtCodes         = "courtCodes"
	FieldProbationTeamCodes = "probationTeamCodes"

	FieldScheduleStartDay   = "scheduleStartDay"
	FieldScheduleEndDay     = "scheduleEndDay"
	FieldAllDay             = "allDay"
	FieldScheduleStartTime  = "scheduleStartTime"
	FieldScheduleEndTime    = "scheduleEndTime"
	FieldSchedulePermission = "schedulePermission"
	FieldRoomStatus         = "roomStatus"
	FieldPermissionType     = "permissionType"
	FieldVideoURL           = "videoUrl"
)

const (
	Yes = "yes"
	No  = "no"

	MaxNotesLength = 400
	MaxURLLength   = 120
)

func dateRules(f string) FieldRules {
	return field(f,
		rule(Required(f), "Enter a date"),
		rule(IsDate(f), "Enter a valid date"),
		rule(NotInPast(f), "Enter a date that is not in the past"),
	)
}

func timeRules() []FieldRules {
	return []FieldRules{
		field(models.FieldStartTime,
			rule(Required(models.FieldStartTime), "Enter a start time"),
			rule(IsTime(models.FieldStartTime), "Enter a valid start time"),
			rule(TimeInFutureIfToday(models.FieldStartTime, models.FieldDate), "Enter a time in the future"),
		),
		field(models.FieldEndTime,
			rule(Required(models.FieldEndTime), "Enter an end time"),
			rule(IsTime(models.FieldEndTime), "Enter a valid end time"),
			rule(TimeAfter(models.FieldEndTime, models.FieldStartTime), "Enter an end time after the start time"),
		),
	}
}

func notesRules() FieldRules {
	return field(models.FieldNotes,
		rule(MaxLength(models.FieldNotes, MaxNotesLength), "Notes must be 400 characters or less"),
	)
}

// NewBooking is the rule table of the new booking page for the booking type.
func NewBooking(bookingType models.BookingType) Table {
	if bookingType == models.BookingTypeProbation {
		t := Table{
			field(models.FieldAgencyCode, rule(Required(models.FieldAgencyCode), "Select a probation team")),
			field(models.FieldHearingTypeCode, rule(Required(models.FieldHearingTypeCode), "Select a meeting type")),
			dateRules(models.FieldDate),
		}
		t = append(t, timeRules()...)
		return append(t, notesRules())
	}

	t := Table{
		field(models.FieldAgencyCode, rule(Required(models.FieldAgencyCode), "Select a court")),
		field(models.FieldHearingTypeCode, rule(Required(models.FieldHearingTypeCode), "Select a hearing type")),
		dateRules(models.FieldDate),
	}
	t = append(t, timeRules()...)
	return append(t,
		field(models.FieldCvpRequired, rule(OneOf(models.FieldCvpRequired, Yes, No), "Select if you know the video link")),
		field(models.FieldVideoLinkURL,
			rule(RequiredIf(models.FieldVideoLinkURL, models.FieldCvpRequired, Yes), "Enter the video link"),
			rule(MaxLength(models.FieldVideoLinkURL, MaxURLLength), "Video link must be 120 characters or less"),
		),
		notesRules(),
	)
}

func courtRoomRules() Table {
	return Table{
		field(models.FieldPreRequired, rule(Required(models.FieldPreRequired), "Select if a pre-court hearing should be added")),
		field(models.FieldPreLocationCode,
			rule(RequiredIf(models.FieldPreLocationCode, models.FieldPreRequired, Yes), "Select a prison room for the pre-court hearing"),
			rule(RoomOnList(models.FieldPreLocationCode, models.AppointmentCourtPre), "Select a prison room from the list"),
			rule(GrandfatheredRoomUnchanged(models.FieldPreLocationCode, models.AppointmentCourtPre), notVideoEnabled),
		),
		field(models.FieldLocationCode,
			rule(Required(models.FieldLocationCode), "Select a prison room for the court hearing"),
			rule(RoomOnList(models.FieldLocationCode, models.AppointmentCourtMain), "Select a prison room from the list"),
			rule(GrandfatheredRoomUnchanged(models.FieldLocationCode, models.AppointmentCourtMain), notVideoEnabled),
		),
		field(models.FieldPostRequired, rule(Required(models.FieldPostRequired), "Select if a post-court hearing should be added")),
		field(models.FieldPostLocationCode,
			rule(RequiredIf(models.FieldPostLocationCode, models.FieldPostRequired, Yes), "Select a prison room for the post-court hearing"),
			rule(RoomOnList(models.FieldPostLocationCode, models.AppointmentCourtPost), "Select a prison room from the list"),
			rule(GrandfatheredRoomUnchanged(models.FieldPostLocationCode, models.AppointmentCourtPost), notVideoEnabled),
		),
	}
}

const notVideoEnabled = "This room is no longer available for video links. Select a different room if you change the date or time"

// SelectRooms is the rule table of the room selection page.
func SelectRooms(bookingType models.BookingType) Table {
	if bookingType == models.BookingTypeProbation {
		return Table{
			field(models.FieldLocationCode,
				rule(Required(models.FieldLocationCode), "Select a prison room"),
				rule(RoomOnList(models.FieldLocationCode, models.AppointmentProbation), "Select a prison room from the list"),
				rule(GrandfatheredRoomUnchanged(models.FieldLocationCode, models.AppointmentProbation), notVideoEnabled),
			),
		}
	}
	return courtRoomRules()
}

// LegacyNewBooking is the court new booking page when rooms are chosen on it.
func LegacyNewBooking() Table {
	return append(NewBooking(models.BookingTypeCourt), courtRoomRules()...)
}

// CheckBooking is the rule table of the check your booking page.
func CheckBooking() Table {
	return Table{notesRules()}
}

// PrisonerDetails is the request journey page for prisoners not found by search.
func PrisonerDetails() Table {
	return Table{
		field(FieldFirstName, rule(Required(FieldFirstName), "Enter a first name")),
		field(FieldLastName, rule(Required(FieldLastName), "Enter a last name")),
		field(FieldDateOfBirth,
			rule(Required(FieldDateOfBirth), "Enter a date of birth"),
			rule(IsDate(FieldDateOfBirth), "Enter a valid date of birth"),
			rule(InPast(FieldDateOfBirth), "Enter a date of birth in the past"),
		),
		field(FieldPrisonCode, rule(Required(FieldPrisonCode), "Select a prison")),
		field(FieldPrisonerNumber, rule(PrisonerNumber(FieldPrisonerNumber), "Enter a prison number in the format A1234AA")),
	}
}

// PrisonerSearch is the search form; a last name or a prison number is enough.
func PrisonerSearch() Table {
	return Table{
		field(FieldLastName, rule(AnyOf(FieldLastName, FieldPrisonerNumber), "Enter a last name or a prison number")),
		field(FieldPrisonerNumber, rule(PrisonerNumber(FieldPrisonerNumber), "Enter a prison number in the format A1234AA")),
		field(FieldDateOfBirth,
			rule(IsDate(FieldDateOfBirth), "Enter a valid date of birth"),
			rule(InPast(FieldDateOfBirth), "Enter a date of birth in the past"),
		),
	}
}

// UserPreferences requires at least one court or probation team.
func UserPreferences(bookingType models.BookingType) Table {
	if bookingType == models.BookingTypeProbation {
		return Table{field(FieldProbationTeamCodes, rule(RequiredAny(FieldProbationTeamCodes), "You need to select at least one probation team"))}
	}
	return Table{field(FieldCourtCodes, rule(RequiredAny(FieldCourtCodes), "You need to select at least one court"))}
}

// RoomAttributes is the admin room decoration form.
func RoomAttributes() Table {
	return Table{
		field(FieldRoomStatus,
			rule(Required(FieldRoomStatus), "Select a room status"),
			rule(OneOf(FieldRoomStatus, models.RoomStatusActive, models.RoomStatusInactive), "Select a room status"),
		),
		field(FieldPermissionType,
			rule(Unless(FieldRoomStatus, models.RoomStatusInactive, Required(FieldPermissionType)), "Select a room permission"),
			rule(OneOf(FieldPermissionType, models.UsageCourt, models.UsageProbation, models.UsageShared, models.UsageSchedule), "Select a room permission"),
		),
		field(FieldVideoURL,
			rule(MaxLength(FieldVideoURL, MaxURLLength), "Prison video link must be 120 characters or less"),
		),
		field(models.FieldNotes,
			rule(MaxLength(models.FieldNotes, MaxNotesLength), "Notes must be 400 characters or less"),
		),
	}
}

// Schedule is the admin room schedule row form. Times are ignored for all day rows.
func Schedule() Table {
	timed := func(check func(Input) bool) func(Input) bool {
		return Unless(FieldAllDay, "true", check)
	}
	return Table{
		field(FieldScheduleStartDay, rule(Required(FieldScheduleStartDay), "Select a start day")),
		field(FieldScheduleEndDay,
			rule(Required(FieldScheduleEndDay), "Select an end day"),
			rule(IntNotBefore(FieldScheduleEndDay, FieldScheduleStartDay), "End day must be the same as or after the start day"),
		),
		field(FieldScheduleStartTime,
			rule(timed(Required(FieldScheduleStartTime)), "Enter a start time"),
			rule(timed(IsTime(FieldScheduleStartTime)), "Enter a valid start time"),
		),
		field(FieldScheduleEndTime,
			rule(timed(Required(FieldScheduleEndTime)), "Enter an end time"),
			rule(timed(IsTime(FieldScheduleEndTime)), "Enter a valid end time"),
			rule(timed(TimeAfter(FieldScheduleEndTime, FieldScheduleStartTime)), "End time must be after the start time"),
		),
		field(FieldSchedulePermission,
			rule(Required(FieldSchedulePermission), "Select a permission"),
			rule(OneOf(FieldSchedulePermission, models.UsageCourt, models.UsageProbation, models.UsageShared, models.UsageBlocked), "Select a permission"),
		),
		field(models.FieldNotes,
			rule(MaxLength(models.FieldNotes, MaxNotesLength), "Notes must be 400 characters or less"),
		),
	}
}
