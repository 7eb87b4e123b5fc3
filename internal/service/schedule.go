package service

import (
	"net/url"
	"strconv"
	"strings"

	"bookvideolink/internal/models"
	"bookvideolink/internal/validation"
)

var dayNames = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// DayNumber maps MONDAY..SUNDAY to 1..7, and anything else to 0.
func DayNumber(name string) int {
	for i, d := range dayNames {
		if strings.EqualFold(d, name) {
			return i + 1
		}
	}
	return 0
}

// DayName maps 1..7 to MONDAY..SUNDAY, and anything else to "".
func DayName(n int) string {
	if n < 1 || n > len(dayNames) {
		return ""
	}
	return dayNames[n-1]
}

// ScheduleForm is a room schedule row as shown on and posted from the admin pages.
type ScheduleForm struct {
	StartDay           int
	EndDay             int
	AllDay             bool
	StartTime          string
	EndTime            string
	LocationUsage      string
	CourtCodes         []string
	ProbationTeamCodes []string
	Notes              string
}

func ParseScheduleForm(v url.Values) ScheduleForm {
	start, _ := strconv.Atoi(v.Get(validation.FieldScheduleStartDay))
	end, _ := strconv.Atoi(v.Get(validation.FieldScheduleEndDay))
	return ScheduleForm{
		StartDay:           start,
		EndDay:             end,
		AllDay:             v.Get(validation.FieldAllDay) == "true",
		StartTime:          strings.TrimSpace(v.Get(validation.FieldScheduleStartTime)),
		EndTime:            strings.TrimSpace(v.Get(validation.FieldScheduleEndTime)),
		LocationUsage:      v.Get(validation.FieldSchedulePermission),
		CourtCodes:         nonEmpty(v[validation.FieldCourtCodes]),
		ProbationTeamCodes: nonEmpty(v[validation.FieldProbationTeamCodes]),
		Notes:              strings.TrimSpace(v.Get(models.FieldNotes)),
	}
}

// Values renders the form back into field values, for pre-populating the page.
func (f ScheduleForm) Values() url.Values {
	v := url.Values{
		validation.FieldScheduleStartDay:   {strconv.Itoa(f.StartDay)},
		validation.FieldScheduleEndDay:     {strconv.Itoa(f.EndDay)},
		validation.FieldScheduleStartTime:  {f.StartTime},
		validation.FieldScheduleEndTime:    {f.EndTime},
		validation.FieldSchedulePermission: {f.LocationUsage},
		models.FieldNotes:                  {f.Notes},
	}
	if f.AllDay {
		v.Set(validation.FieldAllDay, "true")
	}
	if len(f.CourtCodes) > 0 {
		v[validation.FieldCourtCodes] = f.CourtCodes
	}
	if len(f.ProbationTeamCodes) > 0 {
		v[validation.FieldProbationTeamCodes] = f.ProbationTeamCodes
	}
	return v
}

// ConvertScheduleToDisplayFormat turns an API schedule row into its form representation.
func ConvertScheduleToDisplayFormat(s models.RoomSchedule) ScheduleForm {
	f := ScheduleForm{
		StartDay:      DayNumber(s.StartDayOfWeek),
		EndDay:        DayNumber(s.EndDayOfWeek),
		AllDay:        s.StartTime == models.AllDayStartTime && s.EndTime == models.AllDayEndTime,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		LocationUsage: s.LocationUsage,
		Notes:         s.Notes,
	}
	switch s.LocationUsage {
	case models.UsageCourt:
		f.CourtCodes = append([]string(nil), s.AllowedParties...)
	case models.UsageProbation:
		f.ProbationTeamCodes = append([]string(nil), s.AllowedParties...)
	}
	return f
}

// BodyToScheduleRequest builds the create or amend schedule request. All day rows always
// span 07:00 to 17:00.
func BodyToScheduleRequest(f ScheduleForm) models.RoomScheduleRequest {
	req := models.RoomScheduleRequest{
		StartDayOfWeek: DayName(f.StartDay),
		EndDayOfWeek:   DayName(f.EndDay),
		StartTime:      f.StartTime,
		EndTime:        f.EndTime,
		LocationUsage:  f.LocationUsage,
		Notes:          f.Notes,
	}
	if f.AllDay {
		req.StartTime = models.AllDayStartTime
		req.EndTime = models.AllDayEndTime
	}
	switch f.LocationUsage {
	case models.UsageCourt:
		req.AllowedParties = f.CourtCodes
	case models.UsageProbation:
		req.AllowedParties = f.ProbationTeamCodes
	}
	return req
}

// RoomForm is the decoration of a room as shown on and posted from the admin room page.
type RoomForm struct {
	RoomStatus         string
	PermissionType     string
	CourtCodes         []string
	ProbationTeamCodes []string
	VideoURL           string
	Notes              string
}

func ParseRoomForm(v url.Values) RoomForm {
	return RoomForm{
		RoomStatus:         v.Get(validation.FieldRoomStatus),
		PermissionType:     v.Get(validation.FieldPermissionType),
		CourtCodes:         nonEmpty(v[validation.FieldCourtCodes]),
		ProbationTeamCodes: nonEmpty(v[validation.FieldProbationTeamCodes]),
		VideoURL:           strings.TrimSpace(v.Get(validation.FieldVideoURL)),
		Notes:              strings.TrimSpace(v.Get(models.FieldNotes)),
	}
}

func ConvertRoomToDisplayFormat(l *models.Location) RoomForm {
	f := RoomForm{RoomStatus: models.RoomStatusActive}
	if l == nil || l.ExtraAttributes == nil {
		return f
	}
	a := l.ExtraAttributes
	f.RoomStatus = a.LocationStatus
	f.PermissionType = a.LocationUsage
	f.VideoURL = a.PrisonVideoURL
	f.Notes = a.Notes
	switch a.LocationUsage {
	case models.UsageCourt:
		f.CourtCodes = append([]string(nil), a.AllowedParties...)
	case models.UsageProbation:
		f.ProbationTeamCodes = append([]string(nil), a.AllowedParties...)
	}
	return f
}

func BodyToRoomAttributesRequest(f RoomForm) models.RoomAttributesRequest {
	req := models.RoomAttributesRequest{
		LocationStatus: f.RoomStatus,
		LocationUsage:  f.PermissionType,
		PrisonVideoURL: f.VideoURL,
		Notes:          f.Notes,
	}
	switch f.PermissionType {
	case models.UsageCourt:
		req.AllowedParties = f.CourtCodes
	case models.UsageProbation:
		req.AllowedParties = f.ProbationTeamCodes
	}
	return req
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Values renders the room form back into field values.
func (f RoomForm) Values() url.Values {
	v := url.Values{
		validation.FieldRoomStatus:     {f.RoomStatus},
		validation.FieldPermissionType: {f.PermissionType},
		validation.FieldVideoURL:       {f.VideoURL},
		models.FieldNotes:              {f.Notes},
	}
	if len(f.CourtCodes) > 0 {
		v[validation.FieldCourtCodes] = f.CourtCodes
	}
	if len(f.ProbationTeamCodes) > 0 {
		v[validation.FieldProbationTeamCodes] = f.ProbationTeamCodes
	}
	return v
}
