package web

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"bookvideolink/internal/models"
	"bookvideolink/internal/validation"
)

func yesNo(b bool) string {
	if b {
		return validation.Yes
	}
	return validation.No
}

// optional maps "" to nil so that a merge removes the key.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// draftValues pre-populates the booking pages from a draft.
func draftValues(d *models.BookingDraft) url.Values {
	v := url.Values{}
	if d == nil {
		return v
	}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}

	set(models.FieldAgencyCode, d.AgencyCode)
	set(models.FieldHearingTypeCode, d.HearingTypeCode)
	if t, err := time.Parse(models.DateLayout, d.Date); err == nil {
		v.Set(models.FieldDate, t.Format(models.FormDateLayout))
	}
	if main, ok := d.MainInterval(); ok {
		v.Set(models.FieldStartTime, main.StartClock())
		v.Set(models.FieldEndTime, main.EndClock())
		if d.BookingType == models.BookingTypeCourt {
			v.Set(models.FieldCvpRequired, yesNo(d.CvpRequired))
		}
	}
	set(models.FieldVideoLinkURL, d.VideoLinkURL)
	set(models.FieldNotes, d.Notes)

	if d.LocationCode != "" {
		v.Set(models.FieldPreRequired, yesNo(d.PreRequired))
		v.Set(models.FieldPostRequired, yesNo(d.PostRequired))
	}
	set(models.FieldLocationCode, d.LocationCode)
	set(models.FieldPreLocationCode, d.PreLocationCode)
	set(models.FieldPostLocationCode, d.PostLocationCode)
	return v
}

// newBookingPartial converts a validated new booking form into a draft update.
func newBookingPartial(in url.Values, bt models.BookingType, loc *time.Location) (models.Slice, error) {
	get := func(k string) string { return strings.TrimSpace(in.Get(k)) }

	date, err := validation.ParseDate(get(models.FieldDate), loc)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	start, err := models.ParseClock(get(models.FieldStartTime))
	if err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}
	end, err := models.ParseClock(get(models.FieldEndTime))
	if err != nil {
		return nil, fmt.Errorf("parse end time: %w", err)
	}

	p := models.Slice{
		models.FieldBookingType:     string(bt),
		models.FieldAgencyCode:      get(models.FieldAgencyCode),
		models.FieldHearingTypeCode: get(models.FieldHearingTypeCode),
		models.FieldDate:            date.Format(models.DateLayout),
		models.FieldStartTime:       start,
		models.FieldEndTime:         end,
		models.FieldNotes:           optional(get(models.FieldNotes)),
	}
	if bt == models.BookingTypeCourt {
		cvp := get(models.FieldCvpRequired) == validation.Yes
		p[models.FieldCvpRequired] = cvp
		p[models.FieldVideoLinkURL] = nil
		if cvp {
			p[models.FieldVideoLinkURL] = optional(get(models.FieldVideoLinkURL))
		}
	}
	return p, nil
}

// mainInterval reads the main interval from a posted form, or from the draft.
func mainInterval(in url.Values, d *models.BookingDraft) (models.Interval, bool) {
	start, err1 := models.ParseClock(strings.TrimSpace(in.Get(models.FieldStartTime)))
	end, err2 := models.ParseClock(strings.TrimSpace(in.Get(models.FieldEndTime)))
	if err1 == nil && err2 == nil {
		return models.Interval{Start: start, End: end}, true
	}
	if d == nil {
		return models.Interval{}, false
	}
	return d.MainInterval()
}

// roomSlots is the interval each room field of the booking type would be booked for.
func roomSlots(bt models.BookingType, main models.Interval) map[string]models.Interval {
	if bt == models.BookingTypeProbation {
		return map[string]models.Interval{models.FieldLocationCode: main}
	}
	pre, post := models.PrePostIntervals(main)
	return map[string]models.Interval{
		models.FieldPreLocationCode:  pre,
		models.FieldLocationCode:     main,
		models.FieldPostLocationCode: post,
	}
}

// roomsPartial converts a validated room choice into a draft update. Pre and post hearings
// are back to back with the main hearing.
func roomsPartial(in url.Values, bt models.BookingType, main models.Interval) models.Slice {
	get := func(k string) string { return strings.TrimSpace(in.Get(k)) }

	p := models.Slice{models.FieldLocationCode: get(models.FieldLocationCode)}
	if bt == models.BookingTypeProbation {
		return p
	}

	pre, post := models.PrePostIntervals(main)
	if get(models.FieldPreRequired) == validation.Yes {
		p[models.FieldPreRequired] = true
		p[models.FieldPreLocationCode] = get(models.FieldPreLocationCode)
		p[models.FieldPreHearingStartTime] = pre.Start
		p[models.FieldPreHearingEndTime] = pre.End
	} else {
		p[models.FieldPreRequired] = nil
		p[models.FieldPreLocationCode] = nil
		p[models.FieldPreHearingStartTime] = nil
		p[models.FieldPreHearingEndTime] = nil
	}
	if get(models.FieldPostRequired) == validation.Yes {
		p[models.FieldPostRequired] = true
		p[models.FieldPostLocationCode] = get(models.FieldPostLocationCode)
		p[models.FieldPostHearingStartTime] = post.Start
		p[models.FieldPostHearingEndTime] = post.End
	} else {
		p[models.FieldPostRequired] = nil
		p[models.FieldPostLocationCode] = nil
		p[models.FieldPostHearingStartTime] = nil
		p[models.FieldPostHearingEndTime] = nil
	}
	return p
}

// formDate converts a dd/MM/yyyy form date to yyyy-MM-dd, or returns "".
func formDate(s string, loc *time.Location) string {
	d, err := validation.ParseDate(strings.TrimSpace(s), loc)
	if err != nil {
		return ""
	}
	return d.Format(models.DateLayout)
}
