package validation

import (
	"slices"
	"strconv"
	"time"

	"bookvideolink/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/now"
)

// InputDateLayout accepts the dd/MM/yyyy dates typed into forms, with or without leading zeros.
const InputDateLayout = "2/1/2006"

var validate = validator.New()

func valid(value, tag string) bool {
	return validate.Var(value, tag) == nil
}

// ParseDate parses a form date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(InputDateLayout, s, loc)
}

// Required fails on a blank field.
func Required(f string) func(Input) bool {
	return func(in Input) bool { return in.Get(f) != "" }
}

// RequiredAny fails when a multi value field has no non blank value.
func RequiredAny(f string) func(Input) bool {
	return func(in Input) bool { return len(in.All(f)) > 0 }
}

// RequiredIf applies Required only when other holds want.
func RequiredIf(f, other, want string) func(Input) bool {
	return func(in Input) bool {
		if in.Get(other) != want {
			return true
		}
		return in.Get(f) != ""
	}
}

// AnyOf passes when at least one of the fields is filled in.
func AnyOf(fields ...string) func(Input) bool {
	return func(in Input) bool {
		for _, f := range fields {
			if in.Get(f) != "" {
				return true
			}
		}
		return false
	}
}

// The format predicates below pass on blank input; pair them with Required.

func IsTime(f string) func(Input) bool {
	return func(in Input) bool {
		v := in.Get(f)
		return v == "" || valid(v, "datetime="+models.TimeLayout)
	}
}

func IsDate(f string) func(Input) bool {
	return func(in Input) bool {
		v := in.Get(f)
		return v == "" || valid(v, "datetime="+InputDateLayout)
	}
}

func IsURL(f string) func(Input) bool {
	return func(in Input) bool {
		v := in.Get(f)
		return v == "" || valid(v, "url")
	}
}

func MaxLength(f string, n int) func(Input) bool {
	return func(in Input) bool {
		return valid(in.Get(f), "max="+strconv.Itoa(n))
	}
}

func PrisonerNumber(f string) func(Input) bool {
	return func(in Input) bool {
		v := in.Get(f)
		return v == "" || valid(v, "alphanum,len=7")
	}
}

func OneOf(f string, allowed ...string) func(Input) bool {
	return func(in Input) bool {
		v := in.Get(f)
		return v == "" || slices.Contains(allowed, v)
	}
}

// NotInPast passes for today or any later day.
func NotInPast(f string) func(Input) bool {
	return func(in Input) bool {
		d, ok := date(in, f)
		if !ok {
			return true
		}
		return !d.Before(now.With(in.now()).BeginningOfDay())
	}
}

// InPast passes for any day before today.
func InPast(f string) func(Input) bool {
	return func(in Input) bool {
		d, ok := date(in, f)
		if !ok {
			return true
		}
		return d.Before(now.With(in.now()).BeginningOfDay())
	}
}

// TimeInFutureIfToday fails a time that has already passed on a date that is today.
func TimeInFutureIfToday(timeField, dateField string) func(Input) bool {
	return func(in Input) bool {
		d, ok := date(in, dateField)
		if !ok {
			return true
		}
		today := now.With(in.now())
		if !d.Equal(today.BeginningOfDay()) {
			return true
		}
		c, ok := clock(in, timeField)
		if !ok {
			return true
		}
		at := today.BeginningOfDay().Add(time.Duration(c.Hour())*time.Hour + time.Duration(c.Minute())*time.Minute)
		return at.After(in.now())
	}
}

// TimeAfter passes when f is strictly after other, or when either is missing.
func TimeAfter(f, other string) func(Input) bool {
	return func(in Input) bool {
		end, ok1 := clock(in, f)
		start, ok2 := clock(in, other)
		if !ok1 || !ok2 {
			return true
		}
		return end.After(start)
	}
}

// IntNotBefore passes when the integer f is at least other, or when either is missing.
func IntNotBefore(f, other string) func(Input) bool {
	return func(in Input) bool {
		a, err1 := strconv.Atoi(in.Get(f))
		b, err2 := strconv.Atoi(in.Get(other))
		if err1 != nil || err2 != nil {
			return true
		}
		return a >= b
	}
}

// Unless skips check when the field holds want.
func Unless(f, want string, check func(Input) bool) func(Input) bool {
	return func(in Input) bool {
		if in.Get(f) == want {
			return true
		}
		return check(in)
	}
}

// RoomOnList passes when the chosen room was offered for the field, or is the room the
// slot already sits in.
func RoomOnList(f string, t models.AppointmentType) func(Input) bool {
	return func(in Input) bool {
		code := in.Get(f)
		candidates, checked := in.Candidates[f]
		if code == "" || !checked || slices.Contains(candidates, code) {
			return true
		}
		if in.Draft != nil {
			if orig, ok := in.Draft.Original(t); ok && orig.LocationCode == code {
				return true
			}
		}
		return false
	}
}

// GrandfatheredRoomUnchanged fails when a slot stays in its original room that is no longer
// video enabled while its date or time changes.
func GrandfatheredRoomUnchanged(f string, t models.AppointmentType) func(Input) bool {
	return func(in Input) bool {
		code := in.Get(f)
		if code == "" || in.Draft == nil {
			return true
		}
		orig, ok := in.Draft.Original(t)
		if !ok || orig.VideoEnabled || orig.LocationCode != code {
			return true
		}
		slot, ok := in.Slots[f]
		if !ok {
			return true
		}
		return bookingDate(in) == orig.Date &&
			slot.StartClock() == orig.StartTime &&
			slot.EndClock() == orig.EndTime
	}
}

// bookingDate is the yyyy-MM-dd date being booked: the posted date when the form carries one,
// the stored draft date otherwise.
func bookingDate(in Input) string {
	if in.Get(models.FieldDate) != "" {
		if d, ok := date(in, models.FieldDate); ok {
			return d.Format(models.DateLayout)
		}
	}
	return in.Draft.Date
}

func date(in Input, f string) (time.Time, bool) {
	v := in.Get(f)
	if v == "" {
		return time.Time{}, false
	}
	d, err := ParseDate(v, in.now().Location())
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func clock(in Input, f string) (time.Time, bool) {
	v := in.Get(f)
	if v == "" {
		return time.Time{}, false
	}
	c, err := models.ParseClock(v)
	if err != nil {
		return time.Time{}, false
	}
	return c, true
}
